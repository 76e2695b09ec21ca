package transport

import (
	"encoding/json"
	"time"

	"ngo_erp_backend/platform/sanitize"
)

// Operation names accepted by the document operations endpoint.
const (
	OperationUpload   = "upload"
	OperationDownload = "download"
	OperationDelete   = "delete"
	OperationUpdate   = "update"
)

// OperationRequest is the tagged union body: Data is decoded according to Operation.
type OperationRequest struct {
	Operation  string          `json:"operation" validate:"required"`
	DocumentID string          `json:"documentId"`
	Data       json.RawMessage `json:"data"`
}

type UploadData struct {
	FileName    string   `json:"fileName" validate:"required,max=255"`
	FileContent string   `json:"fileContent" validate:"required"`
	Title       string   `json:"title" validate:"required,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Category    string   `json:"category" validate:"required,max=100"`
	Tags        []string `json:"tags" validate:"omitempty,max=50,dive,max=50"`
}

type UpdateData struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Category    *string  `json:"category" validate:"omitempty,min=1,max=100"`
	Tags        []string `json:"tags" validate:"omitempty,max=50,dive,max=50"`
}

// Sanitize strips markup from the text fields so that validation sees the
// values that will be stored.
func (d *UploadData) Sanitize() {
	d.Title = sanitize.Text(d.Title)
	d.Description = sanitize.TextPtr(d.Description)
	d.Category = sanitize.Text(d.Category)
}

func (d *UpdateData) Sanitize() {
	d.Title = sanitize.TextPtr(d.Title)
	d.Description = sanitize.TextPtr(d.Description)
	d.Category = sanitize.TextPtr(d.Category)
}

type DocumentResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Category    string    `json:"category"`
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"filePath"`
	FileSize    int64     `json:"fileSize"`
	MimeType    string    `json:"mimeType"`
	Tags        []string  `json:"tags"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type DocumentResult struct {
	Success  bool             `json:"success"`
	Document DocumentResponse `json:"document"`
}

type DownloadResult struct {
	Success     bool   `json:"success"`
	FileName    string `json:"fileName"`
	MimeType    string `json:"mimeType"`
	FileContent string `json:"fileContent"`
}

type DeleteResult struct {
	Success bool `json:"success"`
}
