package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"ngo_erp_backend/internal/documents/repository"
	"ngo_erp_backend/internal/documents/service"
	"ngo_erp_backend/internal/documents/transport"
	"ngo_erp_backend/platform/apperr"
	"ngo_erp_backend/platform/httpkit"
	"ngo_erp_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest    = "invalid request body"
	msgValidationFailed  = "validation failed"
	msgUnknownOperation  = "unknown operation"
	msgDocumentIDMissing = "documentId is required"
	msgDocumentIDInvalid = "documentId must be a valid UUID"
	msgDataMissing       = "data is required"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/operations", h.Operate)
}

// Operate dispatches one document operation for the authenticated caller.
func (h *Handler) Operate(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Fail(c, http.StatusBadRequest, apperr.CodeInvalidJSON, msgInvalidRequest, nil)
		return
	}

	caller, err := h.svc.ResolveCaller(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	switch req.Operation {
	case transport.OperationUpload:
		h.upload(c, caller, req)
	case transport.OperationDownload:
		h.download(c, caller, req)
	case transport.OperationDelete:
		h.delete(c, caller, req)
	case transport.OperationUpdate:
		h.update(c, caller, req)
	default:
		httpkit.Fail(c, http.StatusBadRequest, apperr.CodeBadRequest, msgUnknownOperation, req.Operation)
	}
}

func (h *Handler) upload(c *gin.Context, caller service.Caller, req transport.OperationRequest) {
	var data transport.UploadData
	if !h.decodeData(c, req.Data, &data) {
		return
	}

	doc, err := h.svc.Upload(c.Request.Context(), caller, service.UploadInput{
		FileName:    data.FileName,
		FileContent: data.FileContent,
		Title:       data.Title,
		Description: data.Description,
		Category:    data.Category,
		Tags:        data.Tags,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.DocumentResult{Success: true, Document: toDocumentResponse(doc)})
}

func (h *Handler) download(c *gin.Context, caller service.Caller, req transport.OperationRequest) {
	documentID, ok := parseDocumentID(c, req.DocumentID)
	if !ok {
		return
	}

	file, err := h.svc.Download(c.Request.Context(), caller, documentID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.DownloadResult{
		Success:     true,
		FileName:    file.FileName,
		MimeType:    file.MimeType,
		FileContent: base64.StdEncoding.EncodeToString(file.Content),
	})
}

func (h *Handler) delete(c *gin.Context, caller service.Caller, req transport.OperationRequest) {
	documentID, ok := parseDocumentID(c, req.DocumentID)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), caller, documentID)) {
		return
	}

	httpkit.OK(c, transport.DeleteResult{Success: true})
}

func (h *Handler) update(c *gin.Context, caller service.Caller, req transport.OperationRequest) {
	documentID, ok := parseDocumentID(c, req.DocumentID)
	if !ok {
		return
	}

	var data transport.UpdateData
	if !h.decodeData(c, req.Data, &data) {
		return
	}

	doc, err := h.svc.Update(c.Request.Context(), caller, documentID, repository.UpdateDocumentParams{
		Title:       data.Title,
		Description: data.Description,
		Category:    data.Category,
		Tags:        data.Tags,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.DocumentResult{Success: true, Document: toDocumentResponse(doc)})
}

type sanitizer interface {
	Sanitize()
}

func (h *Handler) decodeData(c *gin.Context, raw json.RawMessage, dst sanitizer) bool {
	if len(raw) == 0 || string(raw) == "null" {
		httpkit.Fail(c, http.StatusBadRequest, apperr.CodeBadRequest, msgDataMissing, nil)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		httpkit.Fail(c, http.StatusBadRequest, apperr.CodeInvalidJSON, msgInvalidRequest, nil)
		return false
	}
	dst.Sanitize()
	if err := h.val.Struct(dst); err != nil {
		httpkit.Fail(c, http.StatusBadRequest, apperr.CodeValidation, msgValidationFailed, validator.Messages(err))
		return false
	}
	return true
}

func parseDocumentID(c *gin.Context, raw string) (uuid.UUID, bool) {
	if raw == "" {
		httpkit.Fail(c, http.StatusBadRequest, apperr.CodeBadRequest, msgDocumentIDMissing, nil)
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httpkit.Fail(c, http.StatusBadRequest, apperr.CodeBadRequest, msgDocumentIDInvalid, nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func toDocumentResponse(doc repository.Document) transport.DocumentResponse {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	return transport.DocumentResponse{
		ID:          doc.ID.String(),
		Title:       doc.Title,
		Description: doc.Description,
		Category:    doc.Category,
		FileName:    doc.FileName,
		FilePath:    doc.FilePath,
		FileSize:    doc.FileSize,
		MimeType:    doc.MimeType,
		Tags:        tags,
		UploadedBy:  doc.UploadedBy.String(),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
