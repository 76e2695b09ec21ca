package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"ngo_erp_backend/internal/adapters/storage"
	"ngo_erp_backend/internal/documents/repository"
	"ngo_erp_backend/internal/events"
	"ngo_erp_backend/platform/apperr"
	"ngo_erp_backend/platform/logger"
	"ngo_erp_backend/platform/sanitize"
	"ngo_erp_backend/platform/saga"

	"github.com/google/uuid"
)

const (
	documentNotFound    = "document not found"
	msgStorageMissing   = "document storage is not configured"
	msgInvalidContent   = "fileContent must be base64 encoded"
	msgInvalidFileName  = "fileName is invalid"
	msgUploadFailed     = "failed to store document"
	msgQuotaExceeded    = "organization storage quota exceeded"
	msgValidationFailed = "validation failed"
	msgTitleRequired    = "title is required"
	msgCategoryMissing  = "category is required"

	uploadWorkflowName = "document_upload"
	stepPutObject      = "put_object"
	stepInsertMetadata = "insert_metadata"
)

// ObjectStore is the subset of object storage the documents context needs.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key, contentType string, data []byte) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	ValidateFileSize(sizeBytes int64) error
}

// OrganizationResolver resolves the organization of the calling user and the
// storage allowance of its pricing plan.
type OrganizationResolver interface {
	GetUserOrganizationID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	GetStorageQuota(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

// Caller identifies who performs a document operation.
type Caller struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
}

type UploadInput struct {
	FileName    string
	FileContent string
	Title       string
	Description *string
	Category    string
	Tags        []string
}

type Download struct {
	FileName string
	MimeType string
	Content  []byte
}

type Service struct {
	repo     repository.DocumentRepository
	objects  ObjectStore
	orgs     OrganizationResolver
	bucket   string
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func New(repo repository.DocumentRepository, objects ObjectStore, orgs OrganizationResolver, bucket string, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		objects:  objects,
		orgs:     orgs,
		bucket:   bucket,
		eventBus: eventBus,
		log:      log,
		now:      time.Now,
	}
}

// ResolveCaller looks up the organization of userID.
func (s *Service) ResolveCaller(ctx context.Context, userID uuid.UUID) (Caller, error) {
	orgID, err := s.orgs.GetUserOrganizationID(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Caller{}, apperr.Unauthorized("user has no organization")
		}
		return Caller{}, err
	}
	return Caller{UserID: userID, OrganizationID: orgID}, nil
}

// ObjectPath returns the storage key of an upload: <user>/<org>/<unix-ms>_<file>.
func ObjectPath(caller Caller, at time.Time, fileName string) string {
	return fmt.Sprintf("%s/%s/%d_%s", caller.UserID, caller.OrganizationID, at.UnixMilli(), fileName)
}

// Upload stores the object, then its metadata. If the metadata insert fails
// the object is removed again.
func (s *Service) Upload(ctx context.Context, caller Caller, in UploadInput) (repository.Document, error) {
	if s.objects == nil {
		return repository.Document{}, apperr.Internal(msgStorageMissing).WithCode(apperr.CodeServerMisconfigured)
	}

	fileName := sanitize.FileName(in.FileName)
	if fileName == "" {
		return repository.Document{}, apperr.BadRequest(msgInvalidFileName)
	}
	title, category := sanitize.Text(in.Title), sanitize.Text(in.Category)
	if violations := requiredText(title, category); len(violations) > 0 {
		return repository.Document{}, apperr.Validation(msgValidationFailed).WithDetails(violations)
	}

	payload := contentPayload(in.FileContent)
	if err := s.objects.ValidateFileSize(decodedSize(payload)); err != nil {
		return repository.Document{}, apperr.BadRequest(err.Error())
	}
	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return repository.Document{}, apperr.BadRequest(msgInvalidContent)
	}
	if err := s.objects.ValidateFileSize(int64(len(content))); err != nil {
		return repository.Document{}, apperr.BadRequest(err.Error())
	}
	if err := s.checkQuota(ctx, caller.OrganizationID, int64(len(content))); err != nil {
		return repository.Document{}, err
	}

	objectPath := ObjectPath(caller, s.now(), fileName)
	mimeType := storage.ContentTypeForFile(fileName)

	var doc repository.Document
	run := saga.New(uploadWorkflowName, s.log.WithContext(ctx)).
		Add(saga.Step{
			Name: stepPutObject,
			Do: func(ctx context.Context) error {
				return s.objects.PutObject(ctx, s.bucket, objectPath, mimeType, content)
			},
			Undo: func(ctx context.Context) error {
				return s.objects.DeleteObject(ctx, s.bucket, objectPath)
			},
		}).
		Add(saga.Step{
			Name: stepInsertMetadata,
			Do: func(ctx context.Context) error {
				var err error
				doc, err = s.repo.CreateDocument(ctx, repository.CreateDocumentParams{
					OrganizationID: caller.OrganizationID,
					UploadedBy:     caller.UserID,
					Title:          title,
					Description:    sanitize.TextPtr(in.Description),
					Category:       category,
					FileName:       fileName,
					FilePath:       objectPath,
					FileSize:       int64(len(content)),
					MimeType:       mimeType,
					Tags:           sanitize.Tags(in.Tags),
				})
				return err
			},
		})

	if err := run.Run(ctx); err != nil {
		s.log.WithContext(ctx).Error("document upload failed", "path", objectPath, "error", err)
		return repository.Document{}, apperr.Wrap(apperr.KindInternal, msgUploadFailed, err)
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.DocumentUploaded{
			Meta:           events.NewMeta(),
			DocumentID:     doc.ID,
			OrganizationID: caller.OrganizationID,
			UploadedBy:     caller.UserID,
			FileName:       fileName,
			SizeBytes:      doc.FileSize,
		})
	}
	return doc, nil
}

// Download returns the document's bytes.
func (s *Service) Download(ctx context.Context, caller Caller, documentID uuid.UUID) (Download, error) {
	if s.objects == nil {
		return Download{}, apperr.Internal(msgStorageMissing).WithCode(apperr.CodeServerMisconfigured)
	}
	doc, err := s.get(ctx, caller, documentID)
	if err != nil {
		return Download{}, err
	}

	content, err := s.objects.GetObject(ctx, s.bucket, doc.FilePath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return Download{}, apperr.NotFound(documentNotFound)
	}
	if err != nil {
		return Download{}, err
	}
	return Download{FileName: doc.FileName, MimeType: doc.MimeType, Content: content}, nil
}

// Delete removes the object and the metadata. Storage errors are logged and
// do not prevent the metadata from being deleted.
func (s *Service) Delete(ctx context.Context, caller Caller, documentID uuid.UUID) error {
	doc, err := s.get(ctx, caller, documentID)
	if err != nil {
		return err
	}

	if s.objects != nil {
		if err := s.objects.DeleteObject(ctx, s.bucket, doc.FilePath); err != nil {
			s.log.WithContext(ctx).Warn("failed to delete document object", "path", doc.FilePath, "error", err)
		}
	}

	err = s.repo.DeleteDocument(ctx, caller.OrganizationID, documentID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(documentNotFound)
	}
	if err != nil {
		return err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.DocumentDeleted{
			Meta:           events.NewMeta(),
			DocumentID:     documentID,
			OrganizationID: caller.OrganizationID,
			DeletedBy:      caller.UserID,
		})
	}
	return nil
}

// Update changes metadata; tags are replaced when provided.
func (s *Service) Update(ctx context.Context, caller Caller, documentID uuid.UUID, params repository.UpdateDocumentParams) (repository.Document, error) {
	params.Title = sanitize.TextPtr(params.Title)
	params.Description = sanitize.TextPtr(params.Description)
	params.Category = sanitize.TextPtr(params.Category)
	if params.Tags != nil {
		params.Tags = sanitize.Tags(params.Tags)
	}
	var violations []string
	if params.Title != nil && *params.Title == "" {
		violations = append(violations, msgTitleRequired)
	}
	if params.Category != nil && *params.Category == "" {
		violations = append(violations, msgCategoryMissing)
	}
	if len(violations) > 0 {
		return repository.Document{}, apperr.Validation(msgValidationFailed).WithDetails(violations)
	}

	doc, err := s.repo.UpdateDocument(ctx, caller.OrganizationID, documentID, params)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Document{}, apperr.NotFound(documentNotFound)
	}
	return doc, err
}

func (s *Service) get(ctx context.Context, caller Caller, documentID uuid.UUID) (repository.Document, error) {
	doc, err := s.repo.GetDocument(ctx, caller.OrganizationID, documentID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Document{}, apperr.NotFound(documentNotFound)
	}
	return doc, err
}

// checkQuota rejects an upload that would push the organization past the
// storage allowance of its plan. A zero quota is unlimited.
func (s *Service) checkQuota(ctx context.Context, organizationID uuid.UUID, size int64) error {
	quota, err := s.orgs.GetStorageQuota(ctx, organizationID)
	if err != nil || quota <= 0 {
		return err
	}
	used, err := s.repo.StorageUsed(ctx, organizationID)
	if err != nil {
		return err
	}
	if used+size > quota {
		return apperr.BadRequest(msgQuotaExceeded).WithDetails(map[string]int64{
			"quotaBytes": quota,
			"usedBytes":  used,
		})
	}
	return nil
}

func requiredText(title, category string) []string {
	var violations []string
	if title == "" {
		violations = append(violations, msgTitleRequired)
	}
	if category == "" {
		violations = append(violations, msgCategoryMissing)
	}
	return violations
}

// contentPayload strips an optional data URL header from base64 content.
func contentPayload(raw string) string {
	if i := strings.Index(raw, ";base64,"); i >= 0 && strings.HasPrefix(raw, "data:") {
		raw = raw[i+len(";base64,"):]
	}
	return strings.TrimSpace(raw)
}

// decodedSize is the byte length payload decodes to, without decoding it.
func decodedSize(payload string) int64 {
	n := base64.StdEncoding.DecodedLen(len(payload))
	if len(payload) >= 2 {
		n -= strings.Count(payload[len(payload)-2:], "=")
	}
	return int64(n)
}
