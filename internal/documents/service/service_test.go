package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"ngo_erp_backend/internal/adapters/storage"
	"ngo_erp_backend/internal/documents/repository"
	"ngo_erp_backend/platform/apperr"
	"ngo_erp_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryObjects struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	maxSize   int64
	failPut   error
	failDel   error
	deletions []string
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}, types: map[string]string{}, maxSize: 1024}
}

func (m *memoryObjects) PutObject(_ context.Context, bucket, key, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return m.failPut
	}
	m.objects[bucket+"/"+key] = data
	m.types[bucket+"/"+key] = contentType
	return nil
}

func (m *memoryObjects) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (m *memoryObjects) DeleteObject(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletions = append(m.deletions, key)
	if m.failDel != nil {
		return m.failDel
	}
	delete(m.objects, bucket+"/"+key)
	return nil
}

func (m *memoryObjects) ValidateFileSize(size int64) error {
	if size <= 0 || size > m.maxSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", size, m.maxSize)
	}
	return nil
}

type memoryDocs struct {
	mu         sync.Mutex
	docs       map[uuid.UUID]repository.Document
	failCreate error
}

func newMemoryDocs() *memoryDocs {
	return &memoryDocs{docs: map[uuid.UUID]repository.Document{}}
}

func (r *memoryDocs) CreateDocument(_ context.Context, p repository.CreateDocumentParams) (repository.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return repository.Document{}, r.failCreate
	}
	doc := repository.Document{
		ID:             uuid.New(),
		OrganizationID: p.OrganizationID,
		UploadedBy:     p.UploadedBy,
		Title:          p.Title,
		Description:    p.Description,
		Category:       p.Category,
		FileName:       p.FileName,
		FilePath:       p.FilePath,
		FileSize:       p.FileSize,
		MimeType:       p.MimeType,
		Tags:           p.Tags,
	}
	r.docs[doc.ID] = doc
	return doc, nil
}

func (r *memoryDocs) GetDocument(_ context.Context, orgID, id uuid.UUID) (repository.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.OrganizationID != orgID {
		return repository.Document{}, repository.ErrNotFound
	}
	return doc, nil
}

func (r *memoryDocs) UpdateDocument(_ context.Context, orgID, id uuid.UUID, p repository.UpdateDocumentParams) (repository.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.OrganizationID != orgID {
		return repository.Document{}, repository.ErrNotFound
	}
	if p.Title != nil {
		doc.Title = *p.Title
	}
	if p.Description != nil {
		doc.Description = p.Description
	}
	if p.Category != nil {
		doc.Category = *p.Category
	}
	if p.Tags != nil {
		doc.Tags = p.Tags
	}
	r.docs[id] = doc
	return doc, nil
}

func (r *memoryDocs) DeleteDocument(_ context.Context, orgID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.OrganizationID != orgID {
		return repository.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *memoryDocs) StorageUsed(_ context.Context, orgID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var used int64
	for _, doc := range r.docs {
		if doc.OrganizationID == orgID {
			used += doc.FileSize
		}
	}
	return used, nil
}

type staticOrgs map[uuid.UUID]uuid.UUID

func (s staticOrgs) GetUserOrganizationID(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	orgID, ok := s[userID]
	if !ok {
		return uuid.UUID{}, apperr.NotFound("profile not found")
	}
	return orgID, nil
}

func (s staticOrgs) GetStorageQuota(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

// quotaOrgs caps every organization at the same storage quota.
type quotaOrgs struct {
	staticOrgs
	quota int64
}

func (q quotaOrgs) GetStorageQuota(context.Context, uuid.UUID) (int64, error) {
	return q.quota, nil
}

const bucket = "documents"

func newTestService() (*Service, *memoryDocs, *memoryObjects, Caller) {
	caller := Caller{UserID: uuid.New(), OrganizationID: uuid.New()}
	docs := newMemoryDocs()
	objects := newMemoryObjects()
	svc := New(docs, objects, staticOrgs{caller.UserID: caller.OrganizationID}, bucket, nil, logger.NewWithWriter("test", io.Discard))
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc, docs, objects, caller
}

func encoded(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestUploadStoresObjectAndMetadata(t *testing.T) {
	svc, docs, objects, caller := newTestService()

	doc, err := svc.Upload(context.Background(), caller, UploadInput{
		FileName:    "Budget 2024.xlsx",
		FileContent: encoded("spreadsheet"),
		Title:       " <b>Budget</b> ",
		Category:    "finance",
		Tags:        []string{"Finance", "finance", "q1"},
	})
	require.NoError(t, err)

	wantPath := fmt.Sprintf("%s/%s/1700000000000_Budget 2024.xlsx", caller.UserID, caller.OrganizationID)
	assert.Equal(t, wantPath, doc.FilePath)
	assert.Equal(t, "Budget", doc.Title)
	assert.Equal(t, int64(len("spreadsheet")), doc.FileSize)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", doc.MimeType)
	assert.Equal(t, []string{"finance", "q1"}, doc.Tags)
	assert.Equal(t, []byte("spreadsheet"), objects.objects[bucket+"/"+wantPath])
	assert.Len(t, docs.docs, 1)
}

func TestUploadRemovesObjectWhenMetadataFails(t *testing.T) {
	svc, docs, objects, caller := newTestService()
	docs.failCreate = errors.New("insert failed")

	_, err := svc.Upload(context.Background(), caller, UploadInput{
		FileName:    "notes.txt",
		FileContent: encoded("hello"),
		Title:       "Notes",
		Category:    "general",
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.GetKind(err))
	assert.Empty(t, objects.objects)
	assert.Len(t, objects.deletions, 1)
}

func TestUploadRejectsBadContent(t *testing.T) {
	svc, _, objects, caller := newTestService()

	_, err := svc.Upload(context.Background(), caller, UploadInput{
		FileName:    "notes.txt",
		FileContent: "%%%not-base64",
		Title:       "Notes",
		Category:    "general",
	})

	assert.Equal(t, apperr.KindBadRequest, apperr.GetKind(err))
	assert.Empty(t, objects.objects)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc, _, objects, caller := newTestService()
	objects.maxSize = 4

	_, err := svc.Upload(context.Background(), caller, UploadInput{
		FileName:    "notes.txt",
		FileContent: encoded("too large"),
		Title:       "Notes",
		Category:    "general",
	})

	assert.Equal(t, apperr.KindBadRequest, apperr.GetKind(err))
}

func TestUploadAcceptsDataURL(t *testing.T) {
	svc, _, _, caller := newTestService()

	doc, err := svc.Upload(context.Background(), caller, UploadInput{
		FileName:    "logo.png",
		FileContent: "data:image/png;base64," + encoded("png-bytes"),
		Title:       "Logo",
		Category:    "branding",
	})
	require.NoError(t, err)

	assert.Equal(t, "image/png", doc.MimeType)
}

func TestDownloadReturnsContent(t *testing.T) {
	svc, _, _, caller := newTestService()
	ctx := context.Background()
	doc, err := svc.Upload(ctx, caller, UploadInput{FileName: "a.pdf", FileContent: encoded("pdf"), Title: "A", Category: "c"})
	require.NoError(t, err)

	file, err := svc.Download(ctx, caller, doc.ID)
	require.NoError(t, err)

	assert.Equal(t, "a.pdf", file.FileName)
	assert.Equal(t, "application/pdf", file.MimeType)
	assert.Equal(t, []byte("pdf"), file.Content)
}

func TestDocumentsAreScopedToOrganization(t *testing.T) {
	svc, _, _, caller := newTestService()
	ctx := context.Background()
	doc, err := svc.Upload(ctx, caller, UploadInput{FileName: "a.pdf", FileContent: encoded("pdf"), Title: "A", Category: "c"})
	require.NoError(t, err)

	outsider := Caller{UserID: uuid.New(), OrganizationID: uuid.New()}

	_, err = svc.Download(ctx, outsider, doc.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.GetKind(err))
	assert.Equal(t, apperr.KindNotFound, apperr.GetKind(svc.Delete(ctx, outsider, doc.ID)))
}

func TestDeleteIgnoresStorageErrors(t *testing.T) {
	svc, docs, objects, caller := newTestService()
	ctx := context.Background()
	doc, err := svc.Upload(ctx, caller, UploadInput{FileName: "a.pdf", FileContent: encoded("pdf"), Title: "A", Category: "c"})
	require.NoError(t, err)
	objects.failDel = errors.New("minio unavailable")

	require.NoError(t, svc.Delete(ctx, caller, doc.ID))

	assert.Empty(t, docs.docs)
}

func TestDeleteMissingDocument(t *testing.T) {
	svc, _, _, caller := newTestService()

	err := svc.Delete(context.Background(), caller, uuid.New())

	assert.Equal(t, apperr.KindNotFound, apperr.GetKind(err))
}

func TestUpdateReplacesTags(t *testing.T) {
	svc, _, _, caller := newTestService()
	ctx := context.Background()
	doc, err := svc.Upload(ctx, caller, UploadInput{FileName: "a.pdf", FileContent: encoded("pdf"), Title: "A", Category: "c", Tags: []string{"old"}})
	require.NoError(t, err)

	title := "Renamed"
	updated, err := svc.Update(ctx, caller, doc.ID, repository.UpdateDocumentParams{Title: &title, Tags: []string{"New", "other"}})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, []string{"new", "other"}, updated.Tags)
	assert.Equal(t, "c", updated.Category)
}

func TestResolveCallerWithoutProfile(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.ResolveCaller(context.Background(), uuid.New())

	assert.Equal(t, apperr.KindUnauthorized, apperr.GetKind(err))
}

func TestUploadWithoutStorageIsMisconfigured(t *testing.T) {
	caller := Caller{UserID: uuid.New(), OrganizationID: uuid.New()}
	svc := New(newMemoryDocs(), nil, staticOrgs{}, bucket, nil, logger.NewWithWriter("test", io.Discard))

	_, err := svc.Upload(context.Background(), caller, UploadInput{FileName: "a.pdf", FileContent: encoded("pdf"), Title: "A", Category: "c"})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeServerMisconfigured, appErr.Code)
}

func TestUploadChecksSizeBeforeDecoding(t *testing.T) {
	svc, _, objects, caller := newTestService()
	objects.maxSize = 4

	_, err := svc.Upload(context.Background(), caller, UploadInput{
		FileName:    "notes.txt",
		FileContent: "%%%%%%%%%%%%%%%%",
		Title:       "Notes",
		Category:    "general",
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.GetKind(err))
	assert.Contains(t, err.Error(), "exceeds maximum allowed size")
}

func TestUploadAcceptsPaddedContentAtLimit(t *testing.T) {
	svc, _, objects, caller := newTestService()
	objects.maxSize = 5

	doc, err := svc.Upload(context.Background(), caller, UploadInput{
		FileName:    "hello.txt",
		FileContent: encoded("hello"),
		Title:       "Hello",
		Category:    "general",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), doc.FileSize)
}

func TestUploadRejectsTitleEmptyAfterSanitizing(t *testing.T) {
	svc, _, objects, caller := newTestService()

	_, err := svc.Upload(context.Background(), caller, UploadInput{
		FileName:    "notes.txt",
		FileContent: encoded("hello"),
		Title:       "<b></b>",
		Category:    "<i> </i>",
	})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, []string{msgTitleRequired, msgCategoryMissing}, appErr.Details)
	assert.Empty(t, objects.objects)
}

func TestUpdateRejectsTitleEmptyAfterSanitizing(t *testing.T) {
	svc, _, _, caller := newTestService()
	ctx := context.Background()
	doc, err := svc.Upload(ctx, caller, UploadInput{FileName: "a.pdf", FileContent: encoded("pdf"), Title: "A", Category: "c"})
	require.NoError(t, err)

	title := "<p></p>"
	_, err = svc.Update(ctx, caller, doc.ID, repository.UpdateDocumentParams{Title: &title})

	assert.Equal(t, apperr.KindValidation, apperr.GetKind(err))
}

func TestUploadEnforcesPlanStorageQuota(t *testing.T) {
	caller := Caller{UserID: uuid.New(), OrganizationID: uuid.New()}
	docs := newMemoryDocs()
	orgs := quotaOrgs{staticOrgs: staticOrgs{caller.UserID: caller.OrganizationID}, quota: 8}
	svc := New(docs, newMemoryObjects(), orgs, bucket, nil, logger.NewWithWriter("test", io.Discard))
	ctx := context.Background()

	_, err := svc.Upload(ctx, caller, UploadInput{FileName: "a.txt", FileContent: encoded("12345"), Title: "A", Category: "c"})
	require.NoError(t, err)

	_, err = svc.Upload(ctx, caller, UploadInput{FileName: "b.txt", FileContent: encoded("6789"), Title: "B", Category: "c"})

	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.GetKind(err))
	assert.Contains(t, err.Error(), msgQuotaExceeded)
	assert.Len(t, docs.docs, 1)
}
