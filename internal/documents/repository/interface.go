package repository

import (
	"context"

	"github.com/google/uuid"
)

// DocumentRepository defines persistence for document metadata and tags.
// Every lookup is scoped to an organization.
type DocumentRepository interface {
	CreateDocument(ctx context.Context, params CreateDocumentParams) (Document, error)
	GetDocument(ctx context.Context, organizationID, documentID uuid.UUID) (Document, error)
	UpdateDocument(ctx context.Context, organizationID, documentID uuid.UUID, params UpdateDocumentParams) (Document, error)
	DeleteDocument(ctx context.Context, organizationID, documentID uuid.UUID) error
	StorageUsed(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

var _ DocumentRepository = (*Repository)(nil)
