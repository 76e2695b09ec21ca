package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

const documentColumns = `id, org_id, uploaded_by, title, description, category, file_name, file_path, file_size, mime_type, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Document struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	UploadedBy     uuid.UUID
	Title          string
	Description    *string
	Category       string
	FileName       string
	FilePath       string
	FileSize       int64
	MimeType       string
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CreateDocumentParams struct {
	OrganizationID uuid.UUID
	UploadedBy     uuid.UUID
	Title          string
	Description    *string
	Category       string
	FileName       string
	FilePath       string
	FileSize       int64
	MimeType       string
	Tags           []string
}

// UpdateDocumentParams holds optional changes. A nil Tags leaves tags untouched;
// a non-nil empty slice removes all of them.
type UpdateDocumentParams struct {
	Title       *string
	Description *string
	Category    *string
	Tags        []string
}

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(
		&d.ID,
		&d.OrganizationID,
		&d.UploadedBy,
		&d.Title,
		&d.Description,
		&d.Category,
		&d.FileName,
		&d.FilePath,
		&d.FileSize,
		&d.MimeType,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return d, err
}

// CreateDocument inserts the metadata row and its tags in one transaction.
func (r *Repository) CreateDocument(ctx context.Context, params CreateDocumentParams) (Document, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Document{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	doc, err := scanDocument(tx.QueryRow(ctx, `
    INSERT INTO documents (org_id, uploaded_by, title, description, category, file_name, file_path, file_size, mime_type)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    RETURNING `+documentColumns,
		params.OrganizationID, params.UploadedBy, params.Title, params.Description, params.Category,
		params.FileName, params.FilePath, params.FileSize, params.MimeType))
	if err != nil {
		return Document{}, err
	}

	if err := insertTags(ctx, tx, doc.ID, params.Tags); err != nil {
		return Document{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Document{}, err
	}

	doc.Tags = append([]string{}, params.Tags...)
	return doc, nil
}

func (r *Repository) GetDocument(ctx context.Context, organizationID, documentID uuid.UUID) (Document, error) {
	doc, err := scanDocument(r.pool.QueryRow(ctx, `
    SELECT `+documentColumns+`
    FROM documents
    WHERE id = $1 AND org_id = $2
  `, documentID, organizationID))
	if err != nil {
		return Document{}, err
	}

	doc.Tags, err = r.listTags(ctx, r.pool, doc.ID)
	return doc, err
}

// DeleteDocument removes the tag associations and the metadata row.
func (r *Repository) DeleteDocument(ctx context.Context, organizationID, documentID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM document_tag_associations WHERE document_id = $1`, documentID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM documents WHERE id = $1 AND org_id = $2`, documentID, organizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// StorageUsed sums the stored file sizes of an organization.
func (r *Repository) StorageUsed(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var used int64
	err := r.pool.QueryRow(ctx, `
    SELECT COALESCE(SUM(file_size), 0)::BIGINT
    FROM documents
    WHERE org_id = $1
  `, organizationID).Scan(&used)
	return used, err
}

func (r *Repository) UpdateDocument(ctx context.Context, organizationID, documentID uuid.UUID, params UpdateDocumentParams) (Document, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Document{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	doc, err := scanDocument(tx.QueryRow(ctx, `
    UPDATE documents
    SET title = COALESCE($3, title),
        description = COALESCE($4, description),
        category = COALESCE($5, category),
        updated_at = now()
    WHERE id = $1 AND org_id = $2
    RETURNING `+documentColumns,
		documentID, organizationID, params.Title, params.Description, params.Category))
	if err != nil {
		return Document{}, err
	}

	if params.Tags != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM document_tag_associations WHERE document_id = $1`, documentID); err != nil {
			return Document{}, err
		}
		if err := insertTags(ctx, tx, documentID, params.Tags); err != nil {
			return Document{}, err
		}
	}

	doc.Tags, err = r.listTags(ctx, tx, documentID)
	if err != nil {
		return Document{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Document{}, err
	}
	return doc, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *Repository) listTags(ctx context.Context, q querier, documentID uuid.UUID) ([]string, error) {
	rows, err := q.Query(ctx, `
    SELECT tag
    FROM document_tag_associations
    WHERE document_id = $1
    ORDER BY tag
  `, documentID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func insertTags(ctx context.Context, tx pgx.Tx, documentID uuid.UUID, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, tag := range tags {
		batch.Queue(`
      INSERT INTO document_tag_associations (document_id, tag)
      VALUES ($1, $2)
      ON CONFLICT DO NOTHING
    `, documentID, tag)
	}
	return tx.SendBatch(ctx, batch).Close()
}
