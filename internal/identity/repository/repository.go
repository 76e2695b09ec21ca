package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ngo_erp_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicateProfile is returned when a profile for the email or user already exists.
	ErrDuplicateProfile = errors.New("duplicate key value violates unique constraint on profiles")
)

const (
	organizationColumns = `id, name, type, primary_currency, address, phone, pricing_plan, created_by, created_at, updated_at`
	profileColumns      = `id, email, full_name, role, org_id, created_at, updated_at`
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Organization struct {
	ID              uuid.UUID
	Name            string
	Type            string
	PrimaryCurrency string
	Address         *string
	Phone           *string
	PricingPlan     string
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type CreateOrganizationParams struct {
	Name            string
	Type            string
	PrimaryCurrency string
	Address         *string
	Phone           *string
	PricingPlan     string
	CreatedBy       uuid.UUID
}

type Profile struct {
	ID             uuid.UUID
	Email          string
	FullName       string
	Role           string
	OrganizationID uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CreateProfileParams struct {
	ID             uuid.UUID
	Email          string
	FullName       string
	Role           string
	OrganizationID uuid.UUID
}

func scanOrganization(row pgx.Row) (Organization, error) {
	var org Organization
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Type,
		&org.PrimaryCurrency,
		&org.Address,
		&org.Phone,
		&org.PricingPlan,
		&org.CreatedBy,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	return org, err
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.OrganizationID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

func (r *Repository) CreateOrganization(ctx context.Context, params CreateOrganizationParams) (Organization, error) {
	return scanOrganization(r.pool.QueryRow(ctx, `
    INSERT INTO organizations (name, type, primary_currency, address, phone, pricing_plan, created_by)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING `+organizationColumns,
		params.Name, params.Type, params.PrimaryCurrency, params.Address, params.Phone, params.PricingPlan, params.CreatedBy))
}

func (r *Repository) GetOrganization(ctx context.Context, organizationID uuid.UUID) (Organization, error) {
	return scanOrganization(r.pool.QueryRow(ctx, `
    SELECT `+organizationColumns+`
    FROM organizations
    WHERE id = $1
  `, organizationID))
}

func (r *Repository) DeleteOrganization(ctx context.Context, organizationID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, organizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CreateProfile(ctx context.Context, params CreateProfileParams) (Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `
    INSERT INTO profiles (id, email, full_name, role, org_id)
    VALUES ($1, lower($2), $3, $4, $5)
    RETURNING `+profileColumns,
		params.ID, params.Email, params.FullName, params.Role, params.OrganizationID))
	switch {
	case db.IsUniqueViolation(err):
		return Profile{}, fmt.Errorf("%w (%s)", ErrDuplicateProfile, db.ConstraintName(err))
	case db.IsForeignKeyViolation(err):
		return Profile{}, fmt.Errorf("organization %s: %w", params.OrganizationID, ErrNotFound)
	}
	return p, err
}

func (r *Repository) GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx, `
    SELECT `+profileColumns+`
    FROM profiles
    WHERE id = $1
  `, userID))
}

func (r *Repository) DeleteProfile(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignModules inserts all module rows in one batch inside a transaction so
// either every row exists afterwards or none does.
func (r *Repository) AssignModules(ctx context.Context, organizationID uuid.UUID, modules []string) error {
	if len(modules) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, module := range modules {
		batch.Queue(`
      INSERT INTO organization_modules (org_id, module)
      VALUES ($1, $2)
      ON CONFLICT (org_id, module) DO NOTHING
    `, organizationID, module)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) ListModules(ctx context.Context, organizationID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
    SELECT module
    FROM organization_modules
    WHERE org_id = $1
    ORDER BY created_at, module
  `, organizationID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
