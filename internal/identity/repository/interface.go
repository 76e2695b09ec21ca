package repository

import (
	"context"

	"github.com/google/uuid"
)

// TenancyRepository defines the persistence operations of the tenancy context.
type TenancyRepository interface {
	// Organization operations
	CreateOrganization(ctx context.Context, params CreateOrganizationParams) (Organization, error)
	GetOrganization(ctx context.Context, organizationID uuid.UUID) (Organization, error)
	DeleteOrganization(ctx context.Context, organizationID uuid.UUID) error

	// Profile operations
	CreateProfile(ctx context.Context, params CreateProfileParams) (Profile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error)
	DeleteProfile(ctx context.Context, userID uuid.UUID) error

	// Module subscription operations
	AssignModules(ctx context.Context, organizationID uuid.UUID, modules []string) error
	ListModules(ctx context.Context, organizationID uuid.UUID) ([]string, error)
}

var _ TenancyRepository = (*Repository)(nil)
