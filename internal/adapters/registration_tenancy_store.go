package adapters

import (
	"context"
	"errors"
	"fmt"

	identityrepo "ngo_erp_backend/internal/identity/repository"
	identitysvc "ngo_erp_backend/internal/identity/service"
	regservice "ngo_erp_backend/internal/registration/service"

	"github.com/google/uuid"
)

// TenancyWriter is the narrow slice of the identity service used by registration.
type TenancyWriter interface {
	CreateOrganization(ctx context.Context, params identityrepo.CreateOrganizationParams) (identityrepo.Organization, error)
	DeleteOrganization(ctx context.Context, organizationID uuid.UUID) error
	CreateProfile(ctx context.Context, params identityrepo.CreateProfileParams) (identityrepo.Profile, error)
	DeleteProfile(ctx context.Context, userID uuid.UUID) error
	AssignModules(ctx context.Context, organizationID uuid.UUID, modules []string) error
}

// TenancyStore implements registration's organization, profile and module
// stores on top of the identity service.
type TenancyStore struct {
	svc TenancyWriter
}

// NewTenancyStore creates a new adapter.
func NewTenancyStore(svc TenancyWriter) *TenancyStore {
	return &TenancyStore{svc: svc}
}

func (s *TenancyStore) CreateOrganization(ctx context.Context, in regservice.NewOrganization) (uuid.UUID, error) {
	org, err := s.svc.CreateOrganization(ctx, identityrepo.CreateOrganizationParams{
		Name:            in.Name,
		Type:            in.Type,
		PrimaryCurrency: in.PrimaryCurrency,
		Address:         in.Address,
		Phone:           in.Phone,
		PricingPlan:     in.PricingPlan,
		CreatedBy:       in.CreatedBy,
	})
	if err != nil {
		return uuid.UUID{}, err
	}
	return org.ID, nil
}

func (s *TenancyStore) DeleteOrganization(ctx context.Context, organizationID uuid.UUID) error {
	return s.svc.DeleteOrganization(ctx, organizationID)
}

func (s *TenancyStore) CreateProfile(ctx context.Context, in regservice.NewProfile) error {
	_, err := s.svc.CreateProfile(ctx, identityrepo.CreateProfileParams{
		ID:             in.UserID,
		Email:          in.Email,
		FullName:       in.FullName,
		Role:           in.Role,
		OrganizationID: in.OrganizationID,
	})
	if errors.Is(err, identitysvc.ErrDuplicateProfile) {
		return fmt.Errorf("%w: %w", regservice.ErrConflict, err)
	}
	return err
}

func (s *TenancyStore) DeleteProfile(ctx context.Context, userID uuid.UUID) error {
	return s.svc.DeleteProfile(ctx, userID)
}

func (s *TenancyStore) AssignModules(ctx context.Context, organizationID uuid.UUID, modules []string) error {
	return s.svc.AssignModules(ctx, organizationID, modules)
}

// Compile-time checks.
var (
	_ regservice.OrganizationStore = (*TenancyStore)(nil)
	_ regservice.ProfileStore      = (*TenancyStore)(nil)
	_ regservice.ModuleStore       = (*TenancyStore)(nil)
)
