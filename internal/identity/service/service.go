package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ngo_erp_backend/internal/identity/catalog"
	"ngo_erp_backend/internal/identity/repository"
	"ngo_erp_backend/platform/apperr"
	"ngo_erp_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	organizationNotFound = "organization not found"
	profileNotFound      = "profile not found"

	OrganizationTypeNGO   = "NGO"
	OrganizationTypeDonor = "Donor"

	RoleOrgAdmin = "org_admin"
)

// ErrDuplicateProfile is returned by CreateProfile when the user or email already has a profile.
var ErrDuplicateProfile = repository.ErrDuplicateProfile

type Service struct {
	repo repository.TenancyRepository
	log  *logger.Logger
}

// OrganizationOverview is an organization together with its enabled modules.
type OrganizationOverview struct {
	Organization repository.Organization
	Modules      []string
	Role         string
}

func New(repo repository.TenancyRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) CreateOrganization(ctx context.Context, params repository.CreateOrganizationParams) (repository.Organization, error) {
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return repository.Organization{}, apperr.Validation("organization name is required")
	}
	if params.CreatedBy == uuid.Nil {
		return repository.Organization{}, apperr.Validation("organization creator is required")
	}
	switch params.Type {
	case "":
		params.Type = OrganizationTypeNGO
	case OrganizationTypeNGO, OrganizationTypeDonor:
	default:
		return repository.Organization{}, apperr.Validation(fmt.Sprintf("unsupported organization type %q", params.Type))
	}
	if params.PrimaryCurrency == "" {
		params.PrimaryCurrency = "USD"
	}
	plan, err := catalog.ResolvePlan(params.PricingPlan)
	if err != nil {
		return repository.Organization{}, err
	}
	params.PricingPlan = plan.Key

	return s.repo.CreateOrganization(ctx, params)
}

func (s *Service) GetOrganization(ctx context.Context, organizationID uuid.UUID) (repository.Organization, error) {
	org, err := s.repo.GetOrganization(ctx, organizationID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Organization{}, apperr.NotFound(organizationNotFound)
	}
	return org, err
}

// DeleteOrganization removes the organization. Deleting a missing
// organization succeeds so that compensation can be retried.
func (s *Service) DeleteOrganization(ctx context.Context, organizationID uuid.UUID) error {
	err := s.repo.DeleteOrganization(ctx, organizationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) CreateProfile(ctx context.Context, params repository.CreateProfileParams) (repository.Profile, error) {
	if params.ID == uuid.Nil || params.OrganizationID == uuid.Nil {
		return repository.Profile{}, apperr.Validation("profile requires a user and an organization")
	}
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if params.Role == "" {
		params.Role = RoleOrgAdmin
	}
	return s.repo.CreateProfile(ctx, params)
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (repository.Profile, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Profile{}, apperr.NotFound(profileNotFound)
	}
	return p, err
}

func (s *Service) DeleteProfile(ctx context.Context, userID uuid.UUID) error {
	err := s.repo.DeleteProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// AssignModules enables the given module keys for an organization.
func (s *Service) AssignModules(ctx context.Context, organizationID uuid.UUID, modules []string) error {
	for _, m := range modules {
		if !catalog.IsModuleKey(m) {
			return apperr.Validation(fmt.Sprintf("unknown module %q", m))
		}
	}
	return s.repo.AssignModules(ctx, organizationID, modules)
}

func (s *Service) ListModules(ctx context.Context, organizationID uuid.UUID) ([]string, error) {
	return s.repo.ListModules(ctx, organizationID)
}

// GetUserOrganizationID returns the organization the user's profile belongs to.
func (s *Service) GetUserOrganizationID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return uuid.UUID{}, err
	}
	return p.OrganizationID, nil
}

// GetStorageQuota returns the document storage allowance of the
// organization's pricing plan in bytes. Zero means unlimited.
func (s *Service) GetStorageQuota(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	org, err := s.GetOrganization(ctx, organizationID)
	if err != nil {
		return 0, err
	}
	plan, err := catalog.ResolvePlan(org.PricingPlan)
	if err != nil {
		return 0, err
	}
	return plan.StorageQuotaBytes(), nil
}

// GetOverview returns the caller's organization with its enabled modules.
func (s *Service) GetOverview(ctx context.Context, userID uuid.UUID) (OrganizationOverview, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return OrganizationOverview{}, err
	}
	org, err := s.GetOrganization(ctx, p.OrganizationID)
	if err != nil {
		return OrganizationOverview{}, err
	}
	modules, err := s.repo.ListModules(ctx, org.ID)
	if err != nil {
		return OrganizationOverview{}, err
	}
	return OrganizationOverview{Organization: org, Modules: modules, Role: p.Role}, nil
}
