package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"ngo_erp_backend/internal/events"
	"ngo_erp_backend/internal/registration/transport"
	"ngo_erp_backend/platform/apperr"
	"ngo_erp_backend/platform/logger"
	"ngo_erp_backend/platform/saga"

	"github.com/google/uuid"
)

const (
	workflowName = "tenant_registration"

	StepCreateIdentity     = "create_identity"
	StepCreateOrganization = "create_organization"
	StepCreateProfile      = "create_profile"
	StepAssignModules      = "assign_modules"

	// Resource names used when a failed rollback is queued for retry.
	ResourceIdentity     = "identity"
	ResourceOrganization = "organization"
	ResourceProfile      = "profile"

	RoleOrgAdmin = "org_admin"

	enqueueTimeout = 5 * time.Second

	msgDuplicateEmail   = "An account with this email address already exists."
	msgSuggestDifferent = "Please use a different email address or sign in to your existing account."
	msgValidationFailed = "Validation failed"
	msgInternal         = "An unexpected error occurred during registration. Please try again later."
	msgMisconfigured    = "Registration service is not configured."
)

// ErrConflict marks a store failure caused by data that already exists.
// Store adapters wrap their duplicate errors with it.
var ErrConflict = errors.New("already exists")

var duplicatePattern = regexp.MustCompile(`(?i)duplicate|already (been )?registered|already exists|unique constraint`)

// NewIdentity is the auth identity created for the organization admin.
type NewIdentity struct {
	Email        string
	Password     string
	DisplayName  string
	PreConfirmed bool
}

// NewOrganization is the tenant row created for the registration.
type NewOrganization struct {
	Name            string
	Type            string
	PrimaryCurrency string
	Address         *string
	Phone           *string
	PricingPlan     string
	CreatedBy       uuid.UUID
}

// NewProfile links the identity to its organization.
type NewProfile struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Email          string
	FullName       string
	Role           string
}

// IdentityStore creates and removes authentication identities.
type IdentityStore interface {
	CreateIdentity(ctx context.Context, in NewIdentity) (uuid.UUID, error)
	DeleteIdentity(ctx context.Context, userID uuid.UUID) error
}

// OrganizationStore creates and removes organizations.
type OrganizationStore interface {
	CreateOrganization(ctx context.Context, in NewOrganization) (uuid.UUID, error)
	DeleteOrganization(ctx context.Context, organizationID uuid.UUID) error
}

// ProfileStore creates and removes user profiles.
type ProfileStore interface {
	CreateProfile(ctx context.Context, in NewProfile) error
	DeleteProfile(ctx context.Context, userID uuid.UUID) error
}

// ModuleStore enables modules for an organization.
type ModuleStore interface {
	AssignModules(ctx context.Context, organizationID uuid.UUID, modules []string) error
}

// CompensationQueue accepts rollbacks that failed so they can be retried later.
type CompensationQueue interface {
	EnqueueCompensation(ctx context.Context, resource string, id uuid.UUID) error
}

// Stores groups the stores a registration writes to.
type Stores struct {
	Identities    IdentityStore
	Organizations OrganizationStore
	Profiles      ProfileStore
	Modules       ModuleStore
}

func (s Stores) complete() bool {
	return s.Identities != nil && s.Organizations != nil && s.Profiles != nil && s.Modules != nil
}

// Result identifies the created tenant.
type Result struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
}

// Timeouts bound each forward step and each compensation of the workflow.
// Zero values leave the saga defaults in place.
type Timeouts struct {
	Step time.Duration
	Undo time.Duration
}

type Service struct {
	stores   Stores
	queue    CompensationQueue
	eventBus events.Bus
	log      *logger.Logger
	timeouts Timeouts
}

func New(stores Stores, queue CompensationQueue, eventBus events.Bus, timeouts Timeouts, log *logger.Logger) *Service {
	return &Service{
		stores:   stores,
		queue:    queue,
		eventBus: eventBus,
		log:      log,
		timeouts: timeouts,
	}
}

// Register validates the request and creates identity, organization, profile
// and module subscriptions. If any step fails, the steps that already
// succeeded are undone in reverse order before the error is returned.
// All returned errors are *apperr.Error values.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) (result Result, err error) {
	if violations := Validate(req); len(violations) > 0 {
		return Result{}, apperr.Validation(msgValidationFailed).WithDetails(violations)
	}
	if !s.stores.complete() {
		s.log.Error("registration stores not configured")
		return Result{}, apperr.Internal(msgMisconfigured).WithCode(apperr.CodeServerMisconfigured)
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.WithContext(ctx).Error("registration panicked", "panic", fmt.Sprint(r))
			result, err = Result{}, apperr.Internal(msgInternal)
		}
	}()

	reg, err := Normalize(req)
	if err != nil {
		s.log.WithContext(ctx).Error("registration normalization failed", "error", err)
		return Result{}, apperr.Internal(msgInternal)
	}

	var userID, orgID uuid.UUID
	run := saga.New(workflowName, s.log.WithContext(ctx),
		saga.WithStepTimeout(s.timeouts.Step),
		saga.WithUndoTimeout(s.timeouts.Undo),
	).
		Add(saga.Step{
			Name: StepCreateIdentity,
			Do: func(ctx context.Context) error {
				id, err := s.stores.Identities.CreateIdentity(ctx, NewIdentity{
					Email:       reg.Email,
					Password:    reg.Password,
					DisplayName: reg.ContactName,
				})
				userID = id
				return err
			},
			Undo: func(ctx context.Context) error {
				return s.retryable(ctx, ResourceIdentity, userID, s.stores.Identities.DeleteIdentity(ctx, userID))
			},
		}).
		Add(saga.Step{
			Name: StepCreateOrganization,
			Do: func(ctx context.Context) error {
				id, err := s.stores.Organizations.CreateOrganization(ctx, NewOrganization{
					Name:            reg.OrganizationName,
					Type:            reg.OrganizationType,
					PrimaryCurrency: reg.PrimaryCurrency,
					Address:         reg.Address,
					Phone:           reg.Phone,
					PricingPlan:     reg.PricingPlan,
					CreatedBy:       userID,
				})
				orgID = id
				return err
			},
			Undo: func(ctx context.Context) error {
				return s.retryable(ctx, ResourceOrganization, orgID, s.stores.Organizations.DeleteOrganization(ctx, orgID))
			},
		}).
		Add(saga.Step{
			Name: StepCreateProfile,
			Do: func(ctx context.Context) error {
				return s.stores.Profiles.CreateProfile(ctx, NewProfile{
					UserID:         userID,
					OrganizationID: orgID,
					Email:          reg.Email,
					FullName:       reg.ContactName,
					Role:           RoleOrgAdmin,
				})
			},
			Undo: func(ctx context.Context) error {
				return s.retryable(ctx, ResourceProfile, userID, s.stores.Profiles.DeleteProfile(ctx, userID))
			},
		}).
		Add(saga.Step{
			Name: StepAssignModules,
			Do: func(ctx context.Context) error {
				return s.stores.Modules.AssignModules(ctx, orgID, reg.Modules)
			},
		})

	if err := run.Run(ctx); err != nil {
		return Result{}, s.classify(ctx, err)
	}

	s.log.WithContext(ctx).Info("tenant registered",
		"orgId", orgID.String(),
		"userId", userID.String(),
		"modules", reg.Modules,
	)

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.TenantRegistered{
			Meta:             events.NewMeta(),
			OrganizationID:   orgID,
			OrganizationName: reg.OrganizationName,
			UserID:           userID,
			Email:            reg.Email,
			ContactName:      reg.ContactName,
			Modules:          reg.Modules,
		})
	}

	return Result{OrganizationID: orgID, UserID: userID}, nil
}

// retryable passes err through and, when it is non-nil, queues the rollback
// for a later attempt. The enqueue gets its own deadline since the undo
// context may already have expired.
func (s *Service) retryable(ctx context.Context, resource string, id uuid.UUID, err error) error {
	if err == nil || s.queue == nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()
	if qerr := s.queue.EnqueueCompensation(ctx, resource, id); qerr != nil {
		s.log.WithContext(ctx).Error("failed to queue compensation",
			"resource", resource,
			"id", id.String(),
			"error", qerr,
		)
	}
	return err
}

// classify maps a failed step to the error reported to the caller.
func (s *Service) classify(ctx context.Context, err error) error {
	var stepErr *saga.StepError
	if !errors.As(err, &stepErr) || stepErr.Panicked() {
		s.log.WithContext(ctx).Error("registration aborted unexpectedly", "error", err)
		return apperr.Internal(msgInternal)
	}

	s.log.WithContext(ctx).Warn("registration step failed", "step", stepErr.Step, "error", stepErr.Err)

	switch stepErr.Step {
	case StepCreateIdentity, StepCreateProfile:
		if isDuplicate(stepErr.Err) {
			return apperr.Conflict(msgDuplicateEmail).
				WithCode(apperr.CodeDuplicateEmail).
				WithSuggestedAction(msgSuggestDifferent)
		}
	}
	return apperr.BadRequest(stepErr.Err.Error()).WithCode(apperr.CodeRegistrationFailed)
}

func isDuplicate(err error) bool {
	return errors.Is(err, ErrConflict) || duplicatePattern.MatchString(err.Error())
}
