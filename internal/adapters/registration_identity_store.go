// Package adapters contains adapters that bridge different bounded contexts.
// These adapters implement interfaces defined by consuming domains while
// wrapping services from providing domains.
package adapters

import (
	"context"
	"errors"
	"fmt"

	authservice "ngo_erp_backend/internal/auth/service"
	regservice "ngo_erp_backend/internal/registration/service"

	"github.com/google/uuid"
)

// IdentityWriter is the narrow slice of the auth service used by registration.
type IdentityWriter interface {
	CreateIdentity(ctx context.Context, in authservice.CreateIdentityInput) (authservice.Identity, error)
	DeleteIdentity(ctx context.Context, userID uuid.UUID) error
}

// AuthIdentityStore implements registration's IdentityStore on top of the
// auth service. Duplicate emails are reported as registration conflicts.
type AuthIdentityStore struct {
	auth IdentityWriter
}

// NewAuthIdentityStore creates a new adapter wrapping the auth service.
func NewAuthIdentityStore(auth IdentityWriter) *AuthIdentityStore {
	return &AuthIdentityStore{auth: auth}
}

// CreateIdentity creates an identity carrying the contact name as metadata.
func (s *AuthIdentityStore) CreateIdentity(ctx context.Context, in regservice.NewIdentity) (uuid.UUID, error) {
	identity, err := s.auth.CreateIdentity(ctx, authservice.CreateIdentityInput{
		Email:        in.Email,
		Password:     in.Password,
		Metadata:     map[string]any{"full_name": in.DisplayName},
		PreConfirmed: in.PreConfirmed,
	})
	if errors.Is(err, authservice.ErrEmailTaken) {
		return uuid.UUID{}, fmt.Errorf("%w: %w", regservice.ErrConflict, err)
	}
	if err != nil {
		return uuid.UUID{}, err
	}
	return identity.ID, nil
}

// DeleteIdentity removes the identity.
func (s *AuthIdentityStore) DeleteIdentity(ctx context.Context, userID uuid.UUID) error {
	return s.auth.DeleteIdentity(ctx, userID)
}

// Compile-time check.
var _ regservice.IdentityStore = (*AuthIdentityStore)(nil)
