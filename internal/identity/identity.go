// Package identity provides the tenancy bounded context API: organizations,
// user profiles and module subscriptions.
package identity

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the public interface for tenancy lookups.
// Other domains should depend on this interface, not on concrete implementations.
type Service interface {
	// GetUserOrganizationID returns the organization ID for a user.
	GetUserOrganizationID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	// GetStorageQuota returns the plan's document storage allowance in bytes.
	GetStorageQuota(ctx context.Context, organizationID uuid.UUID) (int64, error)
}
