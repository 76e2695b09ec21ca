package adapters

import (
	"context"

	authservice "ngo_erp_backend/internal/auth/service"
	identityrepo "ngo_erp_backend/internal/identity/repository"

	"github.com/google/uuid"
)

// ProfileReader is the narrow interface for reading a user's profile.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (identityrepo.Profile, error)
}

// MembershipReader implements auth's MembershipReader using identity profiles,
// so that access tokens carry the tenant and role.
type MembershipReader struct {
	profiles ProfileReader
}

// NewMembershipReader creates a new adapter.
func NewMembershipReader(profiles ProfileReader) *MembershipReader {
	return &MembershipReader{profiles: profiles}
}

// GetMembership returns the organization and role of userID.
func (r *MembershipReader) GetMembership(ctx context.Context, userID uuid.UUID) (authservice.Membership, error) {
	p, err := r.profiles.GetProfile(ctx, userID)
	if err != nil {
		return authservice.Membership{}, err
	}
	return authservice.Membership{OrganizationID: p.OrganizationID, Role: p.Role}, nil
}

// Compile-time check.
var _ authservice.MembershipReader = (*MembershipReader)(nil)
