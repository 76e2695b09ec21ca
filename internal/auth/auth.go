// Package auth provides the authentication identity store.
// This file defines the public API of the auth bounded context.
// Only types and interfaces defined here should be imported by other domains.
package auth

import "ngo_erp_backend/internal/auth/service"

type (
	// Identity is the authentication record of a user.
	Identity = service.Identity
	// CreateIdentityInput describes a new identity.
	CreateIdentityInput = service.CreateIdentityInput
	// Membership is the tenancy information embedded in access tokens.
	Membership = service.Membership
	// MembershipReader resolves the organization a user belongs to.
	MembershipReader = service.MembershipReader
)

// ErrEmailTaken is returned by CreateIdentity when the email is already registered.
var ErrEmailTaken = service.ErrEmailTaken
