package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuthRepository defines the interface for authentication data operations.
// This allows services to depend on an abstraction rather than concrete implementation,
// improving testability and modularity.
type AuthRepository interface {
	// User operations
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
	MarkEmailVerified(ctx context.Context, userID uuid.UUID) error

	// Token operations
	CreateUserToken(ctx context.Context, userID uuid.UUID, tokenHash string, tokenType string, expiresAt time.Time) error
	GetUserToken(ctx context.Context, tokenHash string, tokenType string) (uuid.UUID, time.Time, error)
	UseUserToken(ctx context.Context, tokenHash string, tokenType string) error
}

// Ensure Repository implements AuthRepository
var _ AuthRepository = (*Repository)(nil)
