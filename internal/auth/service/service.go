package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"ngo_erp_backend/internal/auth/password"
	"ngo_erp_backend/internal/auth/repository"
	"ngo_erp_backend/internal/auth/token"
	"ngo_erp_backend/platform/apperr"
	"ngo_erp_backend/platform/config"
	"ngo_erp_backend/platform/httpkit"
	"ngo_erp_backend/platform/logger"

	"github.com/google/uuid"
)

// ErrEmailTaken is returned by CreateIdentity when the email is already registered.
var ErrEmailTaken = repository.ErrDuplicateEmail

var (
	errInvalidCredentials = apperr.Unauthorized("invalid credentials")
	errEmailNotVerified   = apperr.Unauthorized("email not verified")
	errTokenInvalid       = apperr.BadRequest("token invalid or expired")
)

const verifyTokenBytes = 32

// Identity is the authentication record of a user.
type Identity struct {
	ID            uuid.UUID
	Email         string
	EmailVerified bool
	Metadata      map[string]any
	CreatedAt     time.Time
}

// CreateIdentityInput describes a new identity.
type CreateIdentityInput struct {
	Email        string
	Password     string
	Metadata     map[string]any
	PreConfirmed bool
}

// Membership is the tenancy information embedded in access tokens.
type Membership struct {
	OrganizationID uuid.UUID
	Role           string
}

// MembershipReader resolves the organization a user belongs to.
// Implemented by the identity module through an adapter.
type MembershipReader interface {
	GetMembership(ctx context.Context, userID uuid.UUID) (Membership, error)
}

type Service struct {
	repo    repository.AuthRepository
	members MembershipReader
	cfg     config.AuthServiceConfig
	log     *logger.Logger
	now     func() time.Time
}

func New(repo repository.AuthRepository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log, now: time.Now}
}

// SetMembershipReader wires the identity module after construction to
// avoid a cycle between the two modules.
func (s *Service) SetMembershipReader(members MembershipReader) {
	s.members = members
}

// CreateIdentity creates a user with a bcrypt-hashed password.
func (s *Service) CreateIdentity(ctx context.Context, in CreateIdentityInput) (Identity, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return Identity{}, apperr.Validation("email and password are required")
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return Identity{}, err
	}

	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: in.PreConfirmed,
		Metadata:      in.Metadata,
	})
	if err != nil {
		return Identity{}, err
	}

	s.log.AuthEvent("identity_created", user.Email, true, "")
	return toIdentity(user), nil
}

// DeleteIdentity removes a user. Deleting an identity that no longer exists succeeds.
func (s *Service) DeleteIdentity(ctx context.Context, userID uuid.UUID) error {
	err := s.repo.DeleteUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) GetIdentityByEmail(ctx context.Context, email string) (Identity, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return Identity{}, apperr.NotFound("identity not found")
	}
	if err != nil {
		return Identity{}, err
	}
	return toIdentity(user), nil
}

// VerifyToken resolves an access token to its claims. The token must be
// valid and its subject must still exist.
func (s *Service) VerifyToken(ctx context.Context, rawToken string) (httpkit.AccessClaims, error) {
	claims, err := token.ParseAccessToken(rawToken, s.cfg.GetJWTAccessSecret())
	if err != nil {
		return httpkit.AccessClaims{}, apperr.Unauthorized("invalid token")
	}

	if _, err := s.repo.GetUserByID(ctx, claims.UserID); err != nil {
		return httpkit.AccessClaims{}, apperr.Unauthorized("invalid token")
	}

	return httpkit.AccessClaims{UserID: claims.UserID, TenantID: claims.TenantID, Roles: claims.Roles}, nil
}

// SignIn checks credentials and issues an access token carrying the user's
// organization and role.
func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		s.log.AuthEvent("sign_in", email, false, "unknown email")
		return "", errInvalidCredentials
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in", email, false, "bad password")
		return "", errInvalidCredentials
	}

	if !user.EmailVerified {
		s.log.AuthEvent("sign_in", email, false, "email not verified")
		return "", errEmailNotVerified
	}

	claims := token.AccessClaims{UserID: user.ID, Roles: []string{}}
	if s.members != nil {
		membership, err := s.members.GetMembership(ctx, user.ID)
		if err != nil {
			return "", err
		}
		claims.TenantID = &membership.OrganizationID
		claims.Roles = []string{membership.Role}
	}

	accessToken, err := token.SignAccessToken(claims, s.cfg.GetAccessTokenTTL(), s.cfg.GetJWTAccessSecret(), s.now())
	if err != nil {
		return "", err
	}

	s.log.AuthEvent("sign_in", user.Email, true, "")
	return accessToken, nil
}

// IssueEmailVerification stores a one-time verification token and returns
// its raw value for delivery.
func (s *Service) IssueEmailVerification(ctx context.Context, userID uuid.UUID) (string, error) {
	rawToken, err := token.GenerateRandomToken(verifyTokenBytes)
	if err != nil {
		return "", err
	}

	expiresAt := s.now().Add(s.cfg.GetVerifyTokenTTL())
	if err := s.repo.CreateUserToken(ctx, userID, token.HashSHA256(rawToken), repository.TokenTypeEmailVerify, expiresAt); err != nil {
		return "", err
	}
	return rawToken, nil
}

func (s *Service) VerifyEmail(ctx context.Context, rawToken string) error {
	hash := token.HashSHA256(rawToken)
	userID, expiresAt, err := s.repo.GetUserToken(ctx, hash, repository.TokenTypeEmailVerify)
	if err != nil {
		return errTokenInvalid
	}

	if s.now().After(expiresAt) {
		return errTokenInvalid
	}

	if err := s.repo.MarkEmailVerified(ctx, userID); err != nil {
		return err
	}

	_ = s.repo.UseUserToken(ctx, hash, repository.TokenTypeEmailVerify)
	return nil
}

func toIdentity(user repository.User) Identity {
	return Identity{
		ID:            user.ID,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Metadata:      user.Metadata,
		CreatedAt:     user.CreatedAt,
	}
}

var _ httpkit.TokenVerifier = (*Service)(nil)
