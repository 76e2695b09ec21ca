package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ngo_erp_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")
var ErrDuplicateEmail = errors.New("a user with this email address has already been registered")

const (
	TokenTypeEmailVerify = "EMAIL_VERIFY"
)

const userColumns = `id, email, password_hash, is_email_verified, user_metadata, created_at, updated_at`

const createUserQuery = `
	INSERT INTO users (email, password_hash, is_email_verified, user_metadata)
	VALUES (lower($1), $2, $3, $4)
	RETURNING ` + userColumns

const deleteUserQuery = `DELETE FROM users WHERE id = $1`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type User struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	EmailVerified bool
	Metadata      map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CreateUserParams struct {
	Email         string
	PasswordHash  string
	EmailVerified bool
	Metadata      map[string]any
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	var rawMetadata []byte
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.EmailVerified,
		&rawMetadata,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	if len(rawMetadata) > 0 {
		if err := json.Unmarshal(rawMetadata, &user.Metadata); err != nil {
			return User{}, fmt.Errorf("decode user metadata: %w", err)
		}
	}
	return user, nil
}

func (r *Repository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	metadata := params.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	rawMetadata, err := json.Marshal(metadata)
	if err != nil {
		return User{}, fmt.Errorf("encode user metadata: %w", err)
	}

	user, err := scanUser(r.pool.QueryRow(ctx, createUserQuery,
		params.Email, params.PasswordHash, params.EmailVerified, rawMetadata))
	if db.IsUniqueViolation(err) {
		return User{}, ErrDuplicateEmail
	}
	return user, err
}

func (r *Repository) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteUserQuery, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE lower(email) = lower($1)
	`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1
	`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *Repository) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET is_email_verified = true, updated_at = now()
		WHERE id = $1
	`, userID)
	return err
}

func (r *Repository) CreateUserToken(ctx context.Context, userID uuid.UUID, tokenHash string, tokenType string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_tokens (user_id, token_hash, type, expires_at)
		VALUES ($1, $2, $3, $4)
	`, userID, tokenHash, tokenType, expiresAt)
	return err
}

func (r *Repository) GetUserToken(ctx context.Context, tokenHash string, tokenType string) (uuid.UUID, time.Time, error) {
	var userID uuid.UUID
	var expiresAt time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, expires_at FROM user_tokens
		WHERE token_hash = $1 AND type = $2 AND used_at IS NULL
	`, tokenHash, tokenType).Scan(&userID, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.UUID{}, time.Time{}, ErrNotFound
	}
	return userID, expiresAt, err
}

func (r *Repository) UseUserToken(ctx context.Context, tokenHash string, tokenType string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE user_tokens SET used_at = now()
		WHERE token_hash = $1 AND type = $2 AND used_at IS NULL
	`, tokenHash, tokenType)
	return err
}

// DeleteExpiredUserTokens removes tokens that expired or were used before the cutoff.
func (r *Repository) DeleteExpiredUserTokens(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM user_tokens
		WHERE expires_at < $1 OR (used_at IS NOT NULL AND used_at < $1)
	`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
