package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenType = "access"

var ErrInvalidToken = errors.New("invalid token")

// AccessClaims is what an access token asserts about its bearer.
type AccessClaims struct {
	UserID   uuid.UUID
	TenantID *uuid.UUID
	Roles    []string
}

func GenerateRandomToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func HashSHA256(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SignAccessToken issues an HS256 access token.
func SignAccessToken(claims AccessClaims, ttl time.Duration, secret string, now time.Time) (string, error) {
	mapClaims := jwt.MapClaims{
		"sub":   claims.UserID.String(),
		"type":  accessTokenType,
		"roles": claims.Roles,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}
	if claims.TenantID != nil {
		mapClaims["tenant_id"] = claims.TenantID.String()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims).SignedString([]byte(secret))
}

// ParseAccessToken validates signature, expiry and token type.
func ParseAccessToken(rawToken, secret string) (AccessClaims, error) {
	parsed, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return AccessClaims{}, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return AccessClaims{}, ErrInvalidToken
	}
	if tokenType, _ := mapClaims["type"].(string); tokenType != accessTokenType {
		return AccessClaims{}, ErrInvalidToken
	}

	subject, _ := mapClaims["sub"].(string)
	userID, err := uuid.Parse(subject)
	if err != nil {
		return AccessClaims{}, ErrInvalidToken
	}

	claims := AccessClaims{UserID: userID, Roles: extractRoles(mapClaims["roles"])}
	if raw, ok := mapClaims["tenant_id"].(string); ok && strings.TrimSpace(raw) != "" {
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			return AccessClaims{}, ErrInvalidToken
		}
		claims.TenantID = &tenantID
	}
	return claims, nil
}

func extractRoles(value interface{}) []string {
	roles := make([]string, 0)
	switch typed := value.(type) {
	case []string:
		return append(roles, typed...)
	case []interface{}:
		for _, item := range typed {
			if text, ok := item.(string); ok {
				roles = append(roles, text)
			}
		}
	}
	return roles
}
