package httpkit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ngo_erp_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type stubVerifier struct {
	claims AccessClaims
	err    error
}

func (s stubVerifier) VerifyToken(context.Context, string) (AccessClaims, error) {
	return s.claims, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedEngine(v TokenVerifier) *gin.Engine {
	engine := gin.New()
	engine.GET("/me", AuthRequired(v), func(c *gin.Context) {
		id := MustGetIdentity(c)
		if id == nil {
			return
		}
		body := gin.H{"userId": id.UserID().String()}
		if tenant := id.TenantID(); tenant != nil {
			body["tenantId"] = tenant.String()
		}
		c.JSON(http.StatusOK, body)
	})
	return engine
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	engine := newProtectedEngine(stubVerifier{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body FailureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperr.CodeUnauthorized, body.Code)
	assert.False(t, body.Success)
}

func TestAuthRequiredRejectsInvalidToken(t *testing.T) {
	engine := newProtectedEngine(stubVerifier{err: errors.New("expired")})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequiredStoresIdentity(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	engine := newProtectedEngine(stubVerifier{claims: AccessClaims{UserID: userID, TenantID: &orgID}})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body["userId"])
	assert.Equal(t, orgID.String(), body["tenantId"])
}

func TestRateLimitSkipsPreflight(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0), 1, nil)
	engine := gin.New()
	engine.Use(limiter.RateLimit())
	engine.Handle(http.MethodOptions, "/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	engine.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/x", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	first := httptest.NewRecorder()
	engine.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	engine.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	var body FailureResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, apperr.CodeRateLimited, body.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestHandleErrorHidesUntypedErrors(t *testing.T) {
	engine := gin.New()
	engine.GET("/x", func(c *gin.Context) { HandleError(c, errors.New("pq: password authentication failed")) })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password authentication")
	assert.Contains(t, rec.Body.String(), string(apperr.CodeInternal))
}

func TestHandleErrorWritesSuggestedAction(t *testing.T) {
	engine := gin.New()
	engine.GET("/x", func(c *gin.Context) {
		HandleError(c, apperr.Conflict("taken").WithCode(apperr.CodeDuplicateEmail).WithSuggestedAction("use another"))
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusConflict, rec.Code)
	var body FailureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperr.CodeDuplicateEmail, body.Code)
	assert.Equal(t, "use another", body.SuggestedAction)
}
