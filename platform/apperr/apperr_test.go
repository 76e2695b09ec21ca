package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindInternal, http.StatusInternalServerError},
		{KindMethodNotAllowed, http.StatusMethodNotAllowed},
		{KindUnknown, http.StatusBadRequest},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, New(tc.kind, "x").HTTPStatus())
	}
}

func TestDefaultCodeFollowsKind(t *testing.T) {
	assert.Equal(t, CodeValidation, Validation("bad").Code)
	assert.Equal(t, CodeInternal, Internal("boom").Code)
	assert.Equal(t, CodeDuplicateEmail, Conflict("dup").WithCode(CodeDuplicateEmail).Code)
}

func TestGetKindUnwrapsWrappedErrors(t *testing.T) {
	base := NotFound("document not found")
	wrapped := fmt.Errorf("load: %w", base)

	assert.Equal(t, KindNotFound, GetKind(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.Equal(t, KindUnknown, GetKind(errors.New("plain")))
}

func TestErrorStringIncludesOp(t *testing.T) {
	err := BadRequest("invalid payload").WithOp("documents.upload")
	assert.Equal(t, "documents.upload: invalid payload", err.Error())
}
