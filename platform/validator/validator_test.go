package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type signInPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestMessagesListsEveryFailingField(t *testing.T) {
	val := New()

	err := val.Struct(signInPayload{})

	assert.ElementsMatch(t, []string{"email is required", "password is required"}, Messages(err))
}

func TestMessagesUsesJSONFieldNames(t *testing.T) {
	val := New()

	err := val.Struct(signInPayload{Email: "not-an-email", Password: "x"})

	assert.Equal(t, []string{"email must be a valid email address"}, Messages(err))
}

func TestMessagesFallsBackToErrorText(t *testing.T) {
	assert.Equal(t, []string{"boom"}, Messages(errors.New("boom")))
	assert.Nil(t, Messages(nil))
}
