// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"ngo_erp_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

const msgInternal = "An unexpected error occurred. Please try again later."

// FailureResponse is the uniform failure body shared by every endpoint.
type FailureResponse struct {
	Success         bool        `json:"success"`
	Code            apperr.Code `json:"code"`
	Message         string      `json:"message"`
	Details         interface{} `json:"details,omitempty"`
	SuggestedAction string      `json:"suggestedAction,omitempty"`
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Fail sends a failure body with an explicit status and code.
func Fail(c *gin.Context, status int, code apperr.Code, message string, details interface{}) {
	c.JSON(status, FailureResponse{Code: code, Message: message, Details: details})
}

// AbortFail is Fail for middleware: it stops the handler chain.
func AbortFail(c *gin.Context, status int, code apperr.Code, message string) {
	c.AbortWithStatusJSON(status, FailureResponse{Code: code, Message: message})
}

// HandleError maps domain errors to HTTP responses.
// Typed *apperr.Error values use their Kind for the status code; anything
// else is reported as an internal error without leaking its text.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		c.JSON(domainErr.HTTPStatus(), FailureResponse{
			Code:            domainErr.Code,
			Message:         domainErr.Message,
			Details:         domainErr.Details,
			SuggestedAction: domainErr.SuggestedAction,
		})
		return true
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, FailureResponse{
		Code:    apperr.CodeInternal,
		Message: msgInternal,
	})
	return true
}
