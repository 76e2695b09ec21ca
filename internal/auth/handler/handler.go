package handler

import (
	"net/http"

	"ngo_erp_backend/internal/auth/service"
	"ngo_erp_backend/internal/auth/transport"
	"ngo_erp_backend/platform/apperr"
	"ngo_erp_backend/platform/httpkit"
	"ngo_erp_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request body"
	msgValidationFailed = "validation failed"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sign-in", h.SignIn)
	rg.POST("/verify-email", h.VerifyEmail)
}

func (h *Handler) SignIn(c *gin.Context) {
	var req transport.SignInRequest
	if !h.bind(c, &req) {
		return
	}

	accessToken, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.AuthResponse{Success: true, AccessToken: accessToken})
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	var req transport.VerifyEmailRequest
	if !h.bind(c, &req) {
		return
	}

	if httpkit.HandleError(c, h.svc.VerifyEmail(c.Request.Context(), req.Token)) {
		return
	}

	httpkit.OK(c, transport.MessageResponse{Success: true, Message: "email verified"})
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Fail(c, http.StatusBadRequest, apperr.CodeInvalidJSON, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Fail(c, http.StatusBadRequest, apperr.CodeValidation, msgValidationFailed, validator.Messages(err))
		return false
	}
	return true
}
