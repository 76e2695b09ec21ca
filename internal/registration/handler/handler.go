package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"ngo_erp_backend/internal/registration/service"
	"ngo_erp_backend/internal/registration/transport"
	"ngo_erp_backend/platform/apperr"
	"ngo_erp_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const msgInvalidJSON = "Request body must be a valid JSON object"

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.OPTIONS("/register", h.Preflight)
}

func (h *Handler) Register(c *gin.Context) {
	var req transport.RegisterRequest
	if !decodeObject(c, &req) {
		return
	}

	result, err := h.svc.Register(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.RegisterResponse{
		Success: true,
		OrgID:   result.OrganizationID.String(),
		UserID:  result.UserID.String(),
	})
}

// Preflight answers OPTIONS requests that the CORS middleware did not
// terminate, e.g. ones without an Origin header.
func (h *Handler) Preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// decodeObject accepts only a JSON object body. Arrays, scalars, null and
// malformed input are rejected with INVALID_JSON.
func decodeObject(c *gin.Context, dst any) bool {
	raw, err := c.GetRawData()
	if err != nil || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		httpkit.Fail(c, http.StatusBadRequest, apperr.CodeInvalidJSON, msgInvalidJSON, nil)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		httpkit.Fail(c, http.StatusBadRequest, apperr.CodeInvalidJSON, msgInvalidJSON, nil)
		return false
	}
	return true
}
