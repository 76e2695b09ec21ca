package handler

import (
	"ngo_erp_backend/internal/identity/service"
	"ngo_erp_backend/internal/identity/transport"
	"ngo_erp_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/organizations/me", h.GetOrganization)
}

func (h *Handler) GetOrganization(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	overview, err := h.svc.GetOverview(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	org := overview.Organization
	modules := overview.Modules
	if modules == nil {
		modules = []string{}
	}
	httpkit.OK(c, transport.MyOrganizationResponse{
		Success: true,
		Organization: transport.OrganizationResponse{
			ID:              org.ID.String(),
			Name:            org.Name,
			Type:            org.Type,
			PrimaryCurrency: org.PrimaryCurrency,
			Address:         org.Address,
			Phone:           org.Phone,
			PricingPlan:     org.PricingPlan,
			CreatedAt:       org.CreatedAt,
		},
		Role:    overview.Role,
		Modules: modules,
	})
}
