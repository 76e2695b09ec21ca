// Package registration provides the self-service tenant registration module.
// A registration creates the admin identity, the organization, the admin
// profile and the module subscriptions as one unit.
package registration

import (
	apphttp "ngo_erp_backend/internal/http"
	"ngo_erp_backend/internal/registration/handler"
	"ngo_erp_backend/internal/registration/service"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(svc *service.Service) *Module {
	return &Module{handler: handler.New(svc), service: svc}
}

func (m *Module) Name() string {
	return "registration"
}

func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the public registration endpoint behind the auth rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("")
	group.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(group)
}

var _ apphttp.Module = (*Module)(nil)
