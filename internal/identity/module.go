// Package identity provides the identity bounded context module.
package identity

import (
	apphttp "ngo_erp_backend/internal/http"
	"ngo_erp_backend/internal/identity/handler"
	"ngo_erp_backend/internal/identity/repository"
	"ngo_erp_backend/internal/identity/service"
	"ngo_erp_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{handler: handler.New(svc), service: svc}
}

func (m *Module) Name() string {
	return "identity"
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

var (
	_ apphttp.Module = (*Module)(nil)
	_ Service        = (*service.Service)(nil)
)
