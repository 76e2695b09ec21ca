// Package documents provides the organization document store module:
// uploads to object storage with metadata and tags in Postgres.
package documents

import (
	"ngo_erp_backend/internal/documents/handler"
	"ngo_erp_backend/internal/documents/repository"
	"ngo_erp_backend/internal/documents/service"
	"ngo_erp_backend/internal/events"
	apphttp "ngo_erp_backend/internal/http"
	"ngo_erp_backend/platform/logger"
	"ngo_erp_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the documents context. objects may be nil when object
// storage is not configured; uploads and downloads then fail with SERVER_MISCONFIGURED.
func NewModule(pool *pgxpool.Pool, objects service.ObjectStore, orgs service.OrganizationResolver, bucket string, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, objects, orgs, bucket, eventBus, log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

func (m *Module) Name() string {
	return "documents"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

var _ apphttp.Module = (*Module)(nil)
