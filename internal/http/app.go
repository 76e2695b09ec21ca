// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"ngo_erp_backend/platform/config"
	"ngo_erp_backend/platform/events"
	"ngo_erp_backend/platform/httpkit"
	"ngo_erp_backend/platform/logger"
)

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the HTTP settings.
	Config config.HTTPConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks (e.g., DB ping).
	Health HealthChecker
	// Verifier backs the bearer-token middleware of the protected group.
	Verifier httpkit.TokenVerifier
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
