// Package router assembles the gin engine from the application modules.
package router

import (
	"context"
	"net/http"
	"time"

	apphttp "ngo_erp_backend/internal/http"
	"ngo_erp_backend/platform/apperr"
	"ngo_erp_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// allowedHeaders are the request headers browser clients may send cross-origin.
var allowedHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// New builds the engine, applies global middleware and lets every module mount
// its routes.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app.Config.GetCORSOrigins())))

	engine.NoRoute(func(c *gin.Context) {
		httpkit.Fail(c, http.StatusNotFound, apperr.CodeNotFound, "route not found", nil)
	})
	engine.NoMethod(func(c *gin.Context) {
		httpkit.Fail(c, http.StatusMethodNotAllowed, apperr.CodeMethodNotAllowed, "Method not allowed", nil)
	})

	engine.GET("/api/health", func(c *gin.Context) {
		if app.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := app.Health.Ping(ctx); err != nil {
				httpkit.Fail(c, http.StatusServiceUnavailable, apperr.CodeInternal, "database unavailable", nil)
				return
			}
		}
		httpkit.OK(c, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	authMiddleware := httpkit.AuthRequired(app.Verifier)
	rc := &apphttp.RouterContext{
		Engine:          engine,
		V1:              v1,
		Protected:       v1.Group("", authMiddleware),
		AuthMiddleware:  authMiddleware,
		AuthRateLimiter: httpkit.NewAuthRateLimiter(app.Logger),
	}

	for _, m := range app.Modules {
		m.RegisterRoutes(rc)
		app.Logger.Info("module routes registered", "module", m.Name())
	}

	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  allowedHeaders,
		ExposeHeaders: []string{httpkit.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
