// Package server wires the gin engine: middleware, routes, and the HTTP server.
package server

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vr-tour-telemetry/backend/internal/config"
	healthhandler "vr-tour-telemetry/backend/internal/health/handler"
	sessionhandler "vr-tour-telemetry/backend/internal/session/handler"
	sessionservice "vr-tour-telemetry/backend/internal/session/service"
	"vr-tour-telemetry/backend/internal/telemetry"
	trackinghandler "vr-tour-telemetry/backend/internal/tracking/handler"
	trackingservice "vr-tour-telemetry/backend/internal/tracking/service"
)

// Deps carries everything the HTTP layer needs. DB may be nil (health reports
// it unconfigured); Emitter may be nil (no ingest auditing).
type Deps struct {
	Sessions *sessionservice.SessionService
	Tracking *trackingservice.TrackingService
	DB       *sql.DB
	Emitter  telemetry.Emitter
}

// NewEngine builds the gin engine with CORS middleware and all routes mounted.
func NewEngine(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(corsMiddleware(cfg.CORSOriginsList()))

	healthhandler.NewHandler(deps.DB, cfg.Env).Register(r)

	api := r.Group("/api/v1")
	sessionhandler.NewHandler(deps.Sessions, deps.Emitter).Register(api)
	trackinghandler.NewHandler(deps.Tracking).Register(api)

	return r
}

// New returns an http.Server for the engine with conservative timeouts. The
// batch endpoint can carry a whole tour's events, hence the generous read timeout.
func New(cfg *config.Config, deps Deps) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewEngine(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// corsMiddleware allows the configured origins. An empty list or "*" allows any
// origin; the VR client and sales dashboard run on hosts we do not control.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
			continue
		}
		if o != "" {
			allowed[o] = true
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
