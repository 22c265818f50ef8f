// Package handler exposes the health endpoint for monitoring and load balancers.
package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler serves the health endpoint. db may be nil when the service runs
// without a database (reported as "unconfigured").
type Handler struct {
	db  *sql.DB
	env string
}

// NewHandler returns a health Handler for the given database and environment name.
func NewHandler(db *sql.DB, env string) *Handler {
	return &Handler{db: db, env: env}
}

// Register mounts the health route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
}

// Health reports liveness and database connectivity. Always 200; a broken
// database shows up in the body, not the status code, so probes keep passing
// while dependencies recover.
func (h *Handler) Health(c *gin.Context) {
	dbStatus := "unconfigured"
	if h.db != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(pingCtx); err != nil {
			dbStatus = "error"
		} else {
			dbStatus = "connected"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
		"environment": h.env,
		"database":    dbStatus,
	})
}
