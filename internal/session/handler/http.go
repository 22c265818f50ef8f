// Package handler exposes the session lifecycle over HTTP for the VR client.
package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vr-tour-telemetry/backend/internal/session/domain"
	"vr-tour-telemetry/backend/internal/session/service"
	"vr-tour-telemetry/backend/internal/telemetry"
	"vr-tour-telemetry/backend/internal/timefmt"
)

// Handler serves session endpoints: pre-resolved submission, status and heartbeat.
type Handler struct {
	sessions *service.SessionService
	emitter  telemetry.Emitter
}

// NewHandler returns a session Handler. emitter may be nil to disable ingest auditing.
func NewHandler(sessions *service.SessionService, emitter telemetry.Emitter) *Handler {
	return &Handler{sessions: sessions, emitter: emitter}
}

// Register mounts the session routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/unreal/session", h.SubmitSession)
	r.GET("/unreal/session/:id/status", h.SessionStatus)
	r.POST("/unreal/session/:id/heartbeat", h.Heartbeat)
}

type submitSessionRequest struct {
	SessionStart string  `json:"session_start"`
	SessionEnd   string  `json:"session_end"`
	CustomerID   *string `json:"customer_id"`
	PropertyID   *string `json:"property_id"`
}

// SubmitSession accepts a session whose start and end are already known, sent
// as epoch-second strings after an offline tour.
func (h *Handler) SubmitSession(c *gin.Context) {
	var req submitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	session, err := h.sessions.ProcessPreResolvedSession(c.Request.Context(),
		req.SessionStart, req.SessionEnd, req.CustomerID, req.PropertyID)
	if err != nil {
		var ferr *timefmt.FormatError
		if errors.As(err, &ferr) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid timestamp format: " + err.Error()})
			return
		}
		log.Printf("session: submit failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to process session data"})
		return
	}

	telemetry.EmitAsync(h.emitter, c.Request.Context(), &telemetry.IngestAudit{
		SessionID:   session.ID,
		Kind:        telemetry.KindSessionImport,
		Total:       1,
		Successful:  1,
		SuccessRate: 100.0,
		CreatedAt:   time.Now().UTC(),
	})

	c.JSON(http.StatusCreated, gin.H{
		"status":           "success",
		"message":          "Session data received and processed",
		"session_id":       session.ID,
		"duration_seconds": derefInt64(session.DurationSeconds),
		"received_at":      time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// SessionStatus reports the session's state. A missing session is a 200 with
// status "not_found" so the VR client can branch without error handling.
func (h *Handler) SessionStatus(c *gin.Context) {
	id := c.Param("id")
	session := h.sessions.GetSession(c.Request.Context(), id)
	if session == nil {
		c.JSON(http.StatusOK, gin.H{
			"session_id":      id,
			"status":          "not_found",
			"started_at":      nil,
			"duration_so_far": nil,
		})
		return
	}

	resp := gin.H{
		"session_id":      session.ID,
		"status":          string(session.Status),
		"started_at":      session.StartedAt.UTC().Format(time.RFC3339Nano),
		"duration_so_far": nil,
	}
	if session.Status == domain.StatusActive {
		resp["duration_so_far"] = int64(time.Since(session.StartedAt).Seconds())
	}
	if session.EndedAt != nil {
		resp["ended_at"] = session.EndedAt.UTC().Format(time.RFC3339Nano)
		resp["duration_seconds"] = derefInt64(session.DurationSeconds)
	}
	c.JSON(http.StatusOK, resp)
}

// Heartbeat confirms the session exists. Liveness tracking can hang off this
// endpoint later; today it only answers alive or not found.
func (h *Handler) Heartbeat(c *gin.Context) {
	id := c.Param("id")
	session := h.sessions.GetSession(c.Request.Context(), id)
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found: " + id})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "alive",
		"session_id": id,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func derefInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
