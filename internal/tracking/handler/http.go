// Package handler exposes tracking-event ingestion over HTTP for the VR client.
//
// The ingestion endpoints are defensive: a VR tour in progress must never be
// interrupted by a storage problem, so they accept and acknowledge whatever
// they are given and report reduced counts instead of errors.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vr-tour-telemetry/backend/internal/tracking/domain"
	"vr-tour-telemetry/backend/internal/tracking/service"
)

// Handler serves tracking-event endpoints: single event, batch, and retrieval.
type Handler struct {
	tracking *service.TrackingService
}

// NewHandler returns a tracking Handler.
func NewHandler(tracking *service.TrackingService) *Handler {
	return &Handler{tracking: tracking}
}

// Register mounts the tracking routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/unreal/tracking/event", h.TrackEvent)
	r.POST("/unreal/tracking/batch", h.TrackBatch)
	r.GET("/unreal/session/:id/events", h.SessionEvents)
}

type trackBatchRequest struct {
	SessionID string          `json:"session_id"`
	Events    []*domain.Event `json:"events"`
	SentAt    any             `json:"sent_at"`
}

// TrackEvent accepts a single event. Fallback path for clients that cannot
// batch; only a missing session_id is rejected, storage failures are not.
func (h *Handler) TrackEvent(c *gin.Context) {
	var event domain.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	if event.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "session_id is required"})
		return
	}

	h.tracking.LogEvent(c.Request.Context(), event.SessionID, &event)

	c.JSON(http.StatusAccepted, gin.H{
		"status":    "received",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// TrackBatch accepts a batch of events, the preferred upload path. Always 202;
// the body carries how much of the batch actually landed.
func (h *Handler) TrackBatch(c *gin.Context) {
	var req trackBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	result := h.tracking.LogEventsBatch(c.Request.Context(), req.SessionID, req.Events)

	c.JSON(http.StatusAccepted, gin.H{
		"status":       "received",
		"total_events": result.TotalEvents,
		"processed":    result.SuccessfulCount,
		"failed":       result.FailedCount,
		"success_rate": result.SuccessRate,
		"timestamp":    time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// SessionEvents returns the session's stored events in chronological order,
// optionally filtered by event_type or zone.
func (h *Handler) SessionEvents(c *gin.Context) {
	sessionID := c.Param("id")

	var events []*domain.Event
	if zone := c.Query("zone"); zone != "" {
		events = h.tracking.GetZoneEvents(c.Request.Context(), sessionID, zone)
	} else {
		events = h.tracking.GetSessionEvents(c.Request.Context(), sessionID, c.Query("event_type"))
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"events":     events,
		"total":      len(events),
	})
}
