package domain

// Recognized event types. The set is open: the store accepts any non-empty tag.
const (
	EventTypeGaze        = "gaze"
	EventTypeZoneEnter   = "zone_enter"
	EventTypeZoneExit    = "zone_exit"
	EventTypeInteraction = "interaction"
)

// Position is a point in VR space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rotation is a head or object orientation.
type Rotation struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// Event is a single behavioral tracking event captured during a VR tour.
// Events have no identity of their own; they belong to their session and the
// optional fields vary by event type.
type Event struct {
	SessionID string `json:"session_id,omitempty"`
	EventType string `json:"event_type"`
	// Timestamp accepts epoch seconds (number or numeric string) or an
	// already-canonical absolute timestamp string; the store normalizes it.
	Timestamp       any            `json:"timestamp,omitempty"`
	ZoneName        *string        `json:"zone_name,omitempty"`
	ObjectName      *string        `json:"object_name,omitempty"`
	Position        *Position      `json:"position,omitempty"`
	Rotation        *Rotation      `json:"rotation,omitempty"`
	GazeTarget      *string        `json:"gaze_target,omitempty"`
	DwellTimeMS     *int64         `json:"dwell_time_ms,omitempty"`
	InteractionType *string        `json:"interaction_type,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// BatchResult summarizes a batch ingestion. It is always well-formed:
// Total == Successful + Failed, and SuccessRate is 0.0 for an empty batch.
type BatchResult struct {
	TotalEvents     int     `json:"total_events"`
	SuccessfulCount int     `json:"successful_count"`
	FailedCount     int     `json:"failed_count"`
	SuccessRate     float64 `json:"success_rate"`
}

// NewBatchResult builds a BatchResult from total and successful counts.
func NewBatchResult(total, successful int) BatchResult {
	res := BatchResult{
		TotalEvents:     total,
		SuccessfulCount: successful,
		FailedCount:     total - successful,
	}
	if total > 0 {
		res.SuccessRate = float64(successful) / float64(total) * 100
	}
	return res
}

// ZeroBatchResult is the all-failed outcome for a batch of the given size.
func ZeroBatchResult(total int) BatchResult {
	return BatchResult{TotalEvents: total, FailedCount: total}
}
