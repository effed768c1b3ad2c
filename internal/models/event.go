package models

// Screen captures the client display at event time.
type Screen struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	DevicePixelRatio float64 `json:"devicePixelRatio"`
}

// Event is one immutable telemetry record describing a visitor action at a
// point in time. Events are append-only: the core never updates or deletes
// them, and projections order by the client-supplied Timestamp, not by
// storage order.
type Event struct {
	ID string `json:"id"`

	// Identity
	VisitorID      string `json:"visitorId"`
	SessionID      string `json:"sessionId"`
	PageInstanceID string `json:"pageInstanceId"`

	// Context
	Referrer  string `json:"referrer"`
	EntryType string `json:"entryType,omitempty"`
	URL       string `json:"url,omitempty"`

	// Environment
	UserAgent string  `json:"userAgent,omitempty"`
	Screen    *Screen `json:"screen,omitempty"`

	// Event kind is free-form ("page_opened", "page_closed", "revisit", ...).
	Event string         `json:"event"`
	Meta  map[string]any `json:"meta"`

	// Client epoch milliseconds, not server receipt time.
	Timestamp int64 `json:"timestamp"`
}

// TrackRequest is the POST /api/analytics/track payload.
type TrackRequest struct {
	VisitorID      string         `json:"visitorId"`
	SessionID      string         `json:"sessionId"`
	PageInstanceID string         `json:"pageInstanceId"`
	Referrer       string         `json:"referrer"`
	EntryType      string         `json:"entryType"`
	URL            string         `json:"url"`
	UserAgent      string         `json:"userAgent"`
	Screen         *Screen        `json:"screen"`
	Event          string         `json:"event"`
	Meta           map[string]any `json:"meta"`
	Timestamp      int64          `json:"timestamp"`
}

// Validate checks the mandatory analytics fields.
func (r *TrackRequest) Validate() error {
	switch {
	case r.VisitorID == "":
		return NewValidationError("missing required field: visitorId")
	case r.SessionID == "":
		return NewValidationError("missing required field: sessionId")
	case r.PageInstanceID == "":
		return NewValidationError("missing required field: pageInstanceId")
	case r.Event == "":
		return NewValidationError("missing required field: event")
	case r.Timestamp <= 0:
		return NewValidationError("missing required field: timestamp")
	}
	return nil
}
