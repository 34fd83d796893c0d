// Package events defines the search lifecycle events and a small in-process
// bus. Subscribers (metrics, logging) observe the pipeline without the core
// components knowing about them. Keep payloads small and JSON-friendly.
package events

import (
	"encoding/json"
	"time"
)

// Event is the base interface for search lifecycle events.
type Event interface {
	Type() string
	SessionID() string
	Timestamp() time.Time
	MarshalData() ([]byte, error)
}

// Base contains common event metadata.
type Base struct {
	Ts  time.Time `json:"ts"`
	SID string    `json:"session_id"`
}

func (b Base) Timestamp() time.Time { return b.Ts }
func (b Base) SessionID() string    { return b.SID }

const (
	TypeSearchStarted      = "search.started"
	TypeSearchCompleted    = "search.completed"
	TypeSearchFailed       = "search.failed"
	TypeSelectionCommitted = "selection.committed"
	TypeSelectionCleared   = "selection.cleared"
)

// SearchStarted is emitted when a debounce timer fires and a fetch begins.
type SearchStarted struct {
	Base
	Seq    uint64 `json:"seq"`
	Intent string `json:"intent"`
	Query  string `json:"query"`
}

func (e SearchStarted) Type() string                 { return TypeSearchStarted }
func (e SearchStarted) MarshalData() ([]byte, error) { return json.Marshal(e) }

// SearchCompleted carries the outcome of a successful fetch.
type SearchCompleted struct {
	Base
	Seq      uint64        `json:"seq"`
	Intent   string        `json:"intent"`
	Results  int           `json:"results"`
	Duration time.Duration `json:"duration"`
	Stale    bool          `json:"stale"` // response discarded by a newer attempt
}

func (e SearchCompleted) Type() string                 { return TypeSearchCompleted }
func (e SearchCompleted) MarshalData() ([]byte, error) { return json.Marshal(e) }

// SearchFailed records a terminal per-attempt failure. Never retried.
type SearchFailed struct {
	Base
	Seq        uint64 `json:"seq"`
	Intent     string `json:"intent"`
	Source     string `json:"source"`
	Code       string `json:"code"`
	HTTPStatus int    `json:"http_status,omitempty"`
}

func (e SearchFailed) Type() string                 { return TypeSearchFailed }
func (e SearchFailed) MarshalData() ([]byte, error) { return json.Marshal(e) }

// SelectionCommitted is emitted when the user picks a concrete suggestion.
type SelectionCommitted struct {
	Base
	ResultID   string `json:"result_id"`
	PostalCode string `json:"postal_code,omitempty"`
}

func (e SelectionCommitted) Type() string                 { return TypeSelectionCommitted }
func (e SelectionCommitted) MarshalData() ([]byte, error) { return json.Marshal(e) }

// SelectionCleared is emitted by an explicit clear action, distinct from a
// normal selection.
type SelectionCleared struct {
	Base
}

func (e SelectionCleared) Type() string                 { return TypeSelectionCleared }
func (e SelectionCleared) MarshalData() ([]byte, error) { return json.Marshal(e) }
