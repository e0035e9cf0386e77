package calculator

import (
	"github.com/intel/webapps-scientific-calculator/internal/history"
	"github.com/intel/webapps-scientific-calculator/internal/memory"
	"github.com/intel/webapps-scientific-calculator/internal/session"
)

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Formula string `json:"formula"`
	Angle   string `json:"angle,omitempty"` // "deg" (default) or "rad"
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Formula string  `json:"formula"`
	Angle   string  `json:"angle"`
	Result  string  `json:"result"` // display text
	Value   float64 `json:"value"`
}

// CreateSessionRequest is the optional JSON body for POST /sessions.
type CreateSessionRequest struct {
	Angle  string `json:"angle,omitempty"`
	Locale string `json:"locale,omitempty"` // falls back to Accept-Language
}

// PressRequest is the JSON body for POST /sessions/{id}/press.
type PressRequest struct {
	Key string `json:"key"`
}

// KeysRequest is the JSON body for POST /sessions/{id}/keys.
type KeysRequest struct {
	Keys []string `json:"keys"`
}

// KeyResult records the displays after one replayed key.
type KeyResult struct {
	Key     string `json:"key"`
	Entry   string `json:"entry"`
	Formula string `json:"formula"`
}

// KeysResponse is the JSON response for POST /sessions/{id}/keys.
type KeysResponse struct {
	Steps   []KeyResult      `json:"steps"`
	Session session.Snapshot `json:"session"`
}

// AngleRequest is the JSON body for PUT /sessions/{id}/angle.
type AngleRequest struct {
	Mode string `json:"mode"`
}

// MemoryResponse lists a session's memory slots.
type MemoryResponse struct {
	FreeSlot string        `json:"free_slot"`
	Slots    []memory.Slot `json:"slots"`
}

// DescribeRequest is the JSON body for PUT /sessions/{id}/memory/{slot}.
type DescribeRequest struct {
	Description string `json:"description"`
}

// HistoryResponse lists a session's retained evaluations.
type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}
