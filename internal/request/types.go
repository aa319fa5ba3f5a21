package request

import (
	"errors"
	"time"
)

// Status of a queued request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsTerminal reports whether the status represents a processed request.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Request is a student submission waiting in a departmental queue.
// EstimatedCompletion is computed once at submit time from the queue
// depth in the same category; it is not recomputed as the queue drains.
type Request struct {
	ID                  string     `json:"id"`
	Username            string     `json:"username"`
	Category            string     `json:"category"`
	Details             string     `json:"details"`
	Status              Status     `json:"status"`
	CreatedAt           time.Time  `json:"created_at"`
	EstimatedCompletion time.Time  `json:"estimated_completion"`
	ProcessedAt         *time.Time `json:"processed_at,omitempty"`
}

// Sentinel errors for request operations.
var (
	ErrValidation       = errors.New("missing required field")
	ErrNotFound         = errors.New("request not found")
	ErrAlreadyProcessed = errors.New("request already processed")
	ErrInvalidAction    = errors.New("invalid processing action")
)
