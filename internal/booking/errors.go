package booking

import (
	"errors"
	"fmt"
)

// RejectionCode identifies which eligibility rule failed.
type RejectionCode string

const (
	RejectUnknownResource  RejectionCode = "unknown_resource"
	RejectLocationMismatch RejectionCode = "location_mismatch"
	RejectMaintenance      RejectionCode = "maintenance"
	RejectUnavailable      RejectionCode = "unavailable"
	RejectOverlap          RejectionCode = "schedule_overlap"
	RejectBudget           RejectionCode = "budget_exceeded"
)

// Rejection is a business-rule failure. It is an expected outcome that is
// relayed to the user, not a fault.
type Rejection struct {
	Code       RejectionCode
	ResourceID string
	Message    string
	// Set only for budget rejections.
	Cost      float64
	Budget    float64
	Shortfall float64
	// ConflictID is the mission that overlaps, for overlap rejections.
	ConflictID string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("booking rejected (%s): %s", r.Code, r.Message)
}

// AsRejection extracts a *Rejection from err.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	ok := errors.As(err, &r)
	return r, ok
}

// ErrAlreadyCommitted is the cause of a StaleResourceError for a resolved
// booking that was already used for a commit.
var ErrAlreadyCommitted = errors.New("resolved booking already committed")

// StaleResourceError means the state seen at resolution time no longer holds
// at commit time. Nothing was written; the caller must resolve again.
type StaleResourceError struct {
	PilotID string
	DroneID string
	Cause   error
}

func (e *StaleResourceError) Error() string {
	return fmt.Sprintf("stale booking for pilot %s / drone %s: %v", e.PilotID, e.DroneID, e.Cause)
}

func (e *StaleResourceError) Unwrap() error { return e.Cause }

// IsStale reports whether err is or wraps a StaleResourceError.
func IsStale(err error) bool {
	var s *StaleResourceError
	return errors.As(err, &s)
}
