// Package oracle is the boundary to the conversational model that turns
// free text into replies and, when a booking is confirmed, an action block.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"droneOpsBooking/models"
)

// Catalog is the roster and ledger snapshot shown to the model.
type Catalog struct {
	Pilots   []models.Pilot   `json:"pilots"`
	Drones   []models.Drone   `json:"drones"`
	Missions []models.Mission `json:"missions"`
}

// Request is one conversational exchange.
type Request struct {
	Catalog   Catalog
	History   []models.Turn
	Utterance string
	Today     models.Date
}

// Oracle produces the model's raw reply for a request.
type Oracle interface {
	Converse(ctx context.Context, req Request) (string, error)
}

// Kind classifies why the oracle could not answer.
type Kind string

const (
	KindRateLimited   Kind = "rate_limited"
	KindTimeout       Kind = "timeout"
	KindNotConfigured Kind = "not_configured"
	KindFailure       Kind = "failure"
)

// UnavailableError is returned when the oracle cannot produce a reply.
type UnavailableError struct {
	Kind Kind
	// Cooldown is a retry hint, set for KindRateLimited.
	Cooldown time.Duration
	Err      error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("oracle unavailable: %s", e.Kind)
	}
	return fmt.Sprintf("oracle unavailable: %s: %v", e.Kind, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Classify maps a client error onto an UnavailableError. cooldown is used as
// the retry hint for rate limiting.
func Classify(err error, cooldown time.Duration) *UnavailableError {
	if err == nil {
		return nil
	}
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return ue
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &UnavailableError{Kind: KindTimeout, Err: err}
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusTooManyRequests:
			return &UnavailableError{Kind: KindRateLimited, Cooldown: cooldown, Err: err}
		case http.StatusGatewayTimeout, http.StatusRequestTimeout:
			return &UnavailableError{Kind: KindTimeout, Err: err}
		}
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted:
			return &UnavailableError{Kind: KindRateLimited, Cooldown: cooldown, Err: err}
		case codes.DeadlineExceeded:
			return &UnavailableError{Kind: KindTimeout, Err: err}
		}
	}
	return &UnavailableError{Kind: KindFailure, Err: err}
}

// Disabled is the oracle used when no model credentials are configured.
type Disabled struct{}

func (Disabled) Converse(context.Context, Request) (string, error) {
	return "", &UnavailableError{Kind: KindNotConfigured, Err: errors.New("GEMINI_API_KEY is not set")}
}

// Configured reports whether o can reach a model.
func Configured(o Oracle) bool {
	if o == nil {
		return false
	}
	_, disabled := o.(Disabled)
	return !disabled
}
