// Package assistant composes the oracle, the intent parser and the booking
// engine into the conversational operations exposed to clients.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"droneOpsBooking/internal/booking"
	"droneOpsBooking/internal/intent"
	"droneOpsBooking/internal/oracle"
	"droneOpsBooking/internal/transcript"
	"droneOpsBooking/models"
)

// Outcome names the path a chat turn took.
type Outcome string

const (
	OutcomeReply       Outcome = "reply"
	OutcomeBooked      Outcome = "booked"
	OutcomeRejected    Outcome = "rejected"
	OutcomeIncomplete  Outcome = "incomplete"
	OutcomeMalformed   Outcome = "malformed"
	OutcomeStale       Outcome = "stale"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeError       Outcome = "error"
)

// Reply is what a chat turn returns to the user.
type Reply struct {
	Text    string          `json:"text"`
	Mission *models.Mission `json:"action_taken,omitempty"`
	Outcome Outcome         `json:"outcome"`
}

// Service implements the chat, status and export operations.
type Service struct {
	engine      *booking.Engine
	oracle      oracle.Oracle
	transcripts transcript.Store
	log         *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithTranscripts enables server-side session history.
func WithTranscripts(s transcript.Store) Option {
	return func(svc *Service) { svc.transcripts = s }
}

func NewService(engine *booking.Engine, o oracle.Oracle, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if o == nil {
		o = oracle.Disabled{}
	}
	s := &Service{engine: engine, oracle: o, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OracleConfigured reports whether chat can reach a model.
func (s *Service) OracleConfigured() bool { return oracle.Configured(s.oracle) }

// SubmitChat runs one conversational turn. It never fails: every error path
// is turned into text for the user.
func (s *Service) SubmitChat(ctx context.Context, history []models.Turn, utterance string) Reply {
	snap, err := s.engine.Snapshot(ctx)
	if err != nil {
		s.log.Error("snapshot for chat failed", zap.Error(err))
		return Reply{Text: textFailure, Outcome: OutcomeError}
	}

	raw, err := s.oracle.Converse(ctx, oracle.Request{
		Catalog:   oracle.Catalog{Pilots: snap.Pilots, Drones: snap.Drones, Missions: snap.Missions},
		History:   history,
		Utterance: utterance,
		Today:     s.engine.Today(),
	})
	if err != nil {
		return s.unavailable(err)
	}

	res := intent.Parse(raw)
	switch res.Kind {
	case intent.NotFound:
		return Reply{Text: res.Visible, Outcome: OutcomeReply}
	case intent.Malformed:
		var vErr *intent.ValidationError
		if errors.As(res.Err, &vErr) {
			return Reply{Text: appendNote(res.Visible, askForFields(vErr)), Outcome: OutcomeIncomplete}
		}
		s.log.Warn("malformed booking block", zap.Error(res.Err))
		return Reply{Text: appendNote(res.Visible, textMalformed), Outcome: OutcomeMalformed}
	}

	return s.book(ctx, res.Visible, res.Intent)
}

// Converse is SubmitChat with optional server-side history. When the caller
// sends no history the stored transcript for session is used; the new turn
// is recorded either way.
func (s *Service) Converse(ctx context.Context, session string, history []models.Turn, utterance string) Reply {
	if s.transcripts == nil || session == "" {
		return s.SubmitChat(ctx, history, utterance)
	}
	if len(history) == 0 {
		stored, err := s.transcripts.Load(ctx, session)
		if err != nil {
			s.log.Warn("load transcript failed", zap.String("session", session), zap.Error(err))
		}
		history = stored
	}
	reply := s.SubmitChat(ctx, history, utterance)
	if err := s.transcripts.Append(ctx, session,
		models.Turn{Role: models.RoleUser, Content: utterance},
		models.Turn{Role: models.RoleAssistant, Content: reply.Text},
	); err != nil {
		s.log.Warn("save transcript failed", zap.String("session", session), zap.Error(err))
	}
	return reply
}

func (s *Service) book(ctx context.Context, visible string, in models.BookingIntent) Reply {
	m, rb, err := s.engine.Book(ctx, in)
	var (
		vErr *intent.ValidationError
		rej  *booking.Rejection
	)
	switch {
	case err == nil:
		s.log.Info("chat booking committed", zap.String("mission_id", m.ID), zap.Float64("cost", rb.Cost))
		note := fmt.Sprintf("**System Update:** Mission %s confirmed. Token: %s", m.ID, *m.BookingToken)
		return Reply{Text: appendNote(visible, note), Mission: m, Outcome: OutcomeBooked}
	case booking.IsStale(err):
		s.log.Info("chat booking stale", zap.Error(err))
		return Reply{Text: appendNote(visible, textStale), Outcome: OutcomeStale}
	case errors.As(err, &rej):
		s.log.Info("chat booking rejected", zap.String("code", string(rej.Code)), zap.String("resource", rej.ResourceID))
		return Reply{Text: appendNote(visible, explainRejection(rej)), Outcome: OutcomeRejected}
	case errors.As(err, &vErr):
		return Reply{Text: appendNote(visible, askForFields(vErr)), Outcome: OutcomeIncomplete}
	default:
		s.log.Error("chat booking failed", zap.Error(err))
		return Reply{Text: appendNote(visible, textBookingFailure), Outcome: OutcomeError}
	}
}

func (s *Service) unavailable(err error) Reply {
	ue := oracle.Classify(err, time.Minute)
	switch ue.Kind {
	case oracle.KindNotConfigured:
		return Reply{Text: textNotConfigured, Outcome: OutcomeUnavailable}
	case oracle.KindRateLimited:
		secs := int(math.Ceil(ue.Cooldown.Seconds()))
		if secs <= 0 {
			secs = 60
		}
		s.log.Warn("oracle rate limited", zap.Duration("cooldown", ue.Cooldown))
		return Reply{Text: fmt.Sprintf(textRateLimited, secs), Outcome: OutcomeUnavailable}
	default:
		s.log.Error("oracle failed", zap.String("kind", string(ue.Kind)), zap.Error(err))
		return Reply{Text: textOracleFailure, Outcome: OutcomeUnavailable}
	}
}

const (
	textNotConfigured  = "The booking assistant is not available right now because the AI service is not configured on the server."
	textRateLimited    = "**Rate Limit Reached:** I'm handling too many drone requests right now. Please wait about %d seconds before trying again."
	textOracleFailure  = "I'm having trouble connecting to HQ. Please try again later."
	textFailure        = "Something went wrong while reading the fleet records. Please try again later."
	textMalformed      = "(System note: the booking details could not be read, so nothing was booked. Please confirm the booking again.)"
	textStale          = "(System note: someone else just booked one of these resources, so nothing was booked. Please try again.)"
	textBookingFailure = "(System Error: Failed to execute booking database update.)"
)

var fieldLabels = map[string]string{
	"location":          "location",
	"start":             "start date",
	"end":               "end date",
	"assigned_pilot_id": "pilot",
	"assigned_drone_id": "drone",
	"budget":            "budget (INR)",
}

func askForFields(e *intent.ValidationError) string {
	if e.Reason != "" {
		return fmt.Sprintf("(Booking not made: %s. Could you check the dates?)", e.Reason)
	}
	labels := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if l, ok := fieldLabels[f]; ok {
			labels = append(labels, l)
			continue
		}
		labels = append(labels, f)
	}
	return fmt.Sprintf("(Booking not made yet: I still need the %s.)", strings.Join(labels, ", "))
}

func explainRejection(r *booking.Rejection) string {
	switch r.Code {
	case booking.RejectBudget:
		return fmt.Sprintf("(Booking not made: the mission costs %s, which is %s over your budget of %s.)",
			booking.FormatAmount(r.Cost), booking.FormatAmount(r.Shortfall), booking.FormatAmount(r.Budget))
	case booking.RejectMaintenance:
		return fmt.Sprintf("(Booking not made: drone %s is under maintenance.)", r.ResourceID)
	default:
		return fmt.Sprintf("(Booking not made: %s.)", r.Message)
	}
}

func appendNote(visible, note string) string {
	if visible == "" {
		return note
	}
	return visible + "\n\n" + note
}
