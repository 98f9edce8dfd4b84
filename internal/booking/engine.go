package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"droneOpsBooking/models"
	"droneOpsBooking/repository"
)

// AssistantClient is the client label on missions booked through chat.
const AssistantClient = "AI Booking"

// maxIDAttempts bounds retries when a generated id collides with the ledger.
const maxIDAttempts = 8

// Engine resolves and commits bookings against a Store. Resolutions share a
// read lock; commits and releases hold the write lock for the whole
// re-validate-then-mutate sequence, so two commits for the same resources
// can never both succeed.
type Engine struct {
	store repository.Store
	log   *zap.Logger
	mu    sync.RWMutex

	now        func() time.Time
	missionID  func() string
	tokenValue func() string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the engine's clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerators overrides mission id and booking token generation.
func WithIDGenerators(missionID, token func() string) Option {
	return func(e *Engine) {
		if missionID != nil {
			e.missionID = missionID
		}
		if token != nil {
			e.tokenValue = token
		}
	}
}

func NewEngine(store repository.Store, log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		store:      store,
		log:        log,
		now:        time.Now,
		missionID:  NewMissionID,
		tokenValue: NewBookingToken,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// NewMissionID returns an id of the form PRJ-1A2B3C4D.
func NewMissionID() string {
	return "PRJ-" + shortHex(8)
}

// NewBookingToken returns a token of the form SKY-1A2B-3C4D.
func NewBookingToken() string {
	h := shortHex(8)
	return "SKY-" + h[:4] + "-" + h[4:]
}

func shortHex(n int) string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:n])
}

// Today returns the engine clock's current calendar day.
func (e *Engine) Today() models.Date {
	return models.DateOf(e.now())
}

// Resolve evaluates the intent against the current roster and ledger.
// It returns a *Rejection or *intent.ValidationError on rule failure.
func (e *Engine) Resolve(ctx context.Context, in models.BookingIntent) (*ResolvedBooking, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	pilot, drone, missions, err := e.load(ctx, in)
	if err != nil {
		return nil, err
	}
	rb, err := Evaluate(in, pilot, drone, missions)
	if err != nil {
		return nil, err
	}
	if in.Cost != 0 && in.Cost != rb.Cost {
		e.log.Warn("oracle cost differs from computed cost",
			zap.Float64("oracle_cost", in.Cost), zap.Float64("cost", rb.Cost), zap.String("pilot_id", in.PilotID))
	}
	return rb, nil
}

// Commit applies a resolved booking: it re-validates every rule under the
// write lock and then creates the mission and updates both resources in one
// atomic store call. Any change since resolution yields *StaleResourceError
// and leaves the store untouched.
func (e *Engine) Commit(ctx context.Context, rb *ResolvedBooking) (*models.Mission, error) {
	if rb == nil {
		return nil, errors.New("nil resolved booking")
	}
	in := rb.Intent
	stale := func(cause error) error {
		return &StaleResourceError{PilotID: in.PilotID, DroneID: in.DroneID, Cause: cause}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rb.committed.Load() {
		return nil, stale(ErrAlreadyCommitted)
	}
	pilot, drone, missions, err := e.load(ctx, in)
	if err != nil {
		return nil, err
	}
	fresh, err := Evaluate(in, pilot, drone, missions)
	if err != nil {
		return nil, stale(err)
	}

	m := &models.Mission{
		Client:   AssistantClient,
		Location: strings.TrimSpace(in.Location),
		Start:    in.Start,
		End:      in.End,
		PilotID:  models.StringPtr(pilot.ID),
		DroneID:  models.StringPtr(drone.ID),
		Budget:   in.Budget,
	}
	if err := e.assignIDs(m, missions); err != nil {
		return nil, err
	}
	if err := e.store.ApplyBooking(ctx, m); err != nil {
		if errors.Is(err, repository.ErrResourceNotFound) {
			return nil, stale(err)
		}
		return nil, fmt.Errorf("apply booking: %w", err)
	}
	rb.committed.Store(true)
	e.log.Info("mission booked",
		zap.String("mission_id", m.ID), zap.String("token", *m.BookingToken),
		zap.String("pilot_id", pilot.ID), zap.String("drone_id", drone.ID),
		zap.String("start", m.Start.String()), zap.String("end", m.End.String()),
		zap.Float64("cost", fresh.Cost))
	return m, nil
}

// Book resolves and commits in one call.
func (e *Engine) Book(ctx context.Context, in models.BookingIntent) (*models.Mission, *ResolvedBooking, error) {
	rb, err := e.Resolve(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	m, err := e.Commit(ctx, rb)
	return m, rb, err
}

// Snapshot is a consistent read of the roster and ledger.
type Snapshot struct {
	Pilots   []models.Pilot
	Drones   []models.Drone
	Missions []models.Mission
}

// Snapshot reads pilots, drones and missions under the read lock so no commit
// lands between the three reads.
func (e *Engine) Snapshot(ctx context.Context) (*Snapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked(ctx)
}

func (e *Engine) snapshotLocked(ctx context.Context) (*Snapshot, error) {
	pilots, err := e.store.ListPilots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pilots: %w", err)
	}
	drones, err := e.store.ListDrones(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drones: %w", err)
	}
	missions, err := e.store.ListMissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	return &Snapshot{Pilots: pilots, Drones: drones, Missions: missions}, nil
}

func (e *Engine) load(ctx context.Context, in models.BookingIntent) (*models.Pilot, *models.Drone, []models.Mission, error) {
	pilot, err := e.store.GetPilot(ctx, strings.TrimSpace(in.PilotID))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get pilot: %w", err)
	}
	drone, err := e.store.GetDrone(ctx, strings.TrimSpace(in.DroneID))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get drone: %w", err)
	}
	missions, err := e.store.ListMissions(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list missions: %w", err)
	}
	return pilot, drone, missions, nil
}

// assignIDs picks a mission id and booking token unused by the ledger.
func (e *Engine) assignIDs(m *models.Mission, missions []models.Mission) error {
	ids := make(map[string]struct{}, len(missions))
	tokens := make(map[string]struct{}, len(missions))
	for _, existing := range missions {
		ids[existing.ID] = struct{}{}
		if existing.BookingToken != nil {
			tokens[*existing.BookingToken] = struct{}{}
		}
	}
	for i := 0; i < maxIDAttempts; i++ {
		id, tok := e.missionID(), e.tokenValue()
		_, idTaken := ids[id]
		_, tokTaken := tokens[tok]
		if id != "" && tok != "" && !idTaken && !tokTaken {
			m.ID, m.BookingToken = id, &tok
			return nil
		}
	}
	return fmt.Errorf("could not generate a unique mission id after %d attempts", maxIDAttempts)
}
