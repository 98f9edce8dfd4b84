// Package transcript keeps the running conversation for a chat session so
// callers that do not resend their history still get context.
package transcript

import (
	"context"
	"sync"

	"droneOpsBooking/models"
)

// DefaultMaxTurns bounds how many turns a session retains.
const DefaultMaxTurns = 10

// Store persists per-session turns. Load returns an empty slice for an
// unknown session.
type Store interface {
	Load(ctx context.Context, session string) ([]models.Turn, error)
	Append(ctx context.Context, session string, turns ...models.Turn) error
	Clear(ctx context.Context, session string) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu       sync.Mutex
	maxTurns int
	sessions map[string][]models.Turn
}

func NewMemoryStore(maxTurns int) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &MemoryStore{maxTurns: maxTurns, sessions: make(map[string][]models.Turn)}
}

func (s *MemoryStore) Load(ctx context.Context, session string) ([]models.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Turn(nil), s.sessions[session]...), nil
}

func (s *MemoryStore) Append(ctx context.Context, session string, turns ...models.Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all := append(s.sessions[session], turns...)
	s.sessions[session] = append([]models.Turn(nil), models.LastTurns(all, s.maxTurns)...)
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, session)
	return nil
}
