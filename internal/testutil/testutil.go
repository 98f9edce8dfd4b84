package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"droneOpsBooking/internal/booking"
	"droneOpsBooking/internal/oracle"
	"droneOpsBooking/repository"
)

// Today is the fixed clock used by seeded engines.
var Today = time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)

// SeededStore returns a memory store loaded with the default roster.
func SeededStore(t *testing.T) *repository.MemoryStore {
	t.Helper()
	s := repository.NewMemoryStore(nil)
	if _, err := repository.Seed(context.Background(), s, repository.DefaultRoster()); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return s
}

// SeededEngine returns an engine over a seeded memory store with the clock
// pinned to Today.
func SeededEngine(t *testing.T) (*booking.Engine, *repository.MemoryStore) {
	t.Helper()
	s := SeededStore(t)
	return booking.NewEngine(s, nil, booking.WithClock(func() time.Time { return Today })), s
}

// GenerateJWTHS256 returns a signed JWT string with the claims used by the app.
func GenerateJWTHS256(t *testing.T, secret, name, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"name": name,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// FakeOracle replays scripted replies in order and records every request.
// Once the script runs out the last entry repeats.
type FakeOracle struct {
	mu       sync.Mutex
	replies  []string
	errs     []error
	Requests []oracle.Request
}

// NewFakeOracle scripts plain text replies.
func NewFakeOracle(replies ...string) *FakeOracle {
	return &FakeOracle{replies: replies}
}

// FailWith scripts an error for the next call.
func (f *FakeOracle) FailWith(err error) *FakeOracle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, err)
	return f
}

func (f *FakeOracle) Converse(_ context.Context, req oracle.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	r := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return r, nil
}

// Calls returns how many exchanges were made.
func (f *FakeOracle) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}
