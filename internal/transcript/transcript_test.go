package transcript

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"droneOpsBooking/models"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	session := fmt.Sprintf("test-%d", time.Now().UnixNano())
	t.Cleanup(func() { _ = s.Clear(context.Background(), session) })

	got, err := s.Load(ctx, session)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty session: %v %v", got, err)
	}
	for i := 0; i < 7; i++ {
		if err := s.Append(ctx, session,
			models.Turn{Role: models.RoleUser, Content: fmt.Sprintf("q%d", i)},
			models.Turn{Role: models.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	got, err = s.Load(ctx, session)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("turns = %d, want 4", len(got))
	}
	if got[0].Content != "q5" || got[3].Content != "a6" || got[3].Role != models.RoleAssistant {
		t.Fatalf("kept turns = %+v", got)
	}
	if err := s.Clear(ctx, session); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = s.Load(ctx, session)
	if len(got) != 0 {
		t.Fatalf("cleared session still has %d turns", len(got))
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore(4))
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	_ = s.Append(ctx, "x", models.Turn{Role: models.RoleUser, Content: "hi"})
	got, _ := s.Load(ctx, "x")
	got[0].Content = "mutated"
	again, _ := s.Load(ctx, "x")
	if again[0].Content != "hi" {
		t.Fatalf("Load leaked internal state")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client, time.Minute, 4)
	if err := s.Ping(context.Background()); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	exercise(t, s)
}
