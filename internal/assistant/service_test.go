package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"droneOpsBooking/internal/intent"
	"droneOpsBooking/internal/oracle"
	"droneOpsBooking/internal/testutil"
	"droneOpsBooking/internal/transcript"
	"droneOpsBooking/models"
)

func action(payload string) string {
	return "Great, booking it now.\n" + intent.Delimiter + "\n" + payload
}

const bangaloreBooking = `{"location":"Bangalore","start":"2026-03-01","end":"2026-03-02","assigned_pilot_id":"P001","assigned_drone_id":"D004","budget":%s,"cost":3000}`

func withBudget(budget string) string {
	return strings.Replace(bangaloreBooking, "%s", budget, 1)
}

func TestSubmitChat_Books(t *testing.T) {
	ctx := context.Background()
	engine, store := testutil.SeededEngine(t)
	fake := testutil.NewFakeOracle(action(withBudget("5000")))
	svc := NewService(engine, fake, nil)

	reply := svc.SubmitChat(ctx, nil, "yes, confirm")
	if reply.Outcome != OutcomeBooked || reply.Mission == nil {
		t.Fatalf("reply = %+v", reply)
	}
	want := "**System Update:** Mission " + reply.Mission.ID + " confirmed. Token: " + *reply.Mission.BookingToken
	if !strings.HasPrefix(reply.Text, "Great, booking it now.") || !strings.HasSuffix(reply.Text, want) {
		t.Fatalf("text = %q", reply.Text)
	}
	if strings.Contains(reply.Text, intent.Delimiter) {
		t.Fatalf("action block leaked into text")
	}
	p, _ := store.GetPilot(ctx, "P001")
	d, _ := store.GetDrone(ctx, "D004")
	if p.Status != models.PilotStatusAssigned || d.Status != models.DroneStatusDeployed {
		t.Fatalf("statuses = %s / %s", p.Status, d.Status)
	}
	missions, _ := store.ListMissions(ctx)
	if len(missions) != 4 || missions[3].Client != "AI Booking" {
		t.Fatalf("ledger = %+v", missions)
	}
}

func TestSubmitChat_RequestCarriesCatalog(t *testing.T) {
	engine, _ := testutil.SeededEngine(t)
	fake := testutil.NewFakeOracle("Hello!")
	svc := NewService(engine, fake, nil)
	history := []models.Turn{{Role: models.RoleUser, Content: "hi"}}

	reply := svc.SubmitChat(context.Background(), history, "who is free?")
	if reply.Outcome != OutcomeReply || reply.Text != "Hello!" {
		t.Fatalf("reply = %+v", reply)
	}
	req := fake.Requests[0]
	if len(req.Catalog.Pilots) != 4 || len(req.Catalog.Drones) != 4 || len(req.Catalog.Missions) != 3 {
		t.Fatalf("catalog = %d/%d/%d", len(req.Catalog.Pilots), len(req.Catalog.Drones), len(req.Catalog.Missions))
	}
	if req.Today.String() != "2026-02-20" || req.Utterance != "who is free?" || len(req.History) != 1 {
		t.Fatalf("request = %+v", req)
	}
}

func TestSubmitChat_Failures(t *testing.T) {
	cases := []struct {
		name    string
		reply   string
		err     error
		outcome Outcome
		want    string
	}{
		{"budget", action(withBudget("2000")), nil, OutcomeRejected, "INR 1000 over your budget"},
		{"maintenance", action(`{"location":"Mumbai","start":"2026-03-01","end":"2026-03-02","assigned_pilot_id":"P003","assigned_drone_id":"D002","budget":99999}`), nil, OutcomeRejected, "maintenance"},
		{"location", action(`{"location":"Mumbai","start":"2026-03-01","end":"2026-03-02","assigned_pilot_id":"P001","assigned_drone_id":"D003","budget":99999}`), nil, OutcomeRejected, "Booking not made"},
		{"unknown pilot", action(`{"location":"Bangalore","start":"2026-03-01","end":"2026-03-02","assigned_pilot_id":"P999","assigned_drone_id":"D004","budget":99999}`), nil, OutcomeRejected, "P999"},
		{"malformed", action(`{"location": "Bangalore",`), nil, OutcomeMalformed, "could not be read"},
		{"incomplete", action(`{"location":"Bangalore","start":"2026-03-01","end":"2026-03-02","assigned_pilot_id":"P001","assigned_drone_id":"D004"}`), nil, OutcomeIncomplete, "budget (INR)"},
		{"reversed dates", action(`{"location":"Bangalore","start":"2026-03-05","end":"2026-03-02","assigned_pilot_id":"P001","assigned_drone_id":"D004","budget":99999}`), nil, OutcomeIncomplete, "before start date"},
		{"rate limited", "", &oracle.UnavailableError{Kind: oracle.KindRateLimited, Cooldown: 30 * time.Second}, OutcomeUnavailable, "about 30 seconds"},
		{"timeout", "", &oracle.UnavailableError{Kind: oracle.KindTimeout}, OutcomeUnavailable, "trouble connecting"},
		{"raw error", "", errors.New("network down"), OutcomeUnavailable, "trouble connecting"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			engine, store := testutil.SeededEngine(t)
			fake := testutil.NewFakeOracle(tc.reply)
			if tc.err != nil {
				fake.FailWith(tc.err)
			}
			reply := NewService(engine, fake, nil).SubmitChat(ctx, nil, "book")
			if reply.Outcome != tc.outcome {
				t.Fatalf("outcome = %s, want %s (%q)", reply.Outcome, tc.outcome, reply.Text)
			}
			if !strings.Contains(reply.Text, tc.want) {
				t.Fatalf("text %q does not mention %q", reply.Text, tc.want)
			}
			if reply.Mission != nil {
				t.Fatalf("no mission expected, got %+v", reply.Mission)
			}
			missions, _ := store.ListMissions(ctx)
			if len(missions) != 3 {
				t.Fatalf("ledger changed: %d missions", len(missions))
			}
		})
	}
}

func TestSubmitChat_SecondConfirmationDoesNotDoubleBook(t *testing.T) {
	ctx := context.Background()
	engine, store := testutil.SeededEngine(t)
	svc := NewService(engine, testutil.NewFakeOracle(action(withBudget("5000"))), nil)
	if r := svc.SubmitChat(ctx, nil, "confirm"); r.Outcome != OutcomeBooked {
		t.Fatalf("first: %+v", r)
	}
	r := svc.SubmitChat(ctx, nil, "confirm")
	if r.Outcome != OutcomeRejected {
		t.Fatalf("second: %+v", r)
	}
	missions, _ := store.ListMissions(ctx)
	if len(missions) != 4 {
		t.Fatalf("missions = %d, want 4", len(missions))
	}
}

func TestSubmitChat_NotConfigured(t *testing.T) {
	engine, _ := testutil.SeededEngine(t)
	svc := NewService(engine, nil, nil)
	if svc.OracleConfigured() {
		t.Fatalf("nil oracle must not count as configured")
	}
	r := svc.SubmitChat(context.Background(), nil, "hi")
	if r.Outcome != OutcomeUnavailable || r.Text != textNotConfigured {
		t.Fatalf("reply = %+v", r)
	}
}

func TestConverse_UsesStoredTranscript(t *testing.T) {
	ctx := context.Background()
	engine, _ := testutil.SeededEngine(t)
	fake := testutil.NewFakeOracle("first answer", "second answer")
	svc := NewService(engine, fake, nil, WithTranscripts(transcript.NewMemoryStore(10)))

	svc.Converse(ctx, "s1", nil, "first question")
	svc.Converse(ctx, "s1", nil, "second question")
	if fake.Calls() != 2 {
		t.Fatalf("calls = %d", fake.Calls())
	}
	hist := fake.Requests[1].History
	if len(hist) != 2 || hist[0].Content != "first question" || hist[1].Content != "first answer" || hist[1].Role != models.RoleAssistant {
		t.Fatalf("history = %+v", hist)
	}

	// Caller-supplied history wins over the stored transcript.
	own := []models.Turn{{Role: models.RoleUser, Content: "mine"}}
	svc.Converse(ctx, "s1", own, "third")
	if got := fake.Requests[2].History; len(got) != 1 || got[0].Content != "mine" {
		t.Fatalf("history = %+v", got)
	}
}
