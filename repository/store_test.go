package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"droneOpsBooking/internal/testutil/testdb"
	"droneOpsBooking/models"
)

func newSQLStore(t *testing.T, name string) *SQLStore {
	t.Helper()
	return NewSQLStore(testdb.Open(t, name), nil)
}

// eachStore runs fn against every Store implementation, seeded with the default roster.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()
	backends := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore(nil) },
		"sqlite": func(t *testing.T) Store { return newSQLStore(t, "store_"+strings.ReplaceAll(t.Name(), "/", "_")) },
	}
	for name, mk := range backends {
		t.Run(name, func(t *testing.T) {
			s := mk(t)
			seeded, err := Seed(context.Background(), s, DefaultRoster())
			if err != nil || !seeded {
				t.Fatalf("seed: seeded=%v err=%v", seeded, err)
			}
			fn(t, s)
		})
	}
}

func TestStore_SeedAndList(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		pilots, err := s.ListPilots(ctx)
		if err != nil || len(pilots) != 4 {
			t.Fatalf("ListPilots: len=%d err=%v", len(pilots), err)
		}
		if pilots[0].ID != "P001" || len(pilots[0].Skills) != 2 || pilots[0].DailyRate != 1500 {
			t.Fatalf("unexpected first pilot: %+v", pilots[0])
		}
		drones, err := s.ListDrones(ctx)
		if err != nil || len(drones) != 4 {
			t.Fatalf("ListDrones: len=%d err=%v", len(drones), err)
		}
		if !drones[1].Maintenance || drones[1].Status != models.DroneStatusMaintenance {
			t.Fatalf("D002 should be in maintenance: %+v", drones[1])
		}
		missions, err := s.ListMissions(ctx)
		if err != nil || len(missions) != 3 {
			t.Fatalf("ListMissions: len=%d err=%v", len(missions), err)
		}
		if missions[2].ID != "PRJ003" || missions[2].PilotID != nil || missions[2].BookingToken != nil {
			t.Fatalf("PRJ003 should be unassigned legacy: %+v", missions[2])
		}

		// Seeding twice keeps existing state.
		again, err := Seed(ctx, s, DefaultRoster())
		if err != nil || again {
			t.Fatalf("second seed: seeded=%v err=%v", again, err)
		}
	})
}

func TestStore_GetUnknownReturnsNil(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if p, err := s.GetPilot(ctx, "P999"); p != nil || err != nil {
			t.Fatalf("GetPilot unknown = %+v, %v", p, err)
		}
		if d, err := s.GetDrone(ctx, "D999"); d != nil || err != nil {
			t.Fatalf("GetDrone unknown = %+v, %v", d, err)
		}
		if m, err := s.GetMission(ctx, "PRJ999"); m != nil || err != nil {
			t.Fatalf("GetMission unknown = %+v, %v", m, err)
		}
	})
}

func TestStore_SetStatus(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if err := s.SetPilotStatus(ctx, "P003", models.PilotStatusOnLeave); err != nil {
			t.Fatalf("SetPilotStatus: %v", err)
		}
		if p, _ := s.GetPilot(ctx, "P003"); p == nil || p.Status != models.PilotStatusOnLeave {
			t.Fatalf("pilot status not updated: %+v", p)
		}
		if err := s.SetDroneStatus(ctx, "D004", models.DroneStatusDeployed); err != nil {
			t.Fatalf("SetDroneStatus: %v", err)
		}
		if d, _ := s.GetDrone(ctx, "D004"); d == nil || d.Status != models.DroneStatusDeployed {
			t.Fatalf("drone status not updated: %+v", d)
		}
		// Unknown ids are no-ops.
		if err := s.SetPilotStatus(ctx, "P999", models.PilotStatusAssigned); err != nil {
			t.Fatalf("unknown pilot should be a no-op, got %v", err)
		}
		if err := s.SetDroneStatus(ctx, "D999", models.DroneStatusDeployed); err != nil {
			t.Fatalf("unknown drone should be a no-op, got %v", err)
		}
	})
}

func TestStore_ApplyBooking(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		m := &models.Mission{
			ID: "PRJ-TEST0001", BookingToken: models.StringPtr("SKY-AAAA-0001"), Client: "AI Booking",
			Location: "Bangalore", Start: models.MustDate("2026-03-01"), End: models.MustDate("2026-03-02"),
			PilotID: models.StringPtr("P001"), DroneID: models.StringPtr("D004"), Budget: 5000,
		}
		if err := s.ApplyBooking(ctx, m); err != nil {
			t.Fatalf("ApplyBooking: %v", err)
		}
		got, err := s.GetMission(ctx, m.ID)
		if err != nil || got == nil || *got.BookingToken != "SKY-AAAA-0001" || got.End.String() != "2026-03-02" {
			t.Fatalf("mission not stored: %+v err=%v", got, err)
		}
		if p, _ := s.GetPilot(ctx, "P001"); p.Status != models.PilotStatusAssigned {
			t.Fatalf("pilot not assigned: %+v", p)
		}
		if d, _ := s.GetDrone(ctx, "D004"); d.Status != models.DroneStatusDeployed {
			t.Fatalf("drone not deployed: %+v", d)
		}

		// Same id again is rejected without side effects.
		dup := *m
		dup.BookingToken = models.StringPtr("SKY-AAAA-0002")
		dup.DroneID = models.StringPtr("D001")
		if err := s.ApplyBooking(ctx, &dup); !errors.Is(err, ErrDuplicateMission) {
			t.Fatalf("expected ErrDuplicateMission, got %v", err)
		}
		if d, _ := s.GetDrone(ctx, "D001"); d.Status != models.DroneStatusAvailable {
			t.Fatalf("failed booking must not touch drone: %+v", d)
		}
	})
}

func TestStore_ApplyBookingUnknownResource(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		m := &models.Mission{
			ID: "PRJ-TEST0002", Client: "AI Booking", Location: "Bangalore",
			Start: models.MustDate("2026-03-01"), End: models.MustDate("2026-03-01"),
			PilotID: models.StringPtr("P001"), DroneID: models.StringPtr("D999"), Budget: 5000,
		}
		if err := s.ApplyBooking(ctx, m); !errors.Is(err, ErrResourceNotFound) {
			t.Fatalf("expected ErrResourceNotFound, got %v", err)
		}
		if p, _ := s.GetPilot(ctx, "P001"); p.Status != models.PilotStatusAvailable {
			t.Fatalf("pilot must stay available after failed booking: %+v", p)
		}
		if got, _ := s.GetMission(ctx, m.ID); got != nil {
			t.Fatalf("mission must not be stored: %+v", got)
		}
	})
}

func TestStore_ApplyBookingCancelledContext(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		m := &models.Mission{
			ID: "PRJ-TEST0003", Client: "AI Booking", Location: "Bangalore",
			Start: models.MustDate("2026-03-01"), End: models.MustDate("2026-03-01"),
			PilotID: models.StringPtr("P001"), DroneID: models.StringPtr("D004"), Budget: 5000,
		}
		if err := s.ApplyBooking(ctx, m); err == nil {
			t.Fatalf("expected error on cancelled context")
		}
		bg := context.Background()
		if got, _ := s.GetMission(bg, m.ID); got != nil {
			t.Fatalf("mission must not be stored: %+v", got)
		}
		if p, _ := s.GetPilot(bg, "P001"); p.Status != models.PilotStatusAvailable {
			t.Fatalf("pilot must be untouched: %+v", p)
		}
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()
	if err := s.AddPilot(ctx, &models.Pilot{ID: "P1", Name: "x", Skills: []string{"Mapping"}, Location: "Pune", DailyRate: 1}); err != nil {
		t.Fatalf("AddPilot: %v", err)
	}
	p, _ := s.GetPilot(ctx, "P1")
	p.Skills[0] = "changed"
	p.Status = models.PilotStatusOnLeave
	again, _ := s.GetPilot(ctx, "P1")
	if again.Skills[0] != "Mapping" || again.Status != models.PilotStatusAvailable {
		t.Fatalf("store leaked internal state: %+v", again)
	}
	if err := s.AddPilot(ctx, &models.Pilot{ID: "P1"}); err == nil {
		t.Fatalf("expected duplicate pilot error")
	}
}

func TestSplitSet(t *testing.T) {
	if got := splitSet(""); len(got) != 0 {
		t.Fatalf("splitSet empty = %v", got)
	}
	if got := splitSet("LiDAR, RGB,"); len(got) != 2 || got[1] != "RGB" {
		t.Fatalf("splitSet = %v", got)
	}
}
