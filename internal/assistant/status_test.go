package assistant

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"droneOpsBooking/internal/testutil"
)

func TestListStatus(t *testing.T) {
	engine, _ := testutil.SeededEngine(t)
	st, err := NewService(engine, nil, nil).ListStatus(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Missions != 3 || st.AvailablePilots != 2 || len(st.Pilots) != 4 || len(st.Drones) != 4 {
		t.Fatalf("status = %+v", st)
	}
}

func TestExportMissionsCSV_NoTrailingNewline(t *testing.T) {
	engine, _ := testutil.SeededEngine(t)
	out, err := NewService(engine, nil, nil).ExportMissionsCSV(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := strings.Join([]string{
		strings.Join(CSVHeader, ","),
		"PRJ001,Client A,Bangalore,2026-02-06,2026-02-08,P001,D001,10500,LEGACY",
	}, "\n")
	if !strings.HasPrefix(out, want+"\n") {
		t.Fatalf("export starts with %q, want %q", out, want)
	}
	if strings.HasSuffix(out, "\n") {
		t.Fatalf("export ends with a newline: %q", out)
	}
	if got := strings.Count(out, "\n"); got != 3 {
		t.Fatalf("newlines = %d, want 3 separators for header + 3 rows", got)
	}
}

func TestExportMissionsCSV(t *testing.T) {
	ctx := context.Background()
	engine, _ := testutil.SeededEngine(t)
	svc := NewService(engine, testutil.NewFakeOracle(action(withBudget("5000"))), nil)
	if r := svc.SubmitChat(ctx, nil, "confirm"); r.Outcome != OutcomeBooked {
		t.Fatalf("book: %+v", r)
	}

	out, err := svc.ExportMissionsCSV(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want header + 4", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(CSVHeader, ",") {
		t.Fatalf("header = %v", rows[0])
	}
	if got := strings.Join(rows[1], ","); got != "PRJ001,Client A,Bangalore,2026-02-06,2026-02-08,P001,D001,10500,LEGACY" {
		t.Fatalf("row 1 = %s", got)
	}
	if rows[3][5] != "Unassigned" || rows[3][6] != "Unassigned" || rows[3][8] != "LEGACY" {
		t.Fatalf("unassigned row = %v", rows[3])
	}
	booked := rows[4]
	if booked[1] != "AI Booking" || booked[5] != "P001" || booked[6] != "D004" || !strings.HasPrefix(booked[8], "SKY-") {
		t.Fatalf("booked row = %v", booked)
	}
}
