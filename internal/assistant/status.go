package assistant

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"strings"

	"droneOpsBooking/models"
)

// Status is the fleet overview.
type Status struct {
	Missions        int            `json:"missions"`
	AvailablePilots int            `json:"available_pilots"`
	Pilots          []models.Pilot `json:"pilots"`
	Drones          []models.Drone `json:"drones"`
}

// ListStatus summarizes the roster and ledger from one consistent snapshot.
func (s *Service) ListStatus(ctx context.Context) (*Status, error) {
	snap, err := s.engine.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	st := &Status{Missions: len(snap.Missions), Pilots: snap.Pilots, Drones: snap.Drones}
	for _, p := range snap.Pilots {
		if p.Status == models.PilotStatusAvailable {
			st.AvailablePilots++
		}
	}
	if st.Pilots == nil {
		st.Pilots = []models.Pilot{}
	}
	if st.Drones == nil {
		st.Drones = []models.Drone{}
	}
	return st, nil
}

// CSVHeader is the column order of the mission export.
var CSVHeader = []string{"project_id", "client", "location", "start_date", "end_date", "pilot_id", "drone_id", "budget", "booking_token"}

// ExportMissionsCSV renders every mission as one CSV row, in ledger order.
func (s *Service) ExportMissionsCSV(ctx context.Context) (string, error) {
	snap, err := s.engine.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return "", err
	}
	for _, m := range snap.Missions {
		row := []string{
			m.ID,
			m.Client,
			m.Location,
			m.Start.String(),
			m.End.String(),
			orDefault(m.PilotID, "Unassigned"),
			orDefault(m.DroneID, "Unassigned"),
			strconv.FormatFloat(m.Budget, 'f', -1, 64),
			orDefault(m.BookingToken, "LEGACY"),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	// Rows are newline separated with no newline after the last one.
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func orDefault(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}
