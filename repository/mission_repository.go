package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"droneOpsBooking/models"
)

const missionColumns = `id, booking_token, client, location, start_date, end_date, assigned_pilot, assigned_drone, budget`

type MissionRepository struct {
	db queryer
}

func NewMissionRepository(db *sql.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

// Create appends a mission. Unique violations map to ErrDuplicateMission.
func (r *MissionRepository) Create(ctx context.Context, m *models.Mission) error {
	if m == nil {
		return errors.New("mission is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `INSERT INTO missions (`+missionColumns+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		m.ID, nullString(m.BookingToken), m.Client, m.Location, m.Start.String(), m.End.String(),
		nullString(m.PilotID), nullString(m.DroneID), m.Budget)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("mission %s: %w", m.ID, ErrDuplicateMission)
	}
	return err
}

func (r *MissionRepository) GetByID(ctx context.Context, id string) (*models.Mission, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	m, err := scanMission(r.db.QueryRowContext(ctx, `SELECT `+missionColumns+` FROM missions WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// List returns every mission in insertion order.
func (r *MissionRepository) List(ctx context.Context) ([]models.Mission, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+missionColumns+` FROM missions ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Mission{}
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func scanMission(row rowScanner) (*models.Mission, error) {
	var m models.Mission
	var token, pilot, drone sql.NullString
	var start, end string
	if err := row.Scan(&m.ID, &token, &m.Client, &m.Location, &start, &end, &pilot, &drone, &m.Budget); err != nil {
		return nil, err
	}
	var err error
	if m.Start, err = models.ParseDate(start); err != nil {
		return nil, fmt.Errorf("mission %s start: %w", m.ID, err)
	}
	if m.End, err = models.ParseDate(end); err != nil {
		return nil, fmt.Errorf("mission %s end: %w", m.ID, err)
	}
	m.BookingToken = stringPtr(token)
	m.PilotID = stringPtr(pilot)
	m.DroneID = stringPtr(drone)
	return &m, nil
}
