package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"droneOpsBooking/models"
)

const pilotColumns = `id, name, skills, certs, location, status, rate`

type PilotRepository struct {
	db  queryer
	log *zap.Logger
}

func NewPilotRepository(db *sql.DB, log *zap.Logger) *PilotRepository {
	return &PilotRepository{db: db, log: orNop(log)}
}

// Create inserts a pilot. Status defaults to Available if empty.
func (r *PilotRepository) Create(ctx context.Context, p *models.Pilot) error {
	if p == nil {
		return errors.New("pilot is nil")
	}
	if p.Status == "" {
		p.Status = models.PilotStatusAvailable
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `INSERT INTO pilots (`+pilotColumns+`) VALUES (?,?,?,?,?,?,?)`,
		p.ID, p.Name, joinSet(p.Skills), joinSet(p.Certifications), p.Location, string(p.Status), p.DailyRate)
	return err
}

func (r *PilotRepository) GetByID(ctx context.Context, id string) (*models.Pilot, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	p, err := scanPilot(r.db.QueryRowContext(ctx, `SELECT `+pilotColumns+` FROM pilots WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// List returns every pilot in id order.
func (r *PilotRepository) List(ctx context.Context) ([]models.Pilot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+pilotColumns+` FROM pilots ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Pilot{}
	for rows.Next() {
		p, err := scanPilot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdateStatus sets the pilot's status. An unknown id is logged and ignored.
func (r *PilotRepository) UpdateStatus(ctx context.Context, id string, status models.PilotStatus) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE pilots SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.log.Warn("set pilot status: unknown pilot", zap.String("pilot_id", id), zap.String("status", string(status)))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPilot(row rowScanner) (*models.Pilot, error) {
	var p models.Pilot
	var skills, certs, status string
	if err := row.Scan(&p.ID, &p.Name, &skills, &certs, &p.Location, &status, &p.DailyRate); err != nil {
		return nil, err
	}
	p.Skills = splitSet(skills)
	p.Certifications = splitSet(certs)
	p.Status = models.PilotStatus(status)
	return &p, nil
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
