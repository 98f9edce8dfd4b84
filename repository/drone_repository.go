package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"droneOpsBooking/models"
)

const droneColumns = `id, model, capabilities, status, maintenance, location, weather_rating`

type DroneRepository struct {
	db  queryer
	log *zap.Logger
}

func NewDroneRepository(db *sql.DB, log *zap.Logger) *DroneRepository {
	return &DroneRepository{db: db, log: orNop(log)}
}

// Create inserts a new drone. Status defaults to Available if empty.
func (r *DroneRepository) Create(ctx context.Context, d *models.Drone) error {
	if d == nil {
		return errors.New("drone is nil")
	}
	if d.Status == "" {
		d.Status = models.DroneStatusAvailable
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `INSERT INTO drones (`+droneColumns+`) VALUES (?,?,?,?,?,?,?)`,
		d.ID, d.Model, joinSet(d.Capabilities), string(d.Status), d.Maintenance, d.Location, d.WeatherRating)
	return err
}

func (r *DroneRepository) GetByID(ctx context.Context, id string) (*models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	d, err := scanDrone(r.db.QueryRowContext(ctx, `SELECT `+droneColumns+` FROM drones WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// List returns every drone in id order.
func (r *DroneRepository) List(ctx context.Context) ([]models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+droneColumns+` FROM drones ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Drone{}
	for rows.Next() {
		d, err := scanDrone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// UpdateStatus sets the drone's status. An unknown id is logged and ignored.
func (r *DroneRepository) UpdateStatus(ctx context.Context, id string, status models.DroneStatus) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE drones SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.log.Warn("set drone status: unknown drone", zap.String("drone_id", id), zap.String("status", string(status)))
	}
	return nil
}

func scanDrone(row rowScanner) (*models.Drone, error) {
	var d models.Drone
	var caps, status string
	if err := row.Scan(&d.ID, &d.Model, &caps, &status, &d.Maintenance, &d.Location, &d.WeatherRating); err != nil {
		return nil, err
	}
	d.Capabilities = splitSet(caps)
	d.Status = models.DroneStatus(status)
	return &d, nil
}
