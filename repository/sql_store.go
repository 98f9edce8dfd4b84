package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"droneOpsBooking/models"
)

// SQLStore implements Store on top of the SQLite schema in internal/db.
type SQLStore struct {
	db       *sql.DB
	log      *zap.Logger
	Pilots   *PilotRepository
	Drones   *DroneRepository
	Missions *MissionRepository
}

func NewSQLStore(db *sql.DB, log *zap.Logger) *SQLStore {
	log = orNop(log)
	return &SQLStore{
		db:       db,
		log:      log,
		Pilots:   NewPilotRepository(db, log),
		Drones:   NewDroneRepository(db, log),
		Missions: NewMissionRepository(db),
	}
}

func (s *SQLStore) ListPilots(ctx context.Context) ([]models.Pilot, error) { return s.Pilots.List(ctx) }
func (s *SQLStore) ListDrones(ctx context.Context) ([]models.Drone, error) { return s.Drones.List(ctx) }
func (s *SQLStore) ListMissions(ctx context.Context) ([]models.Mission, error) {
	return s.Missions.List(ctx)
}

func (s *SQLStore) GetPilot(ctx context.Context, id string) (*models.Pilot, error) {
	return s.Pilots.GetByID(ctx, id)
}

func (s *SQLStore) GetDrone(ctx context.Context, id string) (*models.Drone, error) {
	return s.Drones.GetByID(ctx, id)
}

func (s *SQLStore) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	return s.Missions.GetByID(ctx, id)
}

func (s *SQLStore) SetPilotStatus(ctx context.Context, id string, status models.PilotStatus) error {
	return s.Pilots.UpdateStatus(ctx, id, status)
}

func (s *SQLStore) SetDroneStatus(ctx context.Context, id string, status models.DroneStatus) error {
	return s.Drones.UpdateStatus(ctx, id, status)
}

func (s *SQLStore) AddPilot(ctx context.Context, p *models.Pilot) error { return s.Pilots.Create(ctx, p) }
func (s *SQLStore) AddDrone(ctx context.Context, d *models.Drone) error { return s.Drones.Create(ctx, d) }
func (s *SQLStore) AddMission(ctx context.Context, m *models.Mission) error {
	return s.Missions.Create(ctx, m)
}

// ApplyBooking runs the mission insert and both status updates in one
// transaction. A cancelled context rolls the whole transaction back.
func (s *SQLStore) ApplyBooking(ctx context.Context, m *models.Mission) (err error) {
	if m == nil || m.PilotID == nil || m.DroneID == nil {
		return errors.New("booking requires a mission with pilot and drone")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	pilots := &PilotRepository{db: tx, log: s.log}
	drones := &DroneRepository{db: tx, log: s.log}
	missions := &MissionRepository{db: tx}

	p, err := pilots.GetByID(ctx, *m.PilotID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("pilot %s: %w", *m.PilotID, ErrResourceNotFound)
	}
	d, err := drones.GetByID(ctx, *m.DroneID)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("drone %s: %w", *m.DroneID, ErrResourceNotFound)
	}
	if err = missions.Create(ctx, m); err != nil {
		return err
	}
	if err = pilots.UpdateStatus(ctx, p.ID, models.PilotStatusAssigned); err != nil {
		return err
	}
	if err = drones.UpdateStatus(ctx, d.ID, models.DroneStatusDeployed); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) Close() error { return s.db.Close() }
