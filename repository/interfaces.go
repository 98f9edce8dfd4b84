package repository

import (
	"context"
	"errors"

	"droneOpsBooking/models"
)

var (
	// ErrResourceNotFound is returned by ApplyBooking when the mission's pilot
	// or drone no longer exists.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrDuplicateMission is returned when a mission id or booking token is already taken.
	ErrDuplicateMission = errors.New("duplicate mission")
)

// Registry holds the current roster of pilots and drones. Lookups return
// nil, nil when the id is unknown. Status updates for unknown ids are logged
// no-ops.
type Registry interface {
	ListPilots(ctx context.Context) ([]models.Pilot, error)
	ListDrones(ctx context.Context) ([]models.Drone, error)
	GetPilot(ctx context.Context, id string) (*models.Pilot, error)
	GetDrone(ctx context.Context, id string) (*models.Drone, error)
	SetPilotStatus(ctx context.Context, id string, status models.PilotStatus) error
	SetDroneStatus(ctx context.Context, id string, status models.DroneStatus) error
}

// Ledger is the ordered collection of missions.
type Ledger interface {
	ListMissions(ctx context.Context) ([]models.Mission, error)
	GetMission(ctx context.Context, id string) (*models.Mission, error)
}

// Admin is the administrative write surface used for seeding.
type Admin interface {
	AddPilot(ctx context.Context, p *models.Pilot) error
	AddDrone(ctx context.Context, d *models.Drone) error
	AddMission(ctx context.Context, m *models.Mission) error
}

// Store is the full persistence contract the booking engine depends on.
type Store interface {
	Registry
	Ledger
	Admin
	// ApplyBooking appends m and marks its pilot Assigned and its drone
	// Deployed. Either every change is applied or none is.
	ApplyBooking(ctx context.Context, m *models.Mission) error
	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLStore)(nil)
)
