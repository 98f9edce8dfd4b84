package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"droneOpsBooking/models"
)

// MemoryStore keeps the roster and ledger in process memory. It preserves
// insertion order for listings and returns copies so callers cannot mutate
// stored records.
type MemoryStore struct {
	mu       sync.RWMutex
	log      *zap.Logger
	pilots   []models.Pilot
	drones   []models.Drone
	missions []models.Mission
}

func NewMemoryStore(log *zap.Logger) *MemoryStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &MemoryStore{log: log}
}

func (s *MemoryStore) ListPilots(ctx context.Context) ([]models.Pilot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Pilot, len(s.pilots))
	for i, p := range s.pilots {
		out[i] = clonePilot(p)
	}
	return out, nil
}

func (s *MemoryStore) ListDrones(ctx context.Context) ([]models.Drone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Drone, len(s.drones))
	for i, d := range s.drones {
		out[i] = cloneDrone(d)
	}
	return out, nil
}

func (s *MemoryStore) ListMissions(ctx context.Context) ([]models.Mission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.missions), nil
}

func (s *MemoryStore) GetPilot(ctx context.Context, id string) (*models.Pilot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.pilotIndex(id)
	if i < 0 {
		return nil, nil
	}
	p := clonePilot(s.pilots[i])
	return &p, nil
}

func (s *MemoryStore) GetDrone(ctx context.Context, id string) (*models.Drone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.droneIndex(id)
	if i < 0 {
		return nil, nil
	}
	d := cloneDrone(s.drones[i])
	return &d, nil
}

func (s *MemoryStore) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.missions {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) SetPilotStatus(ctx context.Context, id string, status models.PilotStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.pilotIndex(id)
	if i < 0 {
		s.log.Warn("set pilot status: unknown pilot", zap.String("pilot_id", id), zap.String("status", string(status)))
		return nil
	}
	s.pilots[i].Status = status
	return nil
}

func (s *MemoryStore) SetDroneStatus(ctx context.Context, id string, status models.DroneStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.droneIndex(id)
	if i < 0 {
		s.log.Warn("set drone status: unknown drone", zap.String("drone_id", id), zap.String("status", string(status)))
		return nil
	}
	s.drones[i].Status = status
	return nil
}

func (s *MemoryStore) AddPilot(ctx context.Context, p *models.Pilot) error {
	if p == nil {
		return fmt.Errorf("pilot is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pilotIndex(p.ID) >= 0 {
		return fmt.Errorf("pilot %s already exists", p.ID)
	}
	if p.Status == "" {
		p.Status = models.PilotStatusAvailable
	}
	s.pilots = append(s.pilots, clonePilot(*p))
	return nil
}

func (s *MemoryStore) AddDrone(ctx context.Context, d *models.Drone) error {
	if d == nil {
		return fmt.Errorf("drone is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.droneIndex(d.ID) >= 0 {
		return fmt.Errorf("drone %s already exists", d.ID)
	}
	if d.Status == "" {
		d.Status = models.DroneStatusAvailable
	}
	s.drones = append(s.drones, cloneDrone(*d))
	return nil
}

// AddMission appends a mission without touching resource statuses.
func (s *MemoryStore) AddMission(ctx context.Context, m *models.Mission) error {
	if m == nil {
		return fmt.Errorf("mission is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMission(m); err != nil {
		return err
	}
	s.missions = append(s.missions, *m)
	return nil
}

func (s *MemoryStore) ApplyBooking(ctx context.Context, m *models.Mission) error {
	if m == nil || m.PilotID == nil || m.DroneID == nil {
		return fmt.Errorf("booking requires a mission with pilot and drone")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pi, di := s.pilotIndex(*m.PilotID), s.droneIndex(*m.DroneID)
	if pi < 0 {
		return fmt.Errorf("pilot %s: %w", *m.PilotID, ErrResourceNotFound)
	}
	if di < 0 {
		return fmt.Errorf("drone %s: %w", *m.DroneID, ErrResourceNotFound)
	}
	if err := s.checkMission(m); err != nil {
		return err
	}
	// Nothing below can fail.
	s.missions = append(s.missions, *m)
	s.pilots[pi].Status = models.PilotStatusAssigned
	s.drones[di].Status = models.DroneStatusDeployed
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) checkMission(m *models.Mission) error {
	if m.End.Before(m.Start.Time) {
		return fmt.Errorf("mission %s ends before it starts", m.ID)
	}
	for _, existing := range s.missions {
		if existing.ID == m.ID {
			return fmt.Errorf("mission id %s: %w", m.ID, ErrDuplicateMission)
		}
		if m.BookingToken != nil && existing.BookingToken != nil && *existing.BookingToken == *m.BookingToken {
			return fmt.Errorf("booking token %s: %w", *m.BookingToken, ErrDuplicateMission)
		}
	}
	return nil
}

func (s *MemoryStore) pilotIndex(id string) int {
	return slices.IndexFunc(s.pilots, func(p models.Pilot) bool { return p.ID == id })
}

func (s *MemoryStore) droneIndex(id string) int {
	return slices.IndexFunc(s.drones, func(d models.Drone) bool { return d.ID == id })
}

func clonePilot(p models.Pilot) models.Pilot {
	p.Skills = slices.Clone(p.Skills)
	p.Certifications = slices.Clone(p.Certifications)
	return p
}

func cloneDrone(d models.Drone) models.Drone {
	d.Capabilities = slices.Clone(d.Capabilities)
	return d
}
