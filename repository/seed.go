package repository

import (
	"context"
	"fmt"

	"droneOpsBooking/models"
)

// Roster is a snapshot of resources and missions used to seed a store.
type Roster struct {
	Pilots   []models.Pilot
	Drones   []models.Drone
	Missions []models.Mission
}

// DefaultRoster returns the fleet the service starts with.
func DefaultRoster() Roster {
	return Roster{
		Pilots: []models.Pilot{
			{ID: "P001", Name: "Arjun", Skills: []string{"Mapping", "Survey"}, Certifications: []string{"DGCA", "Night Ops"}, Location: "Bangalore", Status: models.PilotStatusAvailable, DailyRate: 1500},
			{ID: "P002", Name: "Neha", Skills: []string{"Inspection"}, Certifications: []string{"DGCA"}, Location: "Mumbai", Status: models.PilotStatusAssigned, DailyRate: 3000},
			{ID: "P003", Name: "Rohit", Skills: []string{"Inspection", "Mapping"}, Certifications: []string{"DGCA"}, Location: "Mumbai", Status: models.PilotStatusAvailable, DailyRate: 1500},
			{ID: "P004", Name: "Sneha", Skills: []string{"Survey", "Thermal"}, Certifications: []string{"DGCA", "Night Ops"}, Location: "Bangalore", Status: models.PilotStatusOnLeave, DailyRate: 5000},
		},
		Drones: []models.Drone{
			{ID: "D001", Model: "DJI M300", Capabilities: []string{"LiDAR", "RGB"}, Status: models.DroneStatusAvailable, Location: "Bangalore", WeatherRating: "IP43"},
			{ID: "D002", Model: "DJI Mavic 3", Capabilities: []string{"RGB"}, Status: models.DroneStatusMaintenance, Maintenance: true, Location: "Mumbai", WeatherRating: "Standard"},
			{ID: "D003", Model: "DJI Mavic 3T", Capabilities: []string{"Thermal"}, Status: models.DroneStatusAvailable, Location: "Mumbai", WeatherRating: "IP43"},
			{ID: "D004", Model: "Autel Evo II", Capabilities: []string{"Thermal", "RGB"}, Status: models.DroneStatusAvailable, Location: "Bangalore", WeatherRating: "Standard"},
		},
		Missions: []models.Mission{
			{ID: "PRJ001", Client: "Client A", Location: "Bangalore", Start: models.MustDate("2026-02-06"), End: models.MustDate("2026-02-08"), PilotID: models.StringPtr("P001"), DroneID: models.StringPtr("D001"), Budget: 10500},
			{ID: "PRJ002", Client: "Client B", Location: "Mumbai", Start: models.MustDate("2026-02-07"), End: models.MustDate("2026-02-09"), PilotID: models.StringPtr("P002"), DroneID: models.StringPtr("D003"), Budget: 10500},
			{ID: "PRJ003", Client: "Client C", Location: "Bangalore", Start: models.MustDate("2026-02-10"), End: models.MustDate("2026-02-12"), Budget: 10500},
		},
	}
}

// Seed loads the roster into an empty store. It is a no-op when the store
// already holds pilots, so restarting against a persistent database keeps
// its state.
func Seed(ctx context.Context, s Store, r Roster) (bool, error) {
	existing, err := s.ListPilots(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	for i := range r.Pilots {
		if err := s.AddPilot(ctx, &r.Pilots[i]); err != nil {
			return false, fmt.Errorf("seed pilot %s: %w", r.Pilots[i].ID, err)
		}
	}
	for i := range r.Drones {
		if err := s.AddDrone(ctx, &r.Drones[i]); err != nil {
			return false, fmt.Errorf("seed drone %s: %w", r.Drones[i].ID, err)
		}
	}
	for i := range r.Missions {
		if err := s.AddMission(ctx, &r.Missions[i]); err != nil {
			return false, fmt.Errorf("seed mission %s: %w", r.Missions[i].ID, err)
		}
	}
	return true, nil
}
