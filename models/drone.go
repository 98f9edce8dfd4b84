package models

// DroneStatus represents the operational state of a drone.
type DroneStatus string

const (
	DroneStatusAvailable   DroneStatus = "Available"
	DroneStatusMaintenance DroneStatus = "Maintenance"
	DroneStatusDeployed    DroneStatus = "Deployed"
)

// Drone represents a piece of flight equipment stationed at a home location.
// Maintenance is tracked separately from Status; either one grounds the drone.
type Drone struct {
	ID            string      `db:"id" json:"id"`
	Model         string      `db:"model" json:"model"`
	Capabilities  []string    `db:"capabilities" json:"capabilities"`
	Status        DroneStatus `db:"status" json:"status"`
	Maintenance   bool        `db:"maintenance" json:"maintenance"`
	Location      string      `db:"location" json:"location"`
	WeatherRating string      `db:"weather_rating" json:"weather_rating"`
}

// Grounded reports whether the drone is out of service for maintenance.
func (d *Drone) Grounded() bool {
	return d.Maintenance || d.Status == DroneStatusMaintenance
}
