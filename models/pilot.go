package models

// PilotStatus represents the availability of a pilot.
type PilotStatus string

const (
	PilotStatusAvailable PilotStatus = "Available"
	PilotStatusAssigned  PilotStatus = "Assigned"
	PilotStatusOnLeave   PilotStatus = "On Leave"
)

// Pilot represents a licensed operator that can be booked per day.
type Pilot struct {
	ID             string      `db:"id" json:"id"`
	Name           string      `db:"name" json:"name"`
	Skills         []string    `db:"skills" json:"skills"`
	Certifications []string    `db:"certs" json:"certs"`
	Location       string      `db:"location" json:"location"`
	Status         PilotStatus `db:"status" json:"status"`
	DailyRate      float64     `db:"rate" json:"rate"`
}
