package models

// BookingIntent is a structured, not-yet-committed mission request proposed by
// the language model. Cost is the model's own estimate and is never trusted.
type BookingIntent struct {
	Location string  `json:"location"`
	Start    Date    `json:"start"`
	End      Date    `json:"end"`
	PilotID  string  `json:"assigned_pilot_id"`
	DroneID  string  `json:"assigned_drone_id"`
	Budget   float64 `json:"budget"`
	Cost     float64 `json:"cost"`
}
