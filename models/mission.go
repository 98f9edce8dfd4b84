package models

// Mission represents a booked or seeded flight job. Missions are never
// mutated after creation. PilotID and DroneID are nil when unassigned;
// BookingToken is nil for missions that were not created by the assistant.
type Mission struct {
	ID           string  `db:"id" json:"id"`
	BookingToken *string `db:"booking_token" json:"bookingToken,omitempty"`
	Client       string  `db:"client" json:"client"`
	Location     string  `db:"location" json:"location"`
	Start        Date    `db:"start_date" json:"start"`
	End          Date    `db:"end_date" json:"end"`
	PilotID      *string `db:"assigned_pilot" json:"assigned_pilot"`
	DroneID      *string `db:"assigned_drone" json:"assigned_drone"`
	Budget       float64 `db:"budget" json:"budget"`
}

// Overlaps reports whether the mission's inclusive window shares at least one
// day with [start, end].
func (m *Mission) Overlaps(start, end Date) bool {
	return WindowsOverlap(m.Start, m.End, start, end)
}

// WindowsOverlap reports whether the inclusive ranges [a,b] and [c,d] overlap.
func WindowsOverlap(a, b, c, d Date) bool {
	return !a.After(d.Time) && !c.After(b.Time)
}

// UsesPilot reports whether the mission is assigned to the given pilot.
func (m *Mission) UsesPilot(id string) bool {
	return m.PilotID != nil && *m.PilotID == id
}

// UsesDrone reports whether the mission is assigned to the given drone.
func (m *Mission) UsesDrone(id string) bool {
	return m.DroneID != nil && *m.DroneID == id
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
