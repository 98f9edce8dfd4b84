package intent

import (
	"fmt"
	"strings"

	"droneOpsBooking/models"
)

// ValidationError lists the fields of an intent that are missing or invalid.
// It is recovered by asking the user for those fields.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid booking intent: %s", e.Reason)
	}
	return fmt.Sprintf("incomplete booking intent: missing %s", strings.Join(e.Fields, ", "))
}

// Validate checks that an intent carries every field the resolver needs.
func Validate(in models.BookingIntent) error {
	var missing []string
	if strings.TrimSpace(in.Location) == "" {
		missing = append(missing, "location")
	}
	if in.Start.IsZero() {
		missing = append(missing, "start")
	}
	if in.End.IsZero() {
		missing = append(missing, "end")
	}
	if strings.TrimSpace(in.PilotID) == "" {
		missing = append(missing, "assigned_pilot_id")
	}
	if strings.TrimSpace(in.DroneID) == "" {
		missing = append(missing, "assigned_drone_id")
	}
	if in.Budget <= 0 {
		missing = append(missing, "budget")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	if in.End.Before(in.Start.Time) {
		return &ValidationError{Fields: []string{"end"}, Reason: fmt.Sprintf("end date %s is before start date %s", in.End, in.Start)}
	}
	return nil
}
