package booking

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"droneOpsBooking/internal/intent"
	"droneOpsBooking/models"
)

// ResolvedBooking is an intent that passed every eligibility rule, with the
// cost computed from the pilot's rate. It can be committed at most once.
type ResolvedBooking struct {
	Intent    models.BookingIntent
	Cost      float64
	Days      int
	committed atomic.Bool
}

// Cost returns rate × max(1, inclusive days in [start, end]).
func Cost(rate float64, start, end models.Date) (float64, int) {
	days := start.DaysInclusive(end)
	if days < 1 {
		days = 1
	}
	return rate * float64(days), days
}

// Evaluate applies the eligibility rules in order and returns the first
// failure. It never mutates its inputs. A nil pilot or drone means the id is
// unknown.
func Evaluate(in models.BookingIntent, pilot *models.Pilot, drone *models.Drone, missions []models.Mission) (*ResolvedBooking, error) {
	if err := intent.Validate(in); err != nil {
		return nil, err
	}
	if pilot == nil {
		return nil, &Rejection{Code: RejectUnknownResource, ResourceID: in.PilotID, Message: fmt.Sprintf("pilot %s does not exist", in.PilotID)}
	}
	if drone == nil {
		return nil, &Rejection{Code: RejectUnknownResource, ResourceID: in.DroneID, Message: fmt.Sprintf("drone %s does not exist", in.DroneID)}
	}

	// 1. location
	if !sameLocation(pilot.Location, in.Location) {
		return nil, &Rejection{Code: RejectLocationMismatch, ResourceID: pilot.ID,
			Message: fmt.Sprintf("pilot %s is based in %s, not %s", pilot.Name, pilot.Location, in.Location)}
	}
	if !sameLocation(drone.Location, in.Location) {
		return nil, &Rejection{Code: RejectLocationMismatch, ResourceID: drone.ID,
			Message: fmt.Sprintf("drone %s (%s) is based in %s, not %s", drone.ID, drone.Model, drone.Location, in.Location)}
	}

	// 2. maintenance
	if drone.Grounded() {
		return nil, &Rejection{Code: RejectMaintenance, ResourceID: drone.ID,
			Message: fmt.Sprintf("drone %s (%s) is under maintenance", drone.ID, drone.Model)}
	}

	// 3. availability and overlap
	if err := checkPilot(pilot, in, missions); err != nil {
		return nil, err
	}
	if err := checkDrone(drone, in, missions); err != nil {
		return nil, err
	}

	// 4. cost
	cost, days := Cost(pilot.DailyRate, in.Start, in.End)

	// 5. budget
	if cost > in.Budget {
		return nil, &Rejection{Code: RejectBudget, ResourceID: pilot.ID, Cost: cost, Budget: in.Budget, Shortfall: cost - in.Budget,
			Message: fmt.Sprintf("the mission costs %s but the budget is %s (short by %s)", FormatAmount(cost), FormatAmount(in.Budget), FormatAmount(cost-in.Budget))}
	}
	return &ResolvedBooking{Intent: in, Cost: cost, Days: days}, nil
}

func checkPilot(p *models.Pilot, in models.BookingIntent, missions []models.Mission) error {
	switch p.Status {
	case models.PilotStatusAvailable:
		return nil
	case models.PilotStatusAssigned:
		for i := range missions {
			if missions[i].UsesPilot(p.ID) && missions[i].Overlaps(in.Start, in.End) {
				return &Rejection{Code: RejectOverlap, ResourceID: p.ID, ConflictID: missions[i].ID,
					Message: fmt.Sprintf("pilot %s is already on mission %s from %s to %s", p.Name, missions[i].ID, missions[i].Start, missions[i].End)}
			}
		}
		return nil
	default:
		return &Rejection{Code: RejectUnavailable, ResourceID: p.ID,
			Message: fmt.Sprintf("pilot %s is %s", p.Name, strings.ToLower(string(p.Status)))}
	}
}

func checkDrone(d *models.Drone, in models.BookingIntent, missions []models.Mission) error {
	switch d.Status {
	case models.DroneStatusAvailable:
		return nil
	case models.DroneStatusDeployed:
		for i := range missions {
			if missions[i].UsesDrone(d.ID) && missions[i].Overlaps(in.Start, in.End) {
				return &Rejection{Code: RejectOverlap, ResourceID: d.ID, ConflictID: missions[i].ID,
					Message: fmt.Sprintf("drone %s is already on mission %s from %s to %s", d.ID, missions[i].ID, missions[i].Start, missions[i].End)}
			}
		}
		return nil
	default:
		return &Rejection{Code: RejectUnavailable, ResourceID: d.ID,
			Message: fmt.Sprintf("drone %s is %s", d.ID, strings.ToLower(string(d.Status)))}
	}
}

// sameLocation compares city names ignoring case and surrounding space.
func sameLocation(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// FormatAmount renders an INR amount without trailing decimals for whole values.
func FormatAmount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("INR %.0f", v)
	}
	return fmt.Sprintf("INR %.2f", v)
}
