package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"droneOpsBooking/internal/intent"
	"droneOpsBooking/models"
)

const promptRules = `You are Skylark, an advanced drone operations assistant.

Role: help users book drone missions and answer availability questions.

Booking rules:
1. A booking needs a location, start date, end date, drone preference and budget (INR).
2. The pilot and the drone must both be in the requested location.
3. A pilot or drone is bookable when its status is 'Available', or 'Assigned'/'Deployed' if the dates do not overlap any of its missions.
4. A drone in maintenance can never be booked.
5. Cost is the pilot's daily rate times the number of days, counting both the start and the end day.
6. If the cost exceeds the budget, tell the user and do not book.

Instructions:
- Be conversational and helpful.
- If details are missing, ask for them politely.
- When the user confirms a booking and every rule passes, end your reply with the action block below and nothing after it.

Action format:
%s
{
  "location": "...",
  "start": "YYYY-MM-DD",
  "end": "YYYY-MM-DD",
  "assigned_pilot_id": "...",
  "assigned_drone_id": "...",
  "budget": 0,
  "cost": 0
}
`

// SystemPrompt renders the instruction sent with every exchange.
func SystemPrompt(cat Catalog, today models.Date) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, promptRules, intent.Delimiter)
	b.WriteString("\nCurrent database state:\n")
	for _, sec := range []struct {
		label string
		v     any
	}{
		{"Pilots", nonNil(cat.Pilots)},
		{"Drones", nonNil(cat.Drones)},
		{"Missions", nonNil(cat.Missions)},
	} {
		raw, err := json.Marshal(sec.v)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", strings.ToLower(sec.label), err)
		}
		fmt.Fprintf(&b, "- %s: %s\n", sec.label, raw)
	}
	fmt.Fprintf(&b, "\nToday is %s.\n", today)
	return b.String(), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
