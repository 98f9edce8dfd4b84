package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"droneOpsBooking/models"
)

// Released lists the resources returned to Available by one sweep.
type Released struct {
	Pilots []string `json:"pilots"`
	Drones []string `json:"drones"`
}

// Empty reports whether the sweep released nothing.
func (r Released) Empty() bool { return len(r.Pilots) == 0 && len(r.Drones) == 0 }

// Release returns Assigned pilots and Deployed drones to Available once none
// of their missions ends on or after today. A mission therefore holds its
// resources through its end date. On Leave and Maintenance are never changed.
func (e *Engine) Release(ctx context.Context, today models.Date) (Released, error) {
	var out Released
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, err := e.snapshotLocked(ctx)
	if err != nil {
		return out, err
	}
	pilotBusy := map[string]bool{}
	droneBusy := map[string]bool{}
	for _, m := range snap.Missions {
		if m.End.Before(today.Time) {
			continue
		}
		if m.PilotID != nil {
			pilotBusy[*m.PilotID] = true
		}
		if m.DroneID != nil {
			droneBusy[*m.DroneID] = true
		}
	}
	for _, p := range snap.Pilots {
		if p.Status != models.PilotStatusAssigned || pilotBusy[p.ID] {
			continue
		}
		if err := e.store.SetPilotStatus(ctx, p.ID, models.PilotStatusAvailable); err != nil {
			return out, fmt.Errorf("release pilot %s: %w", p.ID, err)
		}
		out.Pilots = append(out.Pilots, p.ID)
	}
	for _, d := range snap.Drones {
		if d.Status != models.DroneStatusDeployed || droneBusy[d.ID] {
			continue
		}
		if err := e.store.SetDroneStatus(ctx, d.ID, models.DroneStatusAvailable); err != nil {
			return out, fmt.Errorf("release drone %s: %w", d.ID, err)
		}
		out.Drones = append(out.Drones, d.ID)
	}
	if !out.Empty() {
		e.log.Info("released resources", zap.String("today", today.String()),
			zap.Strings("pilots", out.Pilots), zap.Strings("drones", out.Drones))
	}
	return out, nil
}

// RunReleaser sweeps every interval until ctx is done.
func (e *Engine) RunReleaser(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if _, err := e.Release(ctx, e.Today()); err != nil && ctx.Err() == nil {
			e.log.Error("release sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
