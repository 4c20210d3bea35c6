package cron

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper drops expired in-memory entries.
type Sweeper interface {
	Sweep(now time.Time) int
}

// RevocationPurger drops revoked tokens past their expiry.
type RevocationPurger interface {
	PurgeRevoked(now time.Time) int
}

// HousekeepingJobs keeps the in-memory scan cooldowns, device rate limiters
// and token revocation list from growing without bound.
type HousekeepingJobs struct {
	scans   Sweeper // nil when scans are debounced in Redis
	devices Sweeper
	tokens  RevocationPurger
	now     func() time.Time
}

func NewHousekeepingJobs(scans, devices Sweeper, tokens RevocationPurger) *HousekeepingJobs {
	return &HousekeepingJobs{
		scans:   scans,
		devices: devices,
		tokens:  tokens,
		now:     time.Now,
	}
}

func (j *HousekeepingJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	if j.scans != nil {
		scheduler.AddJob("sweep_scan_cooldowns", interval, j.SweepScanCooldowns)
	}
	if j.devices != nil {
		scheduler.AddJob("sweep_device_limiters", interval, j.SweepDeviceLimiters)
	}
	scheduler.AddJob("purge_revoked_tokens", interval, j.PurgeRevokedTokens)
}

func (j *HousekeepingJobs) SweepScanCooldowns(ctx context.Context) error {
	if n := j.scans.Sweep(j.now()); n > 0 {
		slog.Debug("Cron: swept scan cooldowns", "count", n)
	}
	return nil
}

func (j *HousekeepingJobs) SweepDeviceLimiters(ctx context.Context) error {
	if n := j.devices.Sweep(j.now()); n > 0 {
		slog.Debug("Cron: swept idle device limiters", "count", n)
	}
	return nil
}

func (j *HousekeepingJobs) PurgeRevokedTokens(ctx context.Context) error {
	if n := j.tokens.PurgeRevoked(j.now()); n > 0 {
		slog.Info("Cron: purged revoked tokens", "count", n)
	}
	return nil
}
