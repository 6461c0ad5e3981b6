package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// StorageHealth pings the storage backend and logs state changes, so an
// outage shows up in the logs before the first punch fails.
type StorageHealth struct {
	pinger  Pinger
	healthy atomic.Bool
}

func NewStorageHealth(pinger Pinger) *StorageHealth {
	h := &StorageHealth{pinger: pinger}
	h.healthy.Store(true)
	return h
}

// Healthy reports the result of the last check.
func (h *StorageHealth) Healthy() bool {
	return h.healthy.Load()
}

func (h *StorageHealth) Check(ctx context.Context) error {
	err := h.pinger.Ping(ctx)
	was := h.healthy.Swap(err == nil)
	switch {
	case err != nil && was:
		slog.Warn("Storage became unreachable", "error", err)
	case err == nil && !was:
		slog.Info("Storage reachable again")
	}
	if err != nil {
		return fmt.Errorf("storage ping failed: %w", err)
	}
	return nil
}

func (h *StorageHealth) Job(interval time.Duration) Job {
	return Job{
		Name:     "storage-health",
		Interval: interval,
		Timeout:  5 * time.Second,
		Fn:       h.Check,
	}
}
