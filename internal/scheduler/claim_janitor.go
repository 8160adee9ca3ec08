// Package scheduler runs the periodic background maintenance of the portal.
package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/catalog"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
)

// ClaimJanitor periodically prunes claim records whose cooldown has fully
// elapsed. Expired records are semantically identical to absent ones, so the
// prune only keeps the snapshot from growing with one entry per visitor who
// ever claimed.
type ClaimJanitor struct {
	catalog  *catalog.Service
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewClaimJanitor(svc *catalog.Service, log logger.Logger, interval time.Duration) *ClaimJanitor {
	return &ClaimJanitor{
		catalog:  svc,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one immediate sweep, then sweeps every interval until Stop or
// context cancellation.
func (j *ClaimJanitor) Start(ctx context.Context) error {
	if err := j.sweep(ctx); err != nil {
		j.logger.Warn("initial claim prune failed", logger.Error(err))
	}

	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := j.sweep(ctx); err != nil {
					j.logger.Error("claim prune failed", logger.Error(err))
				}
			case <-j.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the janitor.
func (j *ClaimJanitor) Stop() {
	close(j.stopCh)
}

func (j *ClaimJanitor) sweep(ctx context.Context) error {
	removed, err := j.catalog.PruneExpiredClaims(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		j.logger.Info("pruned expired claim records", logger.Int("removed", removed))
	} else {
		j.logger.Debug("no expired claim records to prune")
	}
	return nil
}
