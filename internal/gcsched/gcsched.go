// Package gcsched runs a chunkstore.Store's garbage collector on a cron
// schedule. It mirrors the orchestrator's cron-driven chunk rotation: one
// gocron.Scheduler, one named job per store, add/remove/update by store
// id.
package gcsched

import (
	"fmt"
	"log/slog"

	"github.com/go-co-op/gocron/v2"

	"chunkstore/internal/chunkstore"
	"chunkstore/internal/logging"
)

// Scheduler manages background cron-triggered GC jobs across any number
// of stores.
type Scheduler struct {
	scheduler gocron.Scheduler
	jobs      map[string]gocron.Job // storeID → job
	logger    *slog.Logger
}

// New returns a Scheduler with no jobs registered yet. Call Start to
// begin executing them.
func New(logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create gc cron scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: s,
		jobs:      make(map[string]gocron.Job),
		logger:    logging.Default(logger).With("component", "gcsched"),
	}, nil
}

// AddJob registers a recurring GC pass for store, identified by storeID,
// on cronExpr (standard five-field cron syntax).
func (s *Scheduler) AddJob(storeID, cronExpr string, store *chunkstore.Store, opts chunkstore.GarbageCollectionOptions) error {
	if _, exists := s.jobs[storeID]; exists {
		return fmt.Errorf("gc cron job already exists for store %s", storeID)
	}

	j, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(s.runGC, storeID, store, opts),
		gocron.WithName(fmt.Sprintf("gc-%s", storeID)),
	)
	if err != nil {
		return fmt.Errorf("create gc cron job for store %s: %w", storeID, err)
	}

	s.jobs[storeID] = j
	s.logger.Info("gc cron job added", "store", storeID, "cron", cronExpr)
	return nil
}

// RemoveJob stops and removes the GC job for storeID, if any.
func (s *Scheduler) RemoveJob(storeID string) {
	j, ok := s.jobs[storeID]
	if !ok {
		return
	}
	if err := s.scheduler.RemoveJob(j.ID()); err != nil {
		s.logger.Warn("failed to remove gc cron job", "store", storeID, "error", err)
	}
	delete(s.jobs, storeID)
	s.logger.Info("gc cron job removed", "store", storeID)
}

// UpdateJob replaces storeID's schedule/options with new ones.
func (s *Scheduler) UpdateJob(storeID, cronExpr string, store *chunkstore.Store, opts chunkstore.GarbageCollectionOptions) error {
	s.RemoveJob(storeID)
	return s.AddJob(storeID, cronExpr, store, opts)
}

// Start begins executing all registered jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
	s.logger.Info("gc cron scheduler started", "jobs", len(s.jobs))
}

// Stop shuts the scheduler down, waiting for any running job to finish.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) runGC(storeID string, store *chunkstore.Store, opts chunkstore.GarbageCollectionOptions) {
	events, delta := store.GarbageCollect(opts)
	if len(events) == 0 {
		s.logger.Debug("gc cron: nothing to collect", "store", storeID)
		return
	}
	s.logger.Info("gc cron: collected",
		"store", storeID,
		"chunks_dropped", len(events),
		"temporal_rows_freed", delta.Temporal.RowCount,
		"temporal_bytes_freed", delta.Temporal.HeapBytes,
	)
}
