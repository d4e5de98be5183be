// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the background maintenance jobs: removing product
// images no row references and pruning old audit events.
package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/service"
	"github.com/olegiv/minishop-go/internal/storage"
	"github.com/olegiv/minishop-go/internal/store"
)

// jobTimeout bounds a single job run.
const jobTimeout = 5 * time.Minute

// Config selects the job schedules. An empty spec disables that job.
type Config struct {
	// OrphanSweepSpec is the cron spec of the orphaned image sweep.
	OrphanSweepSpec string
	// OrphanGrace protects recently written files, which may belong to a
	// product write that has not committed yet.
	OrphanGrace time.Duration
	// EventPruneSpec is the cron spec of the event retention job.
	EventPruneSpec string
	// EventRetention is how long events are kept. Zero keeps them forever.
	EventRetention time.Duration
}

// Scheduler handles the periodic jobs.
type Scheduler struct {
	queries *store.Queries
	files   storage.Store
	events  *service.EventService
	cron    *cron.Cron
	logger  *slog.Logger
	cfg     Config
	now     func() time.Time
}

// New creates a new scheduler instance.
func New(db *sql.DB, files storage.Store, logger *slog.Logger, cfg Config) *Scheduler {
	return &Scheduler{
		queries: store.New(db),
		files:   files,
		events:  service.NewEventService(db),
		cron:    cron.New(),
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// ValidateSpec reports whether spec is a cron expression the scheduler
// accepts. The empty spec is valid and disables the job.
func ValidateSpec(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// Start registers the enabled jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.cfg.OrphanSweepSpec != "" {
		if _, err := s.cron.AddFunc(s.cfg.OrphanSweepSpec, s.runJob("orphan image sweep", s.sweep)); err != nil {
			return fmt.Errorf("scheduling orphan sweep: %w", err)
		}
	}
	if s.cfg.EventPruneSpec != "" && s.cfg.EventRetention > 0 {
		if _, err := s.cron.AddFunc(s.cfg.EventPruneSpec, s.runJob("event pruning", s.PruneEvents)); err != nil {
			return fmt.Errorf("scheduling event pruning: %w", err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runJob(name string, job func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := s.now()
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
			return
		}
		s.logger.Debug("scheduled job finished", "job", name, "took", time.Since(start))
	}
}

func (s *Scheduler) sweep(ctx context.Context) error {
	_, err := s.SweepOrphanImages(ctx)
	return err
}

// SweepOrphanImages deletes files in the product image namespace that no
// product references and that are older than the grace period. It returns
// the deleted keys.
func (s *Scheduler) SweepOrphanImages(ctx context.Context) ([]string, error) {
	paths, err := s.queries.ListProductImagePaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing referenced images: %w", err)
	}
	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p.Valid {
			referenced[p.String] = struct{}{}
		}
	}

	objects, err := s.files.List(ctx, model.ProductImageNamespace)
	if err != nil {
		return nil, fmt.Errorf("listing stored images: %w", err)
	}

	cutoff := s.now().Add(-s.cfg.OrphanGrace)
	var deleted []string
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}
		if err := s.files.Delete(ctx, obj.Key); err != nil && !errors.Is(err, storage.ErrNotExist) {
			s.logger.Warn("failed to delete orphaned image", "key", obj.Key, "error", err)
			continue
		}
		deleted = append(deleted, obj.Key)
	}

	if len(deleted) > 0 {
		s.logger.Info("removed orphaned images", "count", len(deleted))
		_ = s.events.LogStorageEvent(ctx, model.EventLevelInfo, "Orphaned images removed", nil, "", "", map[string]any{
			"count": len(deleted),
			"keys":  deleted,
		})
	}
	return deleted, nil
}

// PruneEvents deletes events older than the retention period.
func (s *Scheduler) PruneEvents(ctx context.Context) error {
	if s.cfg.EventRetention <= 0 {
		return nil
	}
	if err := s.events.DeleteOldEvents(ctx, s.cfg.EventRetention); err != nil {
		return fmt.Errorf("pruning events: %w", err)
	}
	return nil
}
