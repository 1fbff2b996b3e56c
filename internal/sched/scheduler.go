// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sched runs the pipeline on a fixed interval.
package sched

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/pdiddy/weather-pipeline/internal/pipeline"
)

// Scheduler triggers pipeline runs on a fixed interval. An interval tick
// that arrives while a run is still executing is skipped, not queued.
type Scheduler struct {
	scheduler *gocron.Scheduler
	orch      *pipeline.Orchestrator
	interval  time.Duration
	w         io.Writer
}

// New creates a Scheduler driving orch every interval. Progress and skip
// notices are written to w.
func New(orch *pipeline.Orchestrator, interval time.Duration, w io.Writer) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if w == nil {
		w = io.Discard
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		orch:      orch,
		interval:  interval,
		w:         w,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		fmt.Fprintf(s.w, "scheduled run starting (interval %s)\n", s.interval)

		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()

		if err := s.orch.Execute(ctx, nil); err != nil {
			if errors.Is(err, pipeline.ErrRunInProgress) {
				fmt.Fprintln(s.w, "scheduled run skipped: previous run still in progress")
				return
			}
			fmt.Fprintf(s.w, "scheduled run failed: %v\n", err)
			return
		}
		fmt.Fprintln(s.w, "scheduled run completed")
	})
	if err != nil {
		return fmt.Errorf("scheduling pipeline job: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
