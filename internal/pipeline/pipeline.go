// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/pdiddy/weather-pipeline/internal/extract"
	"github.com/pdiddy/weather-pipeline/internal/load"
	"github.com/pdiddy/weather-pipeline/internal/transform"
	"github.com/pdiddy/weather-pipeline/pkg/types"
)

// Orchestrator runs the Extract -> Normalize -> Derive -> Load sequence and
// records the outcome in its State. Phases are never retried here; retries
// live inside the extractor at single-request granularity.
type Orchestrator struct {
	cfg   types.PipelineConfig
	state *State
	w     io.Writer
}

// New creates an Orchestrator writing phase progress to w.
func New(cfg types.PipelineConfig, w io.Writer) *Orchestrator {
	return &Orchestrator{
		cfg:   cfg,
		state: NewState(),
		w:     w,
	}
}

// Status returns an immutable snapshot of the current run.
func (o *Orchestrator) Status() types.RunSnapshot {
	return o.state.Snapshot()
}

// Reset returns a Failed run to Idle.
func (o *Orchestrator) Reset() error {
	return o.state.Reset()
}

// Execute runs one full pipeline pass over cities (the configured list when
// empty). It returns ErrRunInProgress without starting when a run is already
// Running. Any terminal outcome, success or failure, is recorded in the
// state before Execute returns.
func (o *Orchestrator) Execute(ctx context.Context, cities []string) (err error) {
	if len(cities) == 0 {
		cities = o.cfg.Cities
	}

	if err := o.state.begin(uuid.NewString(), cities); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected pipeline error: %v", r)
		}
		if err != nil {
			o.state.fail(err.Error())
		}
	}()

	extractor := extract.New(o.cfg.Extract)
	defer extractor.Close()

	fmt.Fprintf(o.w, "phase 1: extraction (%d cities)\n", len(cities))
	batch := extractor.FetchMany(ctx, cities, o.w)
	if len(batch.Observations) == 0 {
		return fmt.Errorf("%w: no data extracted", ErrEmptyBatch)
	}

	fmt.Fprintf(o.w, "phase 2: transformation (%d raw records)\n", len(batch.Observations))
	result := transform.Normalize(batch.Observations, o.w)
	if len(result.Records) == 0 {
		return fmt.Errorf("%w: no records after transformation", ErrEmptyBatch)
	}
	records := transform.DeriveFeatures(result.Records)

	fmt.Fprintf(o.w, "phase 3: loading (%d records, sink %s)\n", len(records), o.cfg.Storage.Sink)
	loader := load.New(o.cfg.Storage, o.w)
	if err := loader.Write(records); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkWrite, err)
	}

	o.state.succeed(len(records))
	fmt.Fprintf(o.w, "pipeline completed: %d record(s) persisted\n", len(records))
	return nil
}
