// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the extract, transform, and load phases and
// owns the run-state machine.
package pipeline

import (
	"errors"
	"sync"
	"time"

	"github.com/pdiddy/weather-pipeline/pkg/types"
)

var (
	// ErrRunInProgress is returned when a start is rejected because a run
	// is already Running.
	ErrRunInProgress = errors.New("a pipeline run is already in progress")

	// ErrNotResettable is returned when Reset is called on a run that is
	// not in the Failed state.
	ErrNotResettable = errors.New("only a failed run can be reset")

	// ErrEmptyBatch marks a run that produced no records in a phase.
	ErrEmptyBatch = errors.New("empty batch")

	// ErrSinkWrite marks a run whose load phase failed.
	ErrSinkWrite = errors.New("sink write failed")
)

// State is the single current-run status record. It has exactly one writer,
// the orchestrator; everyone else reads immutable snapshots. The status
// check in begin doubles as the system-wide re-entrancy guard.
type State struct {
	mu          sync.Mutex
	id          string
	status      types.RunStatus
	cities      []string
	message     string
	startedAt   time.Time
	completedAt time.Time
	recordCount int
}

// NewState returns an Idle state.
func NewState() *State {
	return &State{
		status:  types.StatusIdle,
		message: "pipeline not yet run",
	}
}

// begin transitions to Running, rejecting the start atomically if a run is
// already in progress.
func (s *State) begin(id string, cities []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == types.StatusRunning {
		return ErrRunInProgress
	}
	s.id = id
	s.status = types.StatusRunning
	s.cities = append([]string(nil), cities...)
	s.message = "pipeline is running"
	s.startedAt = time.Now().UTC()
	s.completedAt = time.Time{}
	s.recordCount = 0
	return nil
}

func (s *State) succeed(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = types.StatusSuccess
	s.message = "pipeline completed successfully"
	s.completedAt = time.Now().UTC()
	s.recordCount = count
}

func (s *State) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = types.StatusFailed
	s.message = msg
	s.completedAt = time.Now().UTC()
}

// Reset returns a Failed run to Idle so a new run can be accepted.
func (s *State) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != types.StatusFailed {
		return ErrNotResettable
	}
	s.status = types.StatusIdle
	s.message = "pipeline reset"
	return nil
}

// Snapshot returns an immutable copy of the current state for monitoring
// readers. The live state is never handed out.
func (s *State) Snapshot() types.RunSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return types.RunSnapshot{
		ID:          s.id,
		Status:      s.status,
		Cities:      append([]string(nil), s.cities...),
		Message:     s.message,
		StartedAt:   s.startedAt,
		CompletedAt: s.completedAt,
		RecordCount: s.recordCount,
	}
}
