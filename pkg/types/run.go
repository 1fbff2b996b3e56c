// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	StatusIdle    RunStatus = "idle"
	StatusRunning RunStatus = "running"
	StatusSuccess RunStatus = "success"
	StatusFailed  RunStatus = "failed"
)

// RunSnapshot is an immutable copy of the current run state handed to
// monitoring readers. The live state is owned by the orchestrator and is
// never shared directly.
type RunSnapshot struct {
	ID          string    `json:"id,omitempty"`
	Status      RunStatus `json:"status"`
	Cities      []string  `json:"cities,omitempty"`
	Message     string    `json:"message"`
	StartedAt   time.Time `json:"started_at,omitzero"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
	RecordCount int       `json:"record_count"`
}
