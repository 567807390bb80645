// Package state persists the progress of an import run so interrupted or
// failed imports can be resumed against an unchanged source file.
package state

import (
	"time"
)

// Phase identifies how far an import has progressed.
type Phase string

const (
	PhaseSampling   Phase = "sampling"
	PhaseSampled    Phase = "sampled"
	PhaseInferring  Phase = "inferring"
	PhaseInferred   Phase = "inferred"
	PhaseGenerating Phase = "generating"
	PhaseGenerated  Phase = "generated"
	PhaseImporting  Phase = "importing"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// Status is the overall outcome of an import run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ImportState is the persisted record of one import operation.
type ImportState struct {
	Version     string               `json:"version"`
	CSVPath     string               `json:"csv_path"`
	CSVChecksum string               `json:"csv_checksum"`
	TableName   string               `json:"table_name"`
	Status      Status               `json:"status"`
	Phase       Phase                `json:"phase"`
	Timestamps  map[string]time.Time `json:"timestamps"`
	Progress    map[string]any       `json:"progress,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// currentVersion is written into new state files.
const currentVersion = "1.0"

// MarkPhase records a completed phase with its timestamp.
func (s *ImportState) MarkPhase(phase Phase) {
	s.Phase = phase
	s.Status = StatusInProgress
	s.stamp(string(phase))
}

// MarkFailed records a terminal failure with the error message.
func (s *ImportState) MarkFailed(errMsg string) {
	s.Status = StatusFailed
	s.Phase = PhaseFailed
	s.Error = errMsg
	s.stamp("failed")
}

// MarkCompleted records a successful terminal state.
func (s *ImportState) MarkCompleted() {
	s.Status = StatusCompleted
	s.Phase = PhaseCompleted
	s.Error = ""
	s.stamp("completed")
}

func (s *ImportState) stamp(key string) {
	if s.Timestamps == nil {
		s.Timestamps = make(map[string]time.Time)
	}
	s.Timestamps[key] = time.Now().UTC()
}
