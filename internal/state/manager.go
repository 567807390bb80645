package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vvka-141/csv2pg/internal/checksum"
	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

// Manager persists and restores import state at a fixed file path.
type Manager struct {
	stateFile string
	checksums checksum.Calculator
	logger    csv2pg.Logger
}

// NewManager creates a state manager writing to stateFile.
func NewManager(stateFile string, checksums checksum.Calculator, logger csv2pg.Logger) *Manager {
	return &Manager{
		stateFile: stateFile,
		checksums: checksums,
		logger:    logger,
	}
}

// Path returns the state file location.
func (m *Manager) Path() string {
	return m.stateFile
}

// Save atomically writes the state as JSON: a temp file in the same
// directory followed by a rename, so a crash never leaves a torn file.
func (m *Manager) Save(state *ImportState) error {
	dir := filepath.Dir(m.stateFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close state file: %w", err)
	}

	if err := os.Rename(tmpPath, m.stateFile); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename state file: %w", err)
	}

	m.logger.Verbose("saved state to %s", m.stateFile)
	return nil
}

// Load reads and decodes the state file.
func (m *Manager) Load() (*ImportState, error) {
	data, err := os.ReadFile(m.stateFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", csv2pg.ErrStateNotFound, m.stateFile)
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state ImportState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("invalid state file %s: %w", m.stateFile, err)
	}

	m.logger.Verbose("loaded state from %s", m.stateFile)
	return &state, nil
}

// CanResume decides whether a saved state may continue against csvPath.
// The returned reason is human-readable either way.
func (m *Manager) CanResume(state *ImportState, csvPath string) (bool, string) {
	if state.Status == StatusCompleted {
		return false, "import already completed"
	}

	if state.CSVPath != csvPath {
		return false, fmt.Sprintf("CSV path mismatch: %s != %s", state.CSVPath, csvPath)
	}

	current, err := m.checksums.CalculateFile(csvPath)
	if err != nil {
		return false, fmt.Sprintf("failed to verify CSV: %v", err)
	}
	if !checksum.Matches(current, state.CSVChecksum) {
		return false, "CSV file has changed (checksum mismatch)"
	}

	switch state.Status {
	case StatusFailed:
		return true, fmt.Sprintf("can resume from failed state (phase: %s)", state.Phase)
	case StatusInProgress, StatusPending:
		return true, fmt.Sprintf("can resume from %s state (phase: %s)", state.Status, state.Phase)
	}

	return false, fmt.Sprintf("unknown state: %s", state.Status)
}

// CreateInitial builds the starting state for a new import, checksumming
// the source file.
func (m *Manager) CreateInitial(csvPath, tableName string) (*ImportState, error) {
	sum, err := m.checksums.CalculateFile(csvPath)
	if err != nil {
		return nil, err
	}

	state := &ImportState{
		Version:     currentVersion,
		CSVPath:     csvPath,
		CSVChecksum: sum,
		TableName:   tableName,
		Status:      StatusPending,
		Phase:       PhaseSampling,
	}
	state.stamp("started")
	return state, nil
}

// MarkPhaseComplete updates the state's phase and persists it.
func (m *Manager) MarkPhaseComplete(state *ImportState, phase Phase) error {
	state.MarkPhase(phase)
	return m.Save(state)
}

// MarkFailed records a failure and persists it.
func (m *Manager) MarkFailed(state *ImportState, errMsg string) error {
	state.MarkFailed(errMsg)
	return m.Save(state)
}

// MarkCompleted records success and persists it.
func (m *Manager) MarkCompleted(state *ImportState) error {
	state.MarkCompleted()
	return m.Save(state)
}
