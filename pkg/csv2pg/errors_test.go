package csv2pg_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, csv2pg.ExitSuccess},
		{"invalid config", csv2pg.ErrInvalidConfig, csv2pg.ExitConfigError},
		{"wrapped invalid config", fmt.Errorf("chunk size: %w", csv2pg.ErrInvalidConfig), csv2pg.ExitConfigError},
		{"csv not found", csv2pg.ErrCSVNotFound, csv2pg.ExitCSVError},
		{"empty csv", csv2pg.ErrEmptyCSV, csv2pg.ExitCSVError},
		{"no columns", csv2pg.ErrNoColumns, csv2pg.ExitInferenceFailed},
		{"provider unavailable", csv2pg.ErrProviderUnavailable, csv2pg.ExitInferenceFailed},
		{"output exists", csv2pg.ErrOutputExists, csv2pg.ExitGenerationFailed},
		{"state not found", csv2pg.ErrStateNotFound, csv2pg.ExitStateError},
		{"checksum mismatch", csv2pg.ErrChecksumMismatch, csv2pg.ExitStateError},
		{"os flavored message", errors.New("open data.csv: no such file or directory"), csv2pg.ExitCSVError},
		{"unclassified", errors.New("boom"), csv2pg.ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := csv2pg.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
