package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Run records one validation of one workbook.
type Run struct {
	ID        uuid.UUID     `json:"id"`
	Source    string        `json:"source"` // File name or directory the workbook came from
	Report    Report        `json:"report"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}

// NewRun stamps a report with a fresh ID and creation time.
func NewRun(source string, report Report, duration time.Duration) Run {
	return Run{
		ID:        uuid.New(),
		Source:    source,
		Report:    report,
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}
}

// Valid reports whether the run found no diagnostics.
func (r Run) Valid() bool {
	return r.Report.Valid()
}

// RunSummary is a run without its diagnostics.
type RunSummary struct {
	ID         uuid.UUID     `json:"id"`
	Source     string        `json:"source"`
	Valid      bool          `json:"valid"`
	Phase      Phase         `json:"phase"`
	ErrorCount int           `json:"errorCount"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// Summary drops the diagnostics from r.
func (r Run) Summary() RunSummary {
	return RunSummary{
		ID:         r.ID,
		Source:     r.Source,
		Valid:      r.Valid(),
		Phase:      r.Report.Phase,
		ErrorCount: len(r.Report.Errors),
		Duration:   r.Duration,
		CreatedAt:  r.CreatedAt,
	}
}
