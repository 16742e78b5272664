package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetcheck/internal/logging"
	"github.com/JonMunkholm/sheetcheck/internal/schema"
)

// RunStore records and retrieves validation runs.
type RunStore interface {
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id uuid.UUID) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

// Service validates workbooks on behalf of long-running callers. It bounds
// concurrent validations and records every completed run.
type Service struct {
	validator *Validator
	limiter   *Limiter
	runs      RunStore
}

// NewService creates a Service. With a nil runs store nothing is recorded and
// every lookup fails with ErrRunNotFound.
func NewService(validator *Validator, limiter *Limiter, runs RunStore) *Service {
	if limiter == nil {
		limiter = NewLimiter(DefaultMaxConcurrent, DefaultMaxWaitTime)
	}
	return &Service{
		validator: validator,
		limiter:   limiter,
		runs:      runs,
	}
}

// Schema returns the table model the service validates against.
func (s *Service) Schema() schema.Schema {
	return s.validator.Schema()
}

// Validate checks ss and records the outcome under source. It waits for a
// validation slot first and returns ErrTooManyValidations when none frees up
// in time. A failure to record the run is logged but does not fail the call.
func (s *Service) Validate(ctx context.Context, source string, ss Spreadsheet) (Run, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return Run{}, err
	}
	defer s.limiter.Release()

	start := time.Now()
	report, err := s.validator.Check(ss)
	if err != nil {
		return Run{}, fmt.Errorf("validate %s: %w", source, err)
	}
	run := NewRun(source, report, time.Since(start))

	log := logging.WithFields(ctx, "run_id", run.ID, "source", source)
	log.Info("workbook validated",
		"valid", run.Valid(),
		"phase", report.Phase,
		"errors", len(report.Errors),
		"duration_ms", run.Duration.Milliseconds(),
	)

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run); err != nil {
			log.Warn("failed to record validation run", "error", err)
		}
	}
	return run, nil
}

// GetRun returns a recorded run.
func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	if s.runs == nil {
		return Run{}, ErrRunNotFound
	}
	return s.runs.GetRun(ctx, id)
}

// ListRuns returns up to limit recorded runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if s.runs == nil {
		return []RunSummary{}, nil
	}
	return s.runs.ListRuns(ctx, limit)
}

// LimiterStatus reports current validation concurrency.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForValidations blocks until in-flight validations finish or ctx ends.
func (s *Service) WaitForValidations(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
