package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/sheetcheck/internal/core"
)

// DBTX is the subset of pgx shared by pools, connections and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// Pool is a DBTX that can open transactions, such as *pgxpool.Pool.
type Pool interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres is a RunStore backed by PostgreSQL.
type Postgres struct {
	pool Pool
}

// NewPostgres creates a store on pool. Call EnsureSchema before first use.
func NewPostgres(pool Pool) *Postgres {
	return &Postgres{pool: pool}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS validation_runs (
		id          uuid PRIMARY KEY,
		source      text NOT NULL,
		valid       boolean NOT NULL,
		phase       text NOT NULL,
		error_count integer NOT NULL,
		duration_ms bigint NOT NULL,
		created_at  timestamptz NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS validation_runs_created_at_idx
		ON validation_runs (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS validation_issues (
		run_id       uuid NOT NULL REFERENCES validation_runs (id) ON DELETE CASCADE,
		seq          integer NOT NULL,
		kind         text NOT NULL,
		table_name   text NOT NULL,
		target_table text,
		row_num      integer,
		column_name  text,
		value        text,
		matches      integer NOT NULL DEFAULT 0,
		missing_code text,
		present_code text,
		message      text,
		PRIMARY KEY (run_id, seq)
	)`,
}

// EnsureSchema creates the history tables if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// issueColumns is the COPY column order; issueValues must match it.
var issueColumns = []string{
	"run_id", "seq", "kind", "table_name", "target_table", "row_num",
	"column_name", "value", "matches", "missing_code", "present_code", "message",
}

// SaveRun inserts the run and copies its diagnostics in one transaction.
func (p *Postgres) SaveRun(ctx context.Context, run core.Run) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO validation_runs (id, source, valid, phase, error_count, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		toPgUUID(run.ID),
		run.Source,
		run.Valid(),
		string(run.Report.Phase),
		len(run.Report.Errors),
		run.Duration.Milliseconds(),
		pgtype.Timestamptz{Time: run.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(run.Report.Errors) > 0 {
		id := toPgUUID(run.ID)
		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"validation_issues"},
			issueColumns,
			pgx.CopyFromSlice(len(run.Report.Errors), func(i int) ([]any, error) {
				return issueValues(id, i, run.Report.Errors[i]), nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy issues: %w", err)
		}
		if int(n) != len(run.Report.Errors) {
			return fmt.Errorf("copy issues: wrote %d of %d rows", n, len(run.Report.Errors))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetRun loads a run and its diagnostics in their original order.
func (p *Postgres) GetRun(ctx context.Context, id uuid.UUID) (core.Run, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, source, valid, phase, error_count, duration_ms, created_at
		FROM validation_runs WHERE id = $1`, toPgUUID(id))

	summary, err := scanSummary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Run{}, ErrRunNotFound
	}
	if err != nil {
		return core.Run{}, fmt.Errorf("get run: %w", err)
	}

	rows, err := p.pool.Query(ctx, `
		SELECT kind, table_name, target_table, row_num, column_name, value,
		       matches, missing_code, present_code, message
		FROM validation_issues WHERE run_id = $1 ORDER BY seq`, toPgUUID(id))
	if err != nil {
		return core.Run{}, fmt.Errorf("get issues: %w", err)
	}
	issues, err := pgx.CollectRows(rows, scanIssue)
	if err != nil {
		return core.Run{}, fmt.Errorf("scan issues: %w", err)
	}

	return core.Run{
		ID:        summary.ID,
		Source:    summary.Source,
		Report:    core.Report{Phase: summary.Phase, Errors: issues},
		Duration:  summary.Duration,
		CreatedAt: summary.CreatedAt,
	}, nil
}

// ListRuns returns up to limit runs, newest first.
func (p *Postgres) ListRuns(ctx context.Context, limit int) ([]core.RunSummary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, source, valid, phase, error_count, duration_ms, created_at
		FROM validation_runs ORDER BY created_at DESC LIMIT $1`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.RunSummary, error) {
		return scanSummary(row)
	})
}

func scanSummary(row pgx.Row) (core.RunSummary, error) {
	var (
		id         pgtype.UUID
		source     string
		valid      bool
		phase      string
		errorCount int32
		durationMS int64
		createdAt  pgtype.Timestamptz
	)
	if err := row.Scan(&id, &source, &valid, &phase, &errorCount, &durationMS, &createdAt); err != nil {
		return core.RunSummary{}, err
	}
	return core.RunSummary{
		ID:         uuid.UUID(id.Bytes),
		Source:     source,
		Valid:      valid,
		Phase:      core.Phase(phase),
		ErrorCount: int(errorCount),
		Duration:   time.Duration(durationMS) * time.Millisecond,
		CreatedAt:  createdAt.Time,
	}, nil
}

func scanIssue(row pgx.CollectableRow) (core.ValidationError, error) {
	var (
		kind        string
		table       string
		targetTable pgtype.Text
		rowNum      pgtype.Int4
		column      pgtype.Text
		value       pgtype.Text
		matches     int32
		missingCode pgtype.Text
		presentCode pgtype.Text
		message     pgtype.Text
	)
	err := row.Scan(&kind, &table, &targetTable, &rowNum, &column, &value,
		&matches, &missingCode, &presentCode, &message)
	if err != nil {
		return core.ValidationError{}, err
	}
	return issueFromColumns(kind, table, targetTable, rowNum, column, value,
		matches, missingCode, presentCode, message), nil
}
