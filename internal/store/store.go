// Package store keeps a history of validation runs.
//
// Postgres persists runs and their diagnostics with pgx; Memory keeps the most
// recent runs in process for deployments without a database. Both satisfy
// RunStore.
package store

import "github.com/JonMunkholm/sheetcheck/internal/core"

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = core.ErrRunNotFound

// DefaultListLimit caps ListRuns when the caller passes a non-positive limit.
const DefaultListLimit = 50

// RunStore is satisfied by Postgres and Memory.
type RunStore = core.RunStore

var (
	_ RunStore = (*Postgres)(nil)
	_ RunStore = (*Memory)(nil)
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
