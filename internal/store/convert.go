package store

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/sheetcheck/internal/core"
)

// toPgText maps "" to NULL.
func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// toPgRow maps row 0, used by table-level diagnostics, to NULL.
func toPgRow(n int) pgtype.Int4 {
	if n <= 0 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func fromPgText(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func issueValues(runID pgtype.UUID, seq int, e core.ValidationError) []any {
	return []any{
		runID,
		int32(seq),
		string(e.Kind),
		e.Table,
		toPgText(e.TargetTable),
		toPgRow(e.Row),
		toPgText(e.Column),
		toPgText(e.Value),
		int32(e.Matches),
		toPgText(e.MissingCode),
		toPgText(e.PresentCode),
		toPgText(e.Message),
	}
}

func issueFromColumns(
	kind, table string,
	targetTable pgtype.Text,
	rowNum pgtype.Int4,
	column, value pgtype.Text,
	matches int32,
	missingCode, presentCode, message pgtype.Text,
) core.ValidationError {
	e := core.ValidationError{
		Kind:        core.ErrorKind(kind),
		Table:       table,
		TargetTable: fromPgText(targetTable),
		Column:      fromPgText(column),
		Value:       fromPgText(value),
		Matches:     int(matches),
		MissingCode: fromPgText(missingCode),
		PresentCode: fromPgText(presentCode),
		Message:     fromPgText(message),
	}
	if rowNum.Valid {
		e.Row = int(rowNum.Int32)
	}
	return e
}
