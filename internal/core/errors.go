package core

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrMissingTable is returned when the spreadsheet lacks one of the tables
// the schema defines.
var ErrMissingTable = errors.New("spreadsheet is missing table")

// ContractError reports a row that does not expose a column a rule reads
// directly. It means the loader broke the input contract.
type ContractError struct {
	Table  string
	Row    int
	Column string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s row %d has no %s column", e.Table, e.Row, e.Column)
}

// ErrorKind tags the variant of a ValidationError.
type ErrorKind string

const (
	KindHeader        ErrorKind = "header"
	KindMissingValue  ErrorKind = "missing_value"
	KindDuplicateCode ErrorKind = "duplicate_code"
	KindCrossSheet    ErrorKind = "cross_sheet_dependency"
	KindConnection    ErrorKind = "connection_dependency"
)

// Kinds lists every ErrorKind in reporting order.
var Kinds = []ErrorKind{
	KindHeader,
	KindMissingValue,
	KindDuplicateCode,
	KindCrossSheet,
	KindConnection,
}

// ValidationError is a single diagnostic found in a spreadsheet.
// Which fields are set depends on Kind:
//
//	header:                 Table, Column, Message
//	missing_value:          Table, Row, Column, Message
//	duplicate_code:         Table, Value, Message
//	cross_sheet_dependency: Table, TargetTable, Row, Column, Value, Matches
//	connection_dependency:  Table, Row, MissingCode, PresentCode
//
// Values are created by the rule-checkers and never modified afterwards.
type ValidationError struct {
	Kind        ErrorKind `json:"kind"`
	Table       string    `json:"table"`
	TargetTable string    `json:"targetTable,omitempty"`
	Row         int       `json:"row,omitempty"`
	Column      string    `json:"column,omitempty"`
	Value       string    `json:"value,omitempty"`
	Matches     int       `json:"matches,omitempty"`
	MissingCode string    `json:"missingCode,omitempty"`
	PresentCode string    `json:"presentCode,omitempty"`
	Message     string    `json:"message,omitempty"`
}

// NewHeaderError reports a column header absent from every row of a table.
func NewHeaderError(table, header string) ValidationError {
	return ValidationError{
		Kind:    KindHeader,
		Table:   table,
		Column:  header,
		Message: fmt.Sprintf("%s missing required column header: %s", table, header),
	}
}

// NewMissingValueError reports an empty cell that must be populated.
func NewMissingValueError(table string, row int, column, message string) ValidationError {
	return ValidationError{
		Kind:    KindMissingValue,
		Table:   table,
		Row:     row,
		Column:  column,
		Message: message,
	}
}

// NewDuplicateCodeError reports a code defined more than once in table.
func NewDuplicateCodeError(table, code string) ValidationError {
	return ValidationError{
		Kind:    KindDuplicateCode,
		Table:   table,
		Value:   code,
		Message: fmt.Sprintf("Entity Code: %s is defined more than once in %s table.", code, table),
	}
}

// NewCrossSheetError reports a cell in source that does not resolve to
// exactly one row of target. matches is the number of rows that did match.
func NewCrossSheetError(source, target string, row int, column, value string, matches int) ValidationError {
	return ValidationError{
		Kind:        KindCrossSheet,
		Table:       source,
		TargetTable: target,
		Row:         row,
		Column:      column,
		Value:       value,
		Matches:     matches,
	}
}

// NewConnectionError reports a connection endpoint that is neither an entity
// nor a site. present is the code on the other end of the connection.
func NewConnectionError(table string, row int, missing, present string) ValidationError {
	return ValidationError{
		Kind:        KindConnection,
		Table:       table,
		Row:         row,
		MissingCode: missing,
		PresentCode: present,
	}
}

// Describe renders the diagnostic as one human-readable line.
func (e ValidationError) Describe() string {
	switch e.Kind {
	case KindHeader, KindDuplicateCode:
		return e.Message
	case KindMissingValue:
		return fmt.Sprintf("%s (table: %s, row: %d, column: %s)", e.Message, e.Table, e.Row, e.Column)
	case KindCrossSheet:
		if e.Matches > 1 {
			return fmt.Sprintf("%s row %d: %s %q matches %d rows in %s, expected exactly 1",
				e.Table, e.Row, e.Column, e.Value, e.Matches, e.TargetTable)
		}
		return fmt.Sprintf("%s row %d: %s %q has no matching row in %s",
			e.Table, e.Row, e.Column, e.Value, e.TargetTable)
	case KindConnection:
		return fmt.Sprintf("%s row %d: code %q is not defined in Entities or Sites (connected to %q)",
			e.Table, e.Row, e.MissingCode, e.PresentCode)
	default:
		return e.Message
	}
}

// Error implements error so a diagnostic can be wrapped or logged like one.
func (e ValidationError) Error() string {
	return e.Describe()
}

// Code returns the support code for the diagnostic's kind.
func (e ValidationError) Code() string {
	return kindMessages[e.Kind].Code
}

// Level is the log level a diagnostic is reported at.
func (e ValidationError) Level() slog.Level {
	return slog.LevelError
}
