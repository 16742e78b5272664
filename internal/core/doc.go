// Package core provides the consistency checks for building workbooks.
//
// This package is the heart of the validator, containing all rule logic
// independent of any file format, UI or transport layer. It can be used by
// web handlers, CLI tools, or tests without modification.
//
// # Input
//
// A [Spreadsheet] maps each table name (see package schema) to its rows. Every
// [Row] maps a column header to a cell value. The loader in package loader
// produces this shape from XLSX workbooks and CSV directories.
//
// # Phases
//
// [Validator.Check] runs in two phases:
//
//  1. Structural: duplicate entity codes, Facilities BcGuids, and header
//     presence for every table. Always runs.
//  2. Content: non-empty required cells per table, then the cross-sheet
//     references (fields to entities, states to fields, connections to
//     entities or sites). Runs only when the structural phase found nothing.
//
// All diagnostics are collected into a [Report]; rule-checkers never stop at
// the first failure.
//
// # Error Handling
//
// Diagnostics are [ValidationError] values tagged by [ErrorKind]. Each kind
// has a support code:
//
//   - VAL001: missing column header
//   - VAL002: empty required cell or missing Facilities BcGuid
//   - VAL003: duplicate entity code
//   - VAL004: cross-sheet reference does not resolve
//   - VAL005: connection references an unknown entity or site
//
// Input that breaks the input contract (an absent table, or a row without a
// column a rule indexes) is returned as a Go error: [ErrMissingTable] or
// [*ContractError]. Those are not diagnostics; callers must not treat the
// workbook as valid or invalid, only as malformed.
package core
