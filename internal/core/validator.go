package core

import (
	"context"
	"io"
	"log/slog"

	"github.com/JonMunkholm/sheetcheck/internal/schema"
)

// Validator runs the workbook consistency checks. A Validator holds no
// per-call state and is safe for concurrent use.
type Validator struct {
	schema schema.Schema
	sink   *slog.Logger
}

// NewValidator creates a validator for the given schema. Diagnostics found by
// Validate are written to sink; a nil sink discards them.
func NewValidator(s schema.Schema, sink *slog.Logger) *Validator {
	if sink == nil {
		sink = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Validator{schema: s, sink: sink}
}

// Schema returns the schema the validator checks against.
func (v *Validator) Schema() schema.Schema {
	return v.schema
}

// Validate checks ss and logs every diagnostic to the validator's sink.
// It returns true when the spreadsheet has no diagnostics. A non-nil error
// means ss is malformed and the boolean is meaningless.
func (v *Validator) Validate(ss Spreadsheet) (bool, error) {
	report, err := v.Check(ss)
	if err != nil {
		return false, err
	}
	report.Log(v.sink)
	return report.Valid(), nil
}

// Check runs both validation phases and returns the collected diagnostics
// without logging them.
//
// The structural phase (entity code uniqueness, Facilities BcGuids, headers
// of every table) always runs. The content phase (required cells, then field,
// state and connection references) runs only if the structural phase found
// nothing, because its rules index columns the header check guarantees.
func (v *Validator) Check(ss Spreadsheet) (Report, error) {
	tables := v.schema.Tables()
	sheets := make(map[string][]Row, len(tables))
	for _, t := range tables {
		rows, err := ss.Table(t.Name)
		if err != nil {
			return Report{}, err
		}
		sheets[t.Name] = rows
	}

	report := Report{Phase: PhaseStructural}
	entities := sheets[schema.Entities]

	errs, err := ValidateEntityCodes(entities)
	if err != nil {
		return Report{}, err
	}
	report.Errors = append(report.Errors, errs...)

	errs, err = ValidateFacilitiesGUIDs(entities)
	if err != nil {
		return Report{}, err
	}
	report.Errors = append(report.Errors, errs...)

	for _, t := range tables {
		report.Errors = append(report.Errors, ValidateHeaders(t.Name, sheets[t.Name], t.Headers())...)
	}

	if len(report.Errors) > 0 {
		return report, nil
	}

	report.Phase = PhaseContent
	for _, t := range tables {
		report.Errors = append(report.Errors, ValidateContents(t.Name, sheets[t.Name], t.Required)...)
	}

	crossSheet := []func() ([]ValidationError, error){
		func() ([]ValidationError, error) {
			return ValidateFieldReferences(sheets[schema.EntityFields], entities)
		},
		func() ([]ValidationError, error) {
			return ValidateStateMappings(sheets[schema.States], sheets[schema.EntityFields])
		},
		func() ([]ValidationError, error) {
			return ValidateConnections(sheets[schema.Connections], entities, sheets[schema.Sites])
		},
	}
	for _, check := range crossSheet {
		errs, err := check()
		if err != nil {
			return Report{}, err
		}
		report.Errors = append(report.Errors, errs...)
	}

	return report, nil
}

// Report is the outcome of one Check call.
type Report struct {
	Phase  Phase             `json:"phase"`
	Errors []ValidationError `json:"errors"`
}

// Valid reports whether no diagnostics were found.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// Counts returns the number of diagnostics per kind. Kinds with no
// diagnostics are omitted.
func (r Report) Counts() map[ErrorKind]int {
	counts := make(map[ErrorKind]int)
	for _, e := range r.Errors {
		counts[e.Kind]++
	}
	return counts
}

// Lines renders every diagnostic as "<LEVEL> - <message>", in report order.
func (r Report) Lines() []string {
	lines := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		lines[i] = e.Level().String() + " - " + e.Describe()
	}
	return lines
}

// Log writes every diagnostic to sink in report order.
func (r Report) Log(sink *slog.Logger) {
	ctx := context.Background()
	for _, e := range r.Errors {
		sink.Log(ctx, e.Level(), e.Describe())
	}
}
