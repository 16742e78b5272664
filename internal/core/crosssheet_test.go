package core

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/sheetcheck/internal/schema"
)

func entities(codes ...string) []Row {
	rows := make([]Row, len(codes))
	for i, c := range codes {
		rows[i] = row(schema.Entities, schema.EntityCode, c)
	}
	return rows
}

func field(entity, name, reportingEntity, reportingName string) Row {
	return row(schema.EntityFields,
		schema.EntityCode, entity,
		schema.StandardFieldName, name,
		schema.ReportingEntityCode, reportingEntity,
		schema.ReportingEntityFieldName, reportingName)
}

func state(entity, name string) Row {
	return row(schema.States, schema.EntityCode, entity, schema.StandardFieldName, name)
}

// ============================================================================
// Field -> Entity Tests
// ============================================================================

func TestValidateFieldReferences(t *testing.T) {
	ents := entities("AHU-1", "ZONE-1")

	tests := []struct {
		name     string
		field    Row
		wantCols []string
	}{
		{"both resolve", field("ZONE-1", "f", "AHU-1", "g"), nil},
		{"entity missing", field("ZONE-9", "f", "AHU-1", "g"), []string{schema.EntityCode}},
		{"reporting missing", field("ZONE-1", "f", "AHU-9", "g"), []string{schema.ReportingEntityCode}},
		{"both missing", field("ZONE-9", "f", "AHU-9", "g"), []string{schema.EntityCode, schema.ReportingEntityCode}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := ValidateFieldReferences([]Row{tt.field}, ents)
			if err != nil {
				t.Fatalf("ValidateFieldReferences() error = %v", err)
			}
			if len(errs) != len(tt.wantCols) {
				t.Fatalf("expected %d errors, got %d: %v", len(tt.wantCols), len(errs), errs)
			}
			for i, col := range tt.wantCols {
				e := errs[i]
				if e.Kind != KindCrossSheet || e.Column != col || e.Row != 2 {
					t.Errorf("error %d = %+v, want column %s at row 2", i, e, col)
				}
				if e.Table != schema.EntityFields || e.TargetTable != schema.Entities {
					t.Errorf("error %d tables = %s -> %s", i, e.Table, e.TargetTable)
				}
				if e.Value != tt.field[col] {
					t.Errorf("error %d value = %q, want %q", i, e.Value, tt.field[col])
				}
			}
		})
	}
}

// ============================================================================
// State -> Field Tests
// ============================================================================

func TestValidateStateMappings(t *testing.T) {
	fields := []Row{
		field("AHU-1", "run_command", "AHU-1", "run_command_1"),
		field("ZONE-1", "zone_air_temperature_sensor", "AHU-1", "zone_air_temperature_sensor_1"),
		field("ZONE-2", "mode", "AHU-1", "mode_1"),
		field("ZONE-3", "mode", "AHU-1", "mode_1"),
	}

	states := []Row{
		state("AHU-1", "run_command"),                   // branch a
		state("AHU-1", "zone_air_temperature_sensor_1"), // branch b
		state("AHU-1", "fan_speed"),                     // orphan
		state("AHU-1", "mode_1"),                        // two fields via branch b
	}

	errs, err := ValidateStateMappings(states, fields)
	if err != nil {
		t.Fatalf("ValidateStateMappings() error = %v", err)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}

	if errs[0].Row != 4 || errs[0].Value != "fan_speed" || errs[0].Matches != 0 {
		t.Errorf("orphan error = %+v", errs[0])
	}
	if errs[1].Row != 5 || errs[1].Value != "mode_1" || errs[1].Matches != 2 {
		t.Errorf("ambiguous error = %+v", errs[1])
	}
	for _, e := range errs {
		if e.Table != schema.States || e.TargetTable != schema.EntityFields || e.Column != schema.StandardFieldName {
			t.Errorf("unexpected error shape %+v", e)
		}
	}
}

func TestValidateStateMappings_BranchesSummed(t *testing.T) {
	// One field whose own and reporting keys are identical matches a state
	// through both branches and is counted twice.
	fields := []Row{field("AHU-1", "run_command", "AHU-1", "run_command")}

	errs, err := ValidateStateMappings([]Row{state("AHU-1", "run_command")}, fields)
	if err != nil {
		t.Fatalf("ValidateStateMappings() error = %v", err)
	}
	if len(errs) != 1 || errs[0].Matches != 2 {
		t.Fatalf("expected one error with 2 matches, got %v", errs)
	}
}

func TestValidateStateMappings_MissingColumn(t *testing.T) {
	fields := []Row{{schema.EntityCode: "AHU-1", schema.StandardFieldName: "x"}}
	_, err := ValidateStateMappings([]Row{state("AHU-1", "x")}, fields)

	var ce *ContractError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ContractError, got %v", err)
	}
	if ce.Table != schema.EntityFields {
		t.Errorf("ContractError.Table = %q", ce.Table)
	}
}

// ============================================================================
// Connection Tests
// ============================================================================

func connection(source, target string) Row {
	return row(schema.Connections, schema.SourceEntityCode, source, schema.TargetEntityCode, target)
}

func TestValidateConnections(t *testing.T) {
	ents := entities("AHU-1")
	sites := []Row{row(schema.Sites, schema.BuildingCode, "US-MTV-1")}

	tests := []struct {
		name        string
		conn        Row
		wantMissing []string
	}{
		{"entity to entity", connection("AHU-1", "AHU-1"), nil},
		{"site to entity", connection("US-MTV-1", "AHU-1"), nil},
		{"site to nowhere", connection("US-MTV-1", "VAV-9"), []string{"VAV-9"}},
		{"nowhere to entity", connection("VAV-9", "AHU-1"), []string{"VAV-9"}},
		{"both missing", connection("VAV-8", "VAV-9"), []string{"VAV-8", "VAV-9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := ValidateConnections([]Row{tt.conn}, ents, sites)
			if err != nil {
				t.Fatalf("ValidateConnections() error = %v", err)
			}
			if len(errs) != len(tt.wantMissing) {
				t.Fatalf("expected %d errors, got %d: %v", len(tt.wantMissing), len(errs), errs)
			}
			for i, missing := range tt.wantMissing {
				e := errs[i]
				if e.Kind != KindConnection || e.MissingCode != missing {
					t.Errorf("error %d = %+v, want missing %s", i, e, missing)
				}
				other := tt.conn[schema.SourceEntityCode]
				if other == missing {
					other = tt.conn[schema.TargetEntityCode]
				}
				if e.PresentCode != other {
					t.Errorf("error %d present = %q, want %q", i, e.PresentCode, other)
				}
			}
		})
	}
}
