package schema

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestDefault_TableOrder(t *testing.T) {
	got := Default().Names()
	want := []string{Sites, Entities, EntityFields, States, Connections}
	if !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestDefault_RequiredSubsetOfHeaders(t *testing.T) {
	for _, table := range Default().Tables() {
		headers := table.Headers()
		for _, h := range table.Required {
			if !slices.Contains(headers, h) {
				t.Errorf("%s: required header %q missing from Headers()", table.Name, h)
			}
		}
	}
}

func TestDefault_KeyColumns(t *testing.T) {
	s := Default()

	tests := []struct {
		table  string
		header string
	}{
		{Sites, BuildingCode},
		{Entities, EntityCode},
		{Entities, Namespace},
		{Entities, BcGUID},
		{EntityFields, EntityCode},
		{EntityFields, ReportingEntityCode},
		{EntityFields, StandardFieldName},
		{EntityFields, ReportingEntityFieldName},
		{States, EntityCode},
		{States, StandardFieldName},
		{Connections, SourceEntityCode},
		{Connections, TargetEntityCode},
	}

	for _, tt := range tests {
		t.Run(tt.table+"/"+tt.header, func(t *testing.T) {
			spec := s.MustGet(tt.table)
			if !slices.Contains(spec.Headers(), tt.header) {
				t.Errorf("%s does not recognize %q", tt.table, tt.header)
			}
		})
	}
}

func TestHeaders_NoDuplicates(t *testing.T) {
	spec := TableSpec{
		Name:     "x",
		Required: []string{"a", "b"},
		Optional: []string{"b", "c"},
	}
	got := spec.Headers()
	want := []string{"a", "b", "c"}
	if !slices.Equal(got, want) {
		t.Errorf("Headers() = %v, want %v", got, want)
	}
}

func TestTables_ReturnsCopies(t *testing.T) {
	s := Default()
	tables := s.Tables()
	tables[0].Required[0] = "mutated"

	if s.MustGet(Sites).Required[0] != BuildingCode {
		t.Error("mutating Tables() result changed the schema")
	}
	if SiteSpec.Required[0] != BuildingCode {
		t.Error("mutating Tables() result changed SiteSpec")
	}
}

func TestWithOverrides(t *testing.T) {
	s, err := Default().WithOverrides(map[string]Override{
		Entities: {
			Required: []string{"Floor", BcGUID, EntityCode},
			Optional: []string{"Notes", "Floor", ""},
		},
	})
	if err != nil {
		t.Fatalf("WithOverrides() error = %v", err)
	}

	spec := s.MustGet(Entities)
	if !spec.IsRequired("Floor") {
		t.Error("Floor should be required")
	}
	if !spec.IsRequired(BcGUID) {
		t.Error("BcGuid should be promoted to required")
	}
	if slices.Contains(spec.Optional, BcGUID) {
		t.Error("BcGuid should no longer be optional")
	}
	if !slices.Contains(spec.Optional, "Notes") {
		t.Error("Notes should be optional")
	}
	if n := strings.Count(strings.Join(spec.Headers(), ","), "Floor"); n != 1 {
		t.Errorf("Floor appears %d times in headers, want 1", n)
	}

	if Default().MustGet(Entities).IsRequired("Floor") {
		t.Error("override leaked into the default schema")
	}
}

func TestWithOverrides_UnknownTable(t *testing.T) {
	_, err := Default().WithOverrides(map[string]Override{"Floors": {}})
	if err == nil {
		t.Fatal("expected error for unknown table")
	}
	if !strings.Contains(err.Error(), "Floors") {
		t.Errorf("error %q does not name the table", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	data := "tables:\n  Connections:\n    optional: [Notes]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !slices.Contains(s.MustGet(Connections).Optional, "Notes") {
		t.Error("Notes not added to Connections")
	}
}

func TestLoadFile_EmptyPath(t *testing.T) {
	s, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile(\"\") error = %v", err)
	}
	if !slices.Equal(s.Names(), Default().Names()) {
		t.Error("empty path should return the default schema")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("tables: [")); err == nil {
		t.Fatal("expected parse error")
	}
}
