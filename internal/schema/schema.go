// Package schema defines the tables of a building workbook and the columns
// each one is expected to expose.
//
// A table's required columns must be present and populated in every row. Its
// optional columns must be present but may be empty. The union of the two is
// the set of recognized headers checked during structural validation.
package schema

import "slices"

// TableSpec describes one sheet of the workbook.
type TableSpec struct {
	Name     string
	Required []string // Columns that must be non-empty in every row
	Optional []string // Columns that must exist but may be empty
}

// Headers returns every recognized header: required columns first, then
// optional ones, without duplicates.
func (t TableSpec) Headers() []string {
	all := make([]string, 0, len(t.Required)+len(t.Optional))
	all = append(all, t.Required...)
	for _, h := range t.Optional {
		if !slices.Contains(all, h) {
			all = append(all, h)
		}
	}
	return all
}

// IsRequired reports whether header must be populated in every row.
func (t TableSpec) IsRequired(header string) bool {
	return slices.Contains(t.Required, header)
}

// Schema is an ordered set of table specs. The order is the order in which
// tables are validated and reported.
type Schema struct {
	tables []TableSpec
}

// Default returns the built-in five-table schema.
func Default() Schema {
	return Schema{tables: []TableSpec{
		clone(SiteSpec),
		clone(EntitySpec),
		clone(EntityFieldSpec),
		clone(StateSpec),
		clone(ConnectionSpec),
	}}
}

// Tables returns the table specs in validation order.
func (s Schema) Tables() []TableSpec {
	out := make([]TableSpec, len(s.tables))
	for i, t := range s.tables {
		out[i] = clone(t)
	}
	return out
}

// Names returns the table names in validation order.
func (s Schema) Names() []string {
	names := make([]string, len(s.tables))
	for i, t := range s.tables {
		names[i] = t.Name
	}
	return names
}

// Get returns a table spec by name.
// Returns false if not found.
func (s Schema) Get(name string) (TableSpec, bool) {
	for _, t := range s.tables {
		if t.Name == name {
			return clone(t), true
		}
	}
	return TableSpec{}, false
}

// MustGet returns a table spec by name and panics if the schema does not
// define it. Every Schema built by this package defines all five tables.
func (s Schema) MustGet(name string) TableSpec {
	t, ok := s.Get(name)
	if !ok {
		panic("schema: unknown table " + name)
	}
	return t
}

func clone(t TableSpec) TableSpec {
	return TableSpec{
		Name:     t.Name,
		Required: slices.Clone(t.Required),
		Optional: slices.Clone(t.Optional),
	}
}
