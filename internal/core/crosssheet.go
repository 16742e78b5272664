package core

// crosssheet.go holds the rules that join independently edited sheets:
//
//   - every entity field names an entity and a reporting entity that exist
//   - every state maps to exactly one entity field
//   - every connection endpoint is an entity or a site

import "github.com/JonMunkholm/sheetcheck/internal/schema"

// ValidateFieldReferences checks that each entity field's EntityCode and
// ReportingEntityCode are defined in Entities. A row can yield 0, 1 or 2
// errors.
func ValidateFieldReferences(fields, entities []Row) ([]ValidationError, error) {
	codes, err := codeSet(schema.Entities, entities, schema.EntityCode)
	if err != nil {
		return nil, err
	}

	var errs []ValidationError
	for i, field := range fields {
		rowNum := rowStart + i
		for _, col := range []string{schema.EntityCode, schema.ReportingEntityCode} {
			code, err := field.Lookup(schema.EntityFields, rowNum, col)
			if err != nil {
				return nil, err
			}
			if _, ok := codes[code]; !ok {
				errs = append(errs, NewCrossSheetError(schema.EntityFields, schema.Entities, rowNum, col, code, 0))
			}
		}
	}
	return errs, nil
}

// ValidateStateMappings checks that each state maps to exactly one entity
// field. A field matches a state when either
//
//	field.EntityCode == state.EntityCode and field.StandardFieldName == state.StandardFieldName
//	field.ReportingEntityCode == state.EntityCode and field.ReportingEntityFieldName == state.StandardFieldName
//
// The two branches are counted separately and summed: a field matching both
// counts twice. Zero matches and more than one match are both errors.
func ValidateStateMappings(states, fields []Row) ([]ValidationError, error) {
	type fieldKeys struct {
		entity, name, reportingEntity, reportingName string
	}

	keys := make([]fieldKeys, len(fields))
	for i, field := range fields {
		rowNum := rowStart + i
		var k fieldKeys
		for _, c := range []struct {
			dst *string
			col string
		}{
			{&k.entity, schema.EntityCode},
			{&k.name, schema.StandardFieldName},
			{&k.reportingEntity, schema.ReportingEntityCode},
			{&k.reportingName, schema.ReportingEntityFieldName},
		} {
			v, err := field.Lookup(schema.EntityFields, rowNum, c.col)
			if err != nil {
				return nil, err
			}
			*c.dst = v
		}
		keys[i] = k
	}

	var errs []ValidationError
	for i, state := range states {
		rowNum := rowStart + i
		entity, err := state.Lookup(schema.States, rowNum, schema.EntityCode)
		if err != nil {
			return nil, err
		}
		name, err := state.Lookup(schema.States, rowNum, schema.StandardFieldName)
		if err != nil {
			return nil, err
		}

		matches := 0
		for _, k := range keys {
			if k.entity == entity && k.name == name {
				matches++
			}
			if k.reportingEntity == entity && k.reportingName == name {
				matches++
			}
		}
		if matches != 1 {
			errs = append(errs, NewCrossSheetError(schema.States, schema.EntityFields, rowNum,
				schema.StandardFieldName, name, matches))
		}
	}
	return errs, nil
}

// ValidateConnections checks that both endpoints of every connection are an
// entity code or a site building code. Each failing endpoint yields one
// error naming the code on the other end.
func ValidateConnections(connections, entities, sites []Row) ([]ValidationError, error) {
	codes, err := codeSet(schema.Entities, entities, schema.EntityCode)
	if err != nil {
		return nil, err
	}
	buildings, err := codeSet(schema.Sites, sites, schema.BuildingCode)
	if err != nil {
		return nil, err
	}
	for code := range buildings {
		codes[code] = struct{}{}
	}

	var errs []ValidationError
	for i, conn := range connections {
		rowNum := rowStart + i
		source, err := conn.Lookup(schema.Connections, rowNum, schema.SourceEntityCode)
		if err != nil {
			return nil, err
		}
		target, err := conn.Lookup(schema.Connections, rowNum, schema.TargetEntityCode)
		if err != nil {
			return nil, err
		}

		if _, ok := codes[source]; !ok {
			errs = append(errs, NewConnectionError(schema.Connections, rowNum, source, target))
		}
		if _, ok := codes[target]; !ok {
			errs = append(errs, NewConnectionError(schema.Connections, rowNum, target, source))
		}
	}
	return errs, nil
}

// codeSet collects the values of column across rows.
func codeSet(table string, rows []Row, column string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(rows))
	for i, row := range rows {
		v, err := row.Lookup(table, rowStart+i, column)
		if err != nil {
			return nil, err
		}
		set[v] = struct{}{}
	}
	return set, nil
}
