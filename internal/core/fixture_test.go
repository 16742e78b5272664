package core

import "github.com/JonMunkholm/sheetcheck/internal/schema"

// row builds a row exposing every recognized header of table, empty unless
// set by kv (alternating column, value).
func row(table string, kv ...string) Row {
	r := make(Row)
	for _, h := range schema.Default().MustGet(table).Headers() {
		r[h] = ""
	}
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i]] = kv[i+1]
	}
	return r
}

// validSpreadsheet returns a small, fully consistent building.
func validSpreadsheet() Spreadsheet {
	return Spreadsheet{
		schema.Sites: {
			row(schema.Sites, schema.BuildingCode, "US-MTV-1", schema.BcGUID, "site-guid"),
		},
		schema.Entities: {
			row(schema.Entities,
				schema.EntityCode, "AHU-1",
				schema.Namespace, "HVAC",
				schema.TypeName, "AHU_STANDARD",
				schema.IsReporting, "TRUE",
				schema.CloudDeviceID, "2541901344105616"),
			row(schema.Entities,
				schema.EntityCode, "ZONE-1",
				schema.Namespace, schema.FacilitiesNamespace,
				schema.TypeName, "ZONE",
				schema.IsReporting, "FALSE",
				schema.BcGUID, "guid-zone-1"),
		},
		schema.EntityFields: {
			row(schema.EntityFields,
				schema.EntityCode, "AHU-1",
				schema.StandardFieldName, "run_command",
				schema.RawFieldName, "points.run.present_value",
				schema.ReportingEntityCode, "AHU-1",
				schema.ReportingEntityFieldName, "run_command_1"),
			row(schema.EntityFields,
				schema.EntityCode, "ZONE-1",
				schema.StandardFieldName, "zone_air_temperature_sensor",
				schema.RawFieldName, "points.zat.present_value",
				schema.ReportingEntityCode, "AHU-1",
				schema.ReportingEntityFieldName, "zone_air_temperature_sensor_1",
				schema.StandardUnitValue, "degrees_celsius"),
		},
		schema.States: {
			row(schema.States,
				schema.EntityCode, "AHU-1",
				schema.StandardFieldName, "run_command",
				schema.StandardState, "ON",
				schema.RawState, "1"),
			row(schema.States,
				schema.EntityCode, "AHU-1",
				schema.StandardFieldName, "run_command",
				schema.StandardState, "OFF",
				schema.RawState, "0"),
		},
		schema.Connections: {
			row(schema.Connections,
				schema.SourceEntityCode, "AHU-1",
				schema.TargetEntityCode, "ZONE-1",
				schema.ConnectionType, "FEEDS"),
			row(schema.Connections,
				schema.SourceEntityCode, "US-MTV-1",
				schema.TargetEntityCode, "AHU-1",
				schema.ConnectionType, "CONTAINS"),
		},
	}
}

// dropColumn removes column from every row of table.
func dropColumn(ss Spreadsheet, table, column string) {
	for _, r := range ss[table] {
		delete(r, column)
	}
}

func countKind(errs []ValidationError, kind ErrorKind) int {
	n := 0
	for _, e := range errs {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
