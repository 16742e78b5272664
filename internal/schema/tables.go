package schema

// SiteSpec defines the expected columns for the Sites sheet.
var SiteSpec = TableSpec{
	Name:     Sites,
	Required: []string{BuildingCode},
	Optional: []string{BcGUID, Etag},
}

// EntitySpec defines the expected columns for the Entities sheet.
// BcGuid is optional content but its column must exist: Facilities
// entities are checked for it before headers are validated.
var EntitySpec = TableSpec{
	Name:     Entities,
	Required: []string{EntityCode, Namespace, TypeName, IsReporting},
	Optional: []string{BcGUID, Etag, CloudDeviceID},
}

// EntityFieldSpec defines the expected columns for the Entity Fields sheet.
var EntityFieldSpec = TableSpec{
	Name: EntityFields,
	Required: []string{
		StandardFieldName,
		RawFieldName,
		EntityCode,
		ReportingEntityCode,
		ReportingEntityFieldName,
	},
	Optional: []string{RawUnitPath, RawUnitValue, StandardUnitValue},
}

// StateSpec defines the expected columns for the States sheet.
var StateSpec = TableSpec{
	Name:     States,
	Required: []string{EntityCode, StandardFieldName, StandardState, RawState},
}

// ConnectionSpec defines the expected columns for the Connections sheet.
var ConnectionSpec = TableSpec{
	Name:     Connections,
	Required: []string{SourceEntityCode, TargetEntityCode, ConnectionType},
}
