package schema

// Table names, as they appear as sheet titles in a building workbook.
const (
	Sites        = "Sites"
	Entities     = "Entities"
	EntityFields = "Entity Fields"
	States       = "States"
	Connections  = "Connections"
)

// Column headers shared across tables.
const (
	BuildingCode             = "BuildingCode"
	EntityCode               = "EntityCode"
	BcGUID                   = "BcGuid"
	Etag                     = "Etag"
	Namespace                = "Namespace"
	TypeName                 = "TypeName"
	IsReporting              = "IsReporting"
	CloudDeviceID            = "CloudDeviceId"
	StandardFieldName        = "StandardFieldName"
	RawFieldName             = "RawFieldName"
	ReportingEntityCode      = "ReportingEntityCode"
	ReportingEntityFieldName = "ReportingEntityFieldName"
	RawUnitPath              = "RawUnitPath"
	RawUnitValue             = "RawUnitValue"
	StandardUnitValue        = "StandardUnitValue"
	StandardState            = "StandardState"
	RawState                 = "RawState"
	SourceEntityCode         = "SourceEntityCode"
	TargetEntityCode         = "TargetEntityCode"
	ConnectionType           = "ConnectionType"
)

// FacilitiesNamespace marks entities that must carry a BcGuid exported from
// the building config API.
const FacilitiesNamespace = "FACILITIES"
