package core

// error_messages.go maps diagnostics and technical errors to user-facing
// messages with codes for support reference.
//
// Codes are grouped by category:
//
//	VAL001-VAL005  Workbook diagnostics (one per ErrorKind)
//	IN001-IN002    Malformed input (contract violations)
//	FILE001-FILE005 Uploaded file problems
//	SVC001-SVC003  Service capacity and cancellation
//	DB001-DB002    Run history storage
//	RUN001-RUN002  Unknown or malformed validation run
//	ERR000         Anything else

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage is a user-friendly rendering of an error.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var kindMessages = map[ErrorKind]UserMessage{
	KindHeader: {
		Message: "A required column header is missing",
		Action:  "Add the column to the sheet's header row",
		Code:    "VAL001",
	},
	KindMissingValue: {
		Message: "A required cell is empty",
		Action:  "Fill in the cell; Facilities entities need a BcGuid from the building config export",
		Code:    "VAL002",
	},
	KindDuplicateCode: {
		Message: "An entity code is defined more than once",
		Action:  "Give every entity a unique EntityCode",
		Code:    "VAL003",
	},
	KindCrossSheet: {
		Message: "A reference to another sheet does not resolve",
		Action:  "Check that the referenced entity or field exists exactly once",
		Code:    "VAL004",
	},
	KindConnection: {
		Message: "A connection references an unknown entity or site",
		Action:  "Define the code in Entities or Sites, or fix the connection",
		Code:    "VAL005",
	},
}

// sentinelMessages is consulted with errors.Is before any text matching.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{ErrTooManyValidations, UserMessage{"System is busy validating other workbooks", "Please wait a moment and try again", "SVC001"}},
	{context.Canceled, UserMessage{"Request was cancelled", "Please try again", "SVC002"}},
	{context.DeadlineExceeded, UserMessage{"Request timed out", "Try a smaller workbook or try again later", "SVC003"}},
	{ErrRunNotFound, UserMessage{"Validation run not found", "Check the run ID or validate the workbook again", "RUN001"}},
}

// textMessages match errors raised outside this package, by lowercase
// substring of the error text. The first match wins.
var textMessages = []struct {
	fragment string
	msg      UserMessage
}{
	// Uploaded files
	{"file too large", UserMessage{"File exceeds maximum size limit", "Remove unused sheets or split the workbook", "FILE001"}},
	{"not a workbook", UserMessage{"File is not a valid XLSX workbook", "Export the spreadsheet as .xlsx and upload again", "FILE002"}},
	{"invalid csv", UserMessage{"File is not a valid CSV", "Ensure file is comma-separated with consistent columns", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Please select a workbook to validate", "FILE004"}},
	{"invalid json", UserMessage{"Request body is not a valid spreadsheet document", "Send an object mapping each table name to a list of rows", "FILE005"}},

	// Sentinels whose text survives wrapping with %v
	{"too many concurrent validations", UserMessage{"System is busy validating other workbooks", "Please wait a moment and try again", "SVC001"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "SVC002"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try a smaller workbook or try again later", "SVC003"}},

	// Run history
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB001"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB002"}},
	{"run not found", UserMessage{"Validation run not found", "Check the run ID or validate the workbook again", "RUN001"}},
	{"invalid run id", UserMessage{"Run ID is not valid", "Use the ID returned when the workbook was validated", "RUN002"}},
}

var (
	missingTableMessage = UserMessage{
		Message: "The workbook is missing a required sheet",
		Action:  "Add every sheet: Sites, Entities, Entity Fields, States, Connections",
		Code:    "IN001",
	}
	contractMessage = UserMessage{
		Message: "A row is missing a column the checks depend on",
		Action:  "Re-export the workbook so every row has every header",
		Code:    "IN002",
	}
	defaultMessage = UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
)

// MapError converts an error to a user-friendly message.
// Diagnostics, contract errors and known sentinels are matched by type,
// anything else by case-insensitive substring. Returns an empty UserMessage for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ve ValidationError
	if errors.As(err, &ve) {
		if msg, ok := kindMessages[ve.Kind]; ok {
			return msg
		}
	}
	if errors.Is(err, ErrMissingTable) {
		return missingTableMessage
	}
	var ce *ContractError
	if errors.As(err, &ce) {
		return contractMessage
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	text := strings.ToLower(err.Error())
	for _, tm := range textMessages {
		if strings.Contains(text, tm.fragment) {
			return tm.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// IsMalformedInput reports whether err means the spreadsheet broke the input
// contract rather than the service failing.
func IsMalformedInput(err error) bool {
	var ce *ContractError
	return errors.Is(err, ErrMissingTable) || errors.As(err, &ce)
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a
// user-friendly message. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
