package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// Helpers
// =============================================================================

var validTables = map[string]string{
	"Sites.csv": "BuildingCode,BcGuid,Etag\nUS-MTV-1,,\n",
	"Entities.csv": "EntityCode,Namespace,TypeName,IsReporting,BcGuid,Etag,CloudDeviceId\n" +
		"AHU-1,HVAC,AHU_STANDARD,TRUE,,,\n",
	"Entity Fields.csv": "StandardFieldName,RawFieldName,EntityCode,ReportingEntityCode,ReportingEntityFieldName,RawUnitPath,RawUnitValue,StandardUnitValue\n" +
		"run_command,run_command_1,AHU-1,AHU-1,ahu_run_command,,,\n",
	"States.csv":      "EntityCode,StandardFieldName,StandardState,RawState\nAHU-1,run_command,ON,1\n",
	"Connections.csv": "SourceEntityCode,TargetEntityCode,ConnectionType\nUS-MTV-1,AHU-1,CONTAINS\n",
}

// writeTables writes the valid tables to a new directory, applying the
// given replacements. An empty replacement removes the file.
func writeTables(t *testing.T, replace map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range validTables {
		if r, ok := replace[name]; ok {
			if r == "" {
				continue
			}
			content = r
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return -1
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

// =============================================================================
// validate
// =============================================================================

func TestValidate_Valid(t *testing.T) {
	dir := writeTables(t, nil)
	logPath := filepath.Join(t.TempDir(), "validation.log")

	out, err := execute(t, "validate", dir, "--log", logPath)
	if err != nil {
		t.Fatalf("validate error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "PASS") {
		t.Errorf("output should contain PASS, got:\n%s", out)
	}
	if !strings.Contains(out, "VAL001") {
		t.Errorf("summary should list check codes, got:\n%s", out)
	}
	if log := readLog(t, logPath); log != "" {
		t.Errorf("log should be empty for a valid workbook, got %q", log)
	}
}

func TestValidate_Invalid(t *testing.T) {
	dir := writeTables(t, map[string]string{
		"Connections.csv": "SourceEntityCode,TargetEntityCode,ConnectionType\nUS-MTV-1,AHU-9,CONTAINS\n",
	})
	logPath := filepath.Join(t.TempDir(), "validation.log")

	out, err := execute(t, "validate", dir, "--log", logPath, "--details")
	if got := exitCode(err); got != exitInvalid {
		t.Fatalf("exit code = %d, want %d (err %v)", got, exitInvalid, err)
	}
	if !strings.Contains(out, "FAIL") {
		t.Errorf("output should contain FAIL, got:\n%s", out)
	}
	if !strings.Contains(out, "AHU-9") {
		t.Errorf("details should name the missing code, got:\n%s", out)
	}

	log := readLog(t, logPath)
	if !strings.HasPrefix(log, "ERROR - ") {
		t.Errorf("log line should start with level, got %q", log)
	}
	if !strings.Contains(log, `"AHU-9"`) {
		t.Errorf("log should name the missing code, got %q", log)
	}
}

func TestValidate_LogIsTruncated(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "validation.log")
	if err := os.WriteFile(logPath, []byte("ERROR - stale entry\n"), 0o644); err != nil {
		t.Fatalf("seed log: %v", err)
	}

	if _, err := execute(t, "validate", writeTables(t, nil), "--log", logPath); err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if log := readLog(t, logPath); strings.Contains(log, "stale") {
		t.Errorf("log was not truncated: %q", log)
	}
}

func TestValidate_Malformed(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing table",
			path: func(t *testing.T) string {
				return writeTables(t, map[string]string{"States.csv": ""})
			},
		},
		{
			name: "not a workbook",
			path: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "book.xlsx")
				if err := os.WriteFile(p, []byte("plain text"), 0o644); err != nil {
					t.Fatalf("write: %v", err)
				}
				return p
			},
		},
		{
			name: "no such file",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.xlsx")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logPath := filepath.Join(t.TempDir(), "validation.log")
			_, err := execute(t, "validate", tt.path(t), "--log", logPath)
			if got := exitCode(err); got != exitMalformed {
				t.Errorf("exit code = %d, want %d (err %v)", got, exitMalformed, err)
			}
		})
	}
}

func TestValidate_MissingSheetListsWorkbookSheets(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Sites"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	if _, err := f.NewSheet("Entitys"); err != nil {
		t.Fatalf("add sheet: %v", err)
	}
	path := filepath.Join(t.TempDir(), "building.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	_, err := execute(t, "validate", path, "--log", filepath.Join(t.TempDir(), "validation.log"))
	if got := exitCode(err); got != exitMalformed {
		t.Fatalf("exit code = %d, want %d (err %v)", got, exitMalformed, err)
	}
	if !strings.Contains(err.Error(), "workbook sheets: Sites, Entitys") {
		t.Errorf("error should list the workbook's sheets, got %q", err)
	}
}

func TestWorkbookSheets_NotAWorkbook(t *testing.T) {
	if got := workbookSheets(writeTables(t, nil)); got != nil {
		t.Errorf("workbookSheets(dir) = %v, want nil", got)
	}
	p := filepath.Join(t.TempDir(), "book.xlsx")
	if err := os.WriteFile(p, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := workbookSheets(p); got != nil {
		t.Errorf("workbookSheets(text) = %v, want nil", got)
	}
}

func TestValidate_RequiresPath(t *testing.T) {
	if _, err := execute(t, "validate"); err == nil {
		t.Error("expected error without a path")
	}
}

func TestValidate_SchemaOverride(t *testing.T) {
	schemaPath := filepath.Join(t.TempDir(), "schema.yaml")
	override := "tables:\n  Sites:\n    required: [Region]\n"
	if err := os.WriteFile(schemaPath, []byte(override), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	logPath := filepath.Join(t.TempDir(), "validation.log")

	_, err := execute(t, "validate", writeTables(t, nil), "--log", logPath, "--schema", schemaPath)
	if got := exitCode(err); got != exitInvalid {
		t.Fatalf("exit code = %d, want %d (err %v)", got, exitInvalid, err)
	}
	if log := readLog(t, logPath); !strings.Contains(log, "Region") {
		t.Errorf("log should report the Region header, got %q", log)
	}
}

// =============================================================================
// tables
// =============================================================================

func TestTables(t *testing.T) {
	out, err := execute(t, "tables")
	if err != nil {
		t.Fatalf("tables error = %v", err)
	}
	for _, want := range []string{"Sites", "Entities", "Entity Fields", "States", "Connections", "ReportingEntityFieldName"} {
		if !strings.Contains(out, want) {
			t.Errorf("tables output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestTables_MarksRequiredColumns(t *testing.T) {
	out, err := execute(t, "tables")
	if err != nil {
		t.Fatalf("tables error = %v", err)
	}

	tests := []struct {
		column string
		filled bool
	}{
		{"BuildingCode", true},
		{"RawState", true},
		{"CloudDeviceId", false},
		{"StandardUnitValue", false},
	}
	lines := strings.Split(out, "\n")
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			for _, line := range lines {
				if !strings.Contains(line, " "+tt.column+" ") {
					continue
				}
				if got := strings.Contains(line, "yes"); got != tt.filled {
					t.Errorf("%s marked required = %v, want %v: %q", tt.column, got, tt.filled, line)
				}
				return
			}
			t.Errorf("column %s not listed:\n%s", tt.column, out)
		})
	}
}

func TestTables_BadSchema(t *testing.T) {
	_, err := execute(t, "tables", "--schema", filepath.Join(t.TempDir(), "absent.yaml"))
	if got := exitCode(err); got != exitMalformed {
		t.Errorf("exit code = %d, want %d", got, exitMalformed)
	}
}

// =============================================================================
// Root
// =============================================================================

func TestHelpListsCommands(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("help error = %v", err)
	}
	for _, want := range []string{"validate", "tables", `"Entity Fields"`} {
		if !strings.Contains(out, want) {
			t.Errorf("help should mention %q, got:\n%s", want, out)
		}
	}
}

func TestHelpNamesRealSheets(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("help error = %v", err)
	}
	if strings.Contains(out, "EntityFields") {
		t.Errorf("help should use the sheet name %q, got:\n%s", "Entity Fields", out)
	}
}

func TestKindLabel(t *testing.T) {
	if got := kindLabel("cross_sheet_dependency"); got != "Cross Sheet Dependency" {
		t.Errorf("kindLabel = %q", got)
	}
}
