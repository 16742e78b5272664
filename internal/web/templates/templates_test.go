package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetcheck/internal/core"
	"github.com/JonMunkholm/sheetcheck/internal/schema"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return buf.String()
}

func assertContains(t *testing.T, html string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(html, w) {
			t.Errorf("output should contain %q, got:\n%s", w, html)
		}
	}
}

// =============================================================================
// Pages
// =============================================================================

func TestUploadPage(t *testing.T) {
	id := uuid.New()
	html := render(t, UploadPage(UploadPageParams{
		Tables:      schema.Default().Tables(),
		MaxFileSize: 32 << 20,
		Runs: []core.RunSummary{
			{ID: id, Source: "<b>plant.xlsx</b>", Valid: false, ErrorCount: 7, CreatedAt: time.Now()},
		},
	}))

	assertContains(t, html,
		"<!doctype html>",
		"<title>Validate · sheetcheck</title>",
		"XLSX up to 32 MB",
		"<td>Entity Fields</td>",
		`href="/runs/`+id.String()+`"`,
		"&lt;b&gt;plant.xlsx&lt;/b&gt;",
		`<span class="bad">Invalid</span>`,
		"<td>7</td>",
	)
	if strings.Contains(html, "<b>plant.xlsx") {
		t.Error("run source was not escaped")
	}
}

func TestUploadPage_NoRuns(t *testing.T) {
	html := render(t, UploadPage(UploadPageParams{Tables: schema.Default().Tables()}))
	assertContains(t, html, "No workbooks validated yet.")
}

func TestReportPage(t *testing.T) {
	tests := []struct {
		name    string
		report  core.Report
		want    []string
		notWant []string
	}{
		{
			name:    "valid",
			report:  core.Report{Phase: core.PhaseContent},
			want:    []string{`<span class="ok">Valid</span>`, " · 0 diagnostics · phase <code>content</code>"},
			notWant: []string{"<h2>Summary</h2>", "<h2>Diagnostics</h2>"},
		},
		{
			name: "invalid",
			report: core.Report{Phase: core.PhaseStructural, Errors: []core.ValidationError{
				{Kind: core.KindDuplicateCode, Table: schema.Entities, Column: schema.EntityCode, Value: "AHU-1", Matches: 2},
				{Kind: core.KindHeader, Table: schema.Sites, Column: schema.BuildingCode},
			}},
			want: []string{
				`<span class="bad">Invalid</span>`,
				"<code>duplicate_code</code></td><td>1</td>",
				"<code>header</code></td><td>1</td>",
				"<td>Entities</td>",
			},
			notWant: []string{"<code>connection_dependency</code>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := core.NewRun("plant.xlsx", tt.report, 1500*time.Microsecond)
			html := render(t, ReportPage(run))

			assertContains(t, html, tt.want...)
			assertContains(t, html, `href="/api/runs/`+run.ID.String()+`/log"`, "2ms")
			for _, nw := range tt.notWant {
				if strings.Contains(html, nw) {
					t.Errorf("output should not contain %q", nw)
				}
			}
		})
	}
}

func TestReportPage_RowOnlyWhenKnown(t *testing.T) {
	run := core.NewRun("plant.xlsx", core.Report{Phase: core.PhaseContent, Errors: []core.ValidationError{
		{Kind: core.KindMissingValue, Table: schema.States, Column: schema.RawState, Row: 4},
	}}, time.Millisecond)

	assertContains(t, render(t, ReportPage(run)), "<td>States</td><td>4</td>")
}

// =============================================================================
// Errors
// =============================================================================

func TestErrorAlert(t *testing.T) {
	html := render(t, ErrorAlert("Bad <file>", "", "FILE002"))

	assertContains(t, html, "<strong>Bad &lt;file&gt;</strong>", "<code>FILE002</code>")
	if strings.Contains(html, "<div></div>") {
		t.Error("empty action should not render")
	}
}

func TestErrorPage(t *testing.T) {
	html := render(t, ErrorPage("Upload failed", "Try a smaller file", "FILE001"))

	assertContains(t, html,
		"<title>Error · sheetcheck</title>",
		"<main><div class=\"alert\" role=\"alert\">",
		"<div>Try a smaller file</div>",
	)
}
