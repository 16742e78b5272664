package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/sheetcheck/internal/core"
	"github.com/JonMunkholm/sheetcheck/internal/loader"
	"github.com/JonMunkholm/sheetcheck/internal/logging"
	"github.com/JonMunkholm/sheetcheck/internal/schema"
)

// Version is set at build time.
var Version = "0.1.0"

// Process exit codes.
const (
	exitInvalid   = 1
	exitMalformed = 2
)

const defaultLogFile = "validation.log"

// exitError carries a process exit code out of a command. A nil err means
// the command already reported the failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return "exit status " + strconv.Itoa(e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

var (
	passStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22C55E"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sheetcheck",
		Short: "Cross-table consistency checks for building workbooks",
		Long: `sheetcheck validates a building workbook before it is imported.

A workbook has five tables (Sites, Entities, "Entity Fields", States and
Connections) supplied either as sheets of one XLSX file or as one CSV file
per table in a directory. Every diagnostic is written to a log file and
summarized on the terminal.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newValidateCmd())
	root.AddCommand(newTablesCmd())
	return root
}

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	LogFile    string
	SchemaFile string
	Details    bool
}

func newValidateCmd() *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:   "validate <workbook.xlsx|csv-dir>",
		Short: "Validate a workbook and write its error log",
		Long: `Validate a workbook and write every diagnostic to a log file.

The log file is truncated on each run. The command exits with status 1 when
the workbook has diagnostics and 2 when it cannot be read or is missing a
table.`,
		Example: `  # Validate an XLSX workbook
  sheetcheck validate building.xlsx

  # Validate a directory of Sites.csv, Entities.csv, ...
  sheetcheck validate ./export --log export.log

  # List every diagnostic on the terminal
  sheetcheck validate building.xlsx --details`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.LogFile, "log", defaultLogFile, "Path of the error log to write")
	cmd.Flags().StringVar(&opts.SchemaFile, "schema", "", "YAML file with extra table columns")
	cmd.Flags().BoolVar(&opts.Details, "details", false, "Print every diagnostic")
	return cmd
}

func runValidate(cmd *cobra.Command, path string, opts *ValidateOptions) error {
	s, err := schema.LoadFile(opts.SchemaFile)
	if err != nil {
		return &exitError{code: exitMalformed, err: err}
	}

	start := time.Now()
	ss, err := loader.Read(cmd.Context(), path, s)
	if err != nil {
		return &exitError{code: exitMalformed, err: fmt.Errorf("read %s: %w", path, err)}
	}

	report, err := core.NewValidator(s, nil).Check(ss)
	if err != nil {
		if core.IsMalformedInput(err) {
			msg := core.FormatUserError(err)
			if errors.Is(err, core.ErrMissingTable) {
				if sheets := workbookSheets(path); len(sheets) > 0 {
					msg += " (workbook sheets: " + strings.Join(sheets, ", ") + ")"
				}
			}
			return &exitError{code: exitMalformed, err: errors.New(msg)}
		}
		return &exitError{code: exitMalformed, err: err}
	}

	if err := writeLog(opts.LogFile, report); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderSummary(out, path, report, time.Since(start))
	if opts.Details && !report.Valid() {
		fmt.Fprintln(out)
		renderIssues(out, report.Errors)
	}
	fmt.Fprintln(out, mutedStyle.Render("log written to "+opts.LogFile))

	if !report.Valid() {
		return &exitError{code: exitInvalid}
	}
	return nil
}

// writeLog replaces the log file with the report's diagnostics.
func writeLog(path string, report core.Report) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	report.Log(logging.NewReport(f))
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log: %w", err)
	}
	return nil
}

// workbookSheets lists the sheets of the XLSX file at path. It returns nil
// for CSV directories and files that cannot be read.
func workbookSheets(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	if info, err := f.Stat(); err != nil || info.IsDir() {
		return nil
	}
	names, err := loader.SheetNames(f)
	if err != nil {
		return nil
	}
	return names
}

func renderSummary(w io.Writer, path string, report core.Report, elapsed time.Duration) {
	status := passStyle.Render("PASS")
	if !report.Valid() {
		status = failStyle.Render("FAIL")
	}
	fmt.Fprintf(w, "%s %s (%s phase, %s)\n\n", status, path, report.Phase, elapsed.Round(time.Millisecond))

	counts := report.Counts()
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Check", "Code", "Issues"})
	for _, kind := range core.Kinds {
		t.AppendRow(table.Row{kindLabel(kind), core.ValidationError{Kind: kind}.Code(), counts[kind]})
	}
	t.AppendFooter(table.Row{"Total", "", len(report.Errors)})
	t.Render()
}

func renderIssues(w io.Writer, errs []core.ValidationError) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Table", "Row", "Issue"})
	for i, e := range errs {
		row := ""
		if e.Row > 0 {
			row = strconv.Itoa(e.Row)
		}
		t.AppendRow(table.Row{i + 1, e.Table, row, e.Describe()})
	}
	t.Render()
}

func kindLabel(kind core.ErrorKind) string {
	words := strings.Split(string(kind), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// TablesOptions holds options for the tables command.
type TablesOptions struct {
	SchemaFile string
}

func newTablesCmd() *cobra.Command {
	opts := &TablesOptions{}
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables and columns a workbook must provide",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := schema.LoadFile(opts.SchemaFile)
			if err != nil {
				return &exitError{code: exitMalformed, err: err}
			}
			renderTables(cmd.OutOrStdout(), s)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.SchemaFile, "schema", "", "YAML file with extra table columns")
	return cmd
}

func renderTables(w io.Writer, s schema.Schema) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Column", "Must Be Filled"})
	for _, spec := range s.Tables() {
		for _, h := range spec.Headers() {
			filled := ""
			if spec.IsRequired(h) {
				filled = "yes"
			}
			t.AppendRow(table.Row{spec.Name, h, filled})
		}
		t.AppendSeparator()
	}
	t.Render()
}
