package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetcheck/internal/core"
	"github.com/JonMunkholm/sheetcheck/internal/loader"
	"github.com/JonMunkholm/sheetcheck/internal/schema"
	"github.com/JonMunkholm/sheetcheck/internal/web/templates"
)

// recentRuns is how many runs the landing page shows.
const recentRuns = 10

// ValidateResponse is the body of a successful POST /api/validate.
type ValidateResponse struct {
	RunID  uuid.UUID              `json:"run_id"`
	Source string                 `json:"source"`
	Valid  bool                   `json:"valid"`
	Phase  core.Phase             `json:"phase"`
	Counts map[core.ErrorKind]int `json:"counts"`
	Errors []core.ValidationError `json:"errors"`
	Log    []string               `json:"log"`
}

func newValidateResponse(run core.Run) ValidateResponse {
	errs := run.Report.Errors
	if errs == nil {
		errs = []core.ValidationError{}
	}
	return ValidateResponse{
		RunID:  run.ID,
		Source: run.Source,
		Valid:  run.Valid(),
		Phase:  run.Report.Phase,
		Counts: run.Report.Counts(),
		Errors: errs,
		Log:    run.Report.Lines(),
	}
}

// TableResponse describes one table in GET /api/tables.
type TableResponse struct {
	Name     string   `json:"name"`
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"validations": s.service.LimiterStatus(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListRuns(r.Context(), recentRuns)
	if err != nil {
		slog.Warn("list recent runs", "error", err)
		runs = nil
	}

	renderHTML(w, r, templates.UploadPage(templates.UploadPageParams{
		Tables:      s.service.Schema().Tables(),
		Runs:        runs,
		MaxFileSize: s.cfg.Validation.MaxFileSize,
	}))
}

// handleValidatePage accepts the upload form and redirects to the report.
func (s *Server) handleValidatePage(w http.ResponseWriter, r *http.Request) {
	source, ss, err := s.readWorkbookForm(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	run, err := s.service.Validate(r.Context(), source, ss)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	http.Redirect(w, r, "/runs/"+run.ID.String(), http.StatusSeeOther)
}

func (s *Server) handleRunPage(w http.ResponseWriter, r *http.Request) {
	run, err := s.runFromURL(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	renderHTML(w, r, templates.ReportPage(run))
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables := s.service.Schema().Tables()
	out := make([]TableResponse, len(tables))
	for i, t := range tables {
		out[i] = TableResponse{Name: t.Name, Required: t.Required, Optional: t.Optional}
		if out[i].Optional == nil {
			out[i].Optional = []string{}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleValidate validates a multipart XLSX upload or a JSON document that
// maps each table name to its rows.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var (
		source string
		ss     core.Spreadsheet
		err    error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		source = "request.json"
		ss, err = s.readSpreadsheetJSON(w, r)
	} else {
		source, ss, err = s.readWorkbookForm(w, r)
	}
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	run, err := s.service.Validate(r.Context(), source, ss)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, newValidateResponse(run))
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondErrorJSON(w, core.UserMessage{
				Message: "limit must be a non-negative integer",
				Code:    "REQ001",
			}, http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.service.ListRuns(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.runFromURL(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleRunLog serves the run's error log, one "<LEVEL> - <message>" line per
// diagnostic.
func (s *Server) handleRunLog(w http.ResponseWriter, r *http.Request) {
	run, err := s.runFromURL(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="validation-%s.log"`, run.ID))
	for _, line := range run.Report.Lines() {
		io.WriteString(w, line+"\n")
	}
}

func (s *Server) runFromURL(r *http.Request) (core.Run, error) {
	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		return core.Run{}, fmt.Errorf("%w: %v", errInvalidID, err)
	}
	return s.service.GetRun(r.Context(), id)
}

// readWorkbookForm loads the XLSX sent in the "file" form field.
func (s *Server) readWorkbookForm(w http.ResponseWriter, r *http.Request) (string, core.Spreadsheet, error) {
	maxSize := s.cfg.Validation.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return "", nil, bodyError(err, errNoFile)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errNoFile
	}
	defer file.Close()

	ss, err := loader.ReadWorkbook(file, s.service.Schema())
	if err != nil {
		return "", nil, err
	}
	return filepath.Base(header.Filename), ss, nil
}

// readSpreadsheetJSON decodes {"Sites": [{"BuildingCode": "..."}], ...}.
func (s *Server) readSpreadsheetJSON(w http.ResponseWriter, r *http.Request) (core.Spreadsheet, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Validation.MaxFileSize)

	var ss core.Spreadsheet
	if err := json.NewDecoder(r.Body).Decode(&ss); err != nil {
		return nil, bodyError(err, errInvalidJSON)
	}
	if ss == nil {
		return nil, fmt.Errorf("%w: expected an object of tables", errInvalidJSON)
	}
	return trimSpreadsheet(ss, s.service.Schema()), nil
}

// trimSpreadsheet keeps only the tables of s.
func trimSpreadsheet(ss core.Spreadsheet, s schema.Schema) core.Spreadsheet {
	out := make(core.Spreadsheet, len(ss))
	for _, name := range s.Names() {
		if rows, ok := ss[name]; ok {
			out[name] = rows
		}
	}
	return out
}

// bodyError maps an oversized body to errFileTooLarge and anything else to
// fallback.
func bodyError(err, fallback error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) || strings.Contains(err.Error(), "request body too large") {
		return fmt.Errorf("%w: %v", errFileTooLarge, err)
	}
	return fmt.Errorf("%w: %v", fallback, err)
}

func renderHTML(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render page", "path", r.URL.Path, "error", err)
	}
}
