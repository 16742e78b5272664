package logging

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// ReportHandler is a slog.Handler that writes each record as
// "<LEVEL> - <message>" on its own line. Attributes and groups are dropped:
// validation diagnostics carry their context in the message.
//
// It is used as the sink for a single validation report, never as the
// process-wide default logger.
type ReportHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	level slog.Leveler
}

// NewReportHandler creates a handler writing to w. Records below level are
// discarded; a nil level keeps everything from Info up.
func NewReportHandler(w io.Writer, level slog.Leveler) *ReportHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &ReportHandler{mu: &sync.Mutex{}, w: w, level: level}
}

// NewReport returns a logger backed by a ReportHandler on w.
func NewReport(w io.Writer) *slog.Logger {
	return slog.New(NewReportHandler(w, nil))
}

// Enabled implements slog.Handler.
func (h *ReportHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *ReportHandler) Handle(_ context.Context, r slog.Record) error {
	line := r.Level.String() + " - " + r.Message + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line)
	return err
}

// WithAttrs implements slog.Handler.
func (h *ReportHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup implements slog.Handler.
func (h *ReportHandler) WithGroup(_ string) slog.Handler {
	return h
}
