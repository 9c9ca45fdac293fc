// Package cli implements the stackbom command-line interface.
//
// This package provides commands for packing a stream of BOM nodes into a
// chunked archive, unpacking it again, inspecting an archive and listing the
// vocabulary. The CLI is built using cobra and supports verbose logging via
// the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - pack: Read JSON-lines nodes and write a ZIP or directory archive
//   - unpack: Write an archive's nodes back as JSON lines
//   - inspect: Show metadata, entry digests and per-kind node counts
//   - terms: List vocabulary and project terms
//
// # Configuration
//
// Defaults come from stackbom.toml in the working directory, or the file
// named by --config. Flags override file values.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Packed 4200 nodes (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
