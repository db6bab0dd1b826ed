// Package logging adapts the pipeline's diagnostic lines to zerolog.
package logging

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/listinglens/backend/internal/domain"
)

// prefixes of lines that report a dropped or degraded record
var warnPrefixes = []string{"Failed", "Pruned", "No exchange rate", "Skipping"}

// NewSink returns a domain.Sink logging each line with the run ID attached.
// Record-level diagnostics are warnings, progress lines are info.
func NewSink(logger zerolog.Logger, runID string) domain.Sink {
	l := logger
	if runID != "" {
		l = logger.With().Str("run_id", runID).Logger()
	}
	return func(line string) {
		l.WithLevel(Level(line)).Msg(line)
	}
}

// Level classifies a diagnostic line.
func Level(line string) zerolog.Level {
	for _, p := range warnPrefixes {
		if strings.HasPrefix(line, p) {
			return zerolog.WarnLevel
		}
	}
	return zerolog.InfoLevel
}
