package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the process logger on stdout.
//   - service: binary name added to every line, empty to omit
//   - level: trace, debug, info, warn, error, fatal or panic (default info)
//   - format: "pretty" for console output, anything else for JSON
func Setup(service, level, format string) zerolog.Logger {
	return New(os.Stdout, service, level, format)
}

// New is Setup with an explicit writer.
func New(w io.Writer, service, level, format string) zerolog.Logger {
	if format == "pretty" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	ctx := zerolog.New(w).With().Timestamp()
	if service != "" {
		ctx = ctx.Str("service", service)
	}
	return ctx.Caller().Logger()
}
