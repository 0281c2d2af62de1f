package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// newLogger builds the zerolog logger for the CLI and an slog bridge to it
// for the library packages.
func newLogger(w io.Writer, level, format string) (zerolog.Logger, *slog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var out io.Writer
	switch format {
	case "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
		out = w
	default:
		return zerolog.Nop(), nil, fmt.Errorf("invalid log format %q", format)
	}

	zl := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	sl := slog.New(slogzerolog.Option{Level: slogLevel(lvl), Logger: &zl}.NewZerologHandler())
	return zl, sl, nil
}

func slogLevel(lvl zerolog.Level) slog.Level {
	switch {
	case lvl <= zerolog.DebugLevel:
		return slog.LevelDebug
	case lvl == zerolog.InfoLevel:
		return slog.LevelInfo
	case lvl == zerolog.WarnLevel:
		return slog.LevelWarn
	}
	return slog.LevelError
}
