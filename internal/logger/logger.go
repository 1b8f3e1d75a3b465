// Package logger builds the slog logger used by the CLI.
//
// Levels follow the classic five-step verbosity scale: debug, info,
// warning, error, critical. Critical sits above slog's error level and
// prints as CRITICAL.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LevelCritical is the highest level; messages at this level always print
// unless logging is discarded.
const LevelCritical = slog.Level(12)

// Level names accepted by ParseLevel, in increasing order.
var LevelNames = []string{"debug", "info", "warning", "error", "critical"}

// ParseLevel parses a level name. Accepts: debug, info, warn/warning,
// error, critical (case-insensitive). Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "critical":
		return LevelCritical, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q (want one of %s)", level, strings.Join(LevelNames, ", "))
	}
}

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevel,
	})
	return slog.New(h)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Critical logs at LevelCritical.
func Critical(ctx context.Context, l *slog.Logger, msg string, args ...any) {
	l.Log(ctx, LevelCritical, msg, args...)
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch {
	case level >= LevelCritical:
		a.Value = slog.StringValue("CRITICAL")
	case level == slog.LevelWarn:
		a.Value = slog.StringValue("WARNING")
	}
	return a
}
