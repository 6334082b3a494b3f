package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLogging configures the default slog logger from LOG_LEVEL and LOG_FILE.
// Logs go to stderr so a dry-run document on stdout stays clean. When LOG_FILE is set,
// records are also appended to that file, rotated at 10 MB with 3 backups kept for 28 days.
// The returned function closes the log file.
func InitLogging() func() {
	var w io.Writer = os.Stderr
	closeFn := func() {}

	if path := os.Getenv("LOG_FILE"); path != "" {
		rotator := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = io.MultiWriter(os.Stderr, rotator)
		closeFn = func() { rotator.Close() }
	}

	slog.SetDefault(slog.New(NewHandler(w, ParseLevel(os.Getenv("LOG_LEVEL")))))
	return closeFn
}

// NewHandler returns the text handler used for all process logs.
func NewHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
}

// ParseLevel maps debug, info, warn/warning and error (any case) to a level. Anything else is info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
