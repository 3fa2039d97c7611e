package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger logs text to stderr and JSON to logFile.
// Returns the logger and a cleanup function to close the file.
func SetupLogger(logFile string, level slog.Level, verbose bool) (*slog.Logger, func() error) {
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: stderrLevel(level, verbose)}))
		logger.Error("open log file failed, logging to stderr only", "file", logFile, "error", err)
		return logger, func() error { return nil }
	}
	return SetupLoggerWithWriters(os.Stderr, file, level, verbose), file.Close
}

// SetupLoggerWithWriters fans records out to a text handler on stderr and a
// JSON handler on file. The file gets every record at level; stderr shares the
// terminal with the interview, so it only shows warnings unless verbose.
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level, verbose bool) *slog.Logger {
	return slog.New(slogmulti.Fanout(
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: stderrLevel(level, verbose)}),
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}),
	))
}

func stderrLevel(level slog.Level, verbose bool) slog.Level {
	if verbose {
		return level
	}
	return max(level, slog.LevelWarn)
}
