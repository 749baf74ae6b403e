package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Logger represents application logger.
type Logger struct {
	*slog.Logger
	file *os.File
	path string
}

// NewFile creates a Logger backed by a fresh timestamped log file inside dir,
// creating dir if needed. The logger is opened once per run; callers must
// Close it on exit.
func NewFile(dir string, level int) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("user_migration_%s.log", time.Now().Format("20060102_150405")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &Logger{
		Logger: slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.Level(level)})),
		file:   file,
		path:   path,
	}, nil
}

// With returns a Logger whose records carry the given attributes. The
// underlying file handle is shared with the receiver.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		file:   l.file,
		path:   l.path,
	}
}

// Path returns the log file path, or empty when no file backs the logger.
func (l *Logger) Path() string {
	return l.path
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
