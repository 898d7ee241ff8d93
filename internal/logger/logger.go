package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Logger provides logging functionality
type Logger struct {
	*slog.Logger
	file *os.File
}

// Options controls where log records go
type Options struct {
	// Dir receives a timestamped log file when set
	Dir string
	// Verbose mirrors debug records to Stderr
	Verbose bool
	Stderr  io.Writer
}

// NewLogger creates a new logger instance
func NewLogger(opts Options) (*Logger, error) {
	var writers []io.Writer
	var file *os.File

	if opts.Dir != "" {
		// Create log directory if it doesn't exist
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		timestamp := time.Now().Format("2006-01-02_15-04-05")
		logPath := filepath.Join(opts.Dir, fmt.Sprintf("run_%s.log", timestamp))
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		file = f
		writers = append(writers, f)
	}

	if opts.Verbose {
		stderr := opts.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		writers = append(writers, stderr)
	}

	if len(writers) == 0 {
		return &Logger{Logger: Discard()}, nil
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: slog.LevelDebug})
	return &Logger{
		Logger: slog.New(handler),
		file:   file,
	}, nil
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
