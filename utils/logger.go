package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger provides leveled logging throughout the application.
type Logger struct {
	log  *logrus.Logger
	file *os.File
}

// NewLogger creates a new Logger writing to stdout.
func NewLogger() *Logger {
	return newLogger(os.Stdout, nil)
}

// OpenLogger creates a Logger writing to stdout and appending to the file at path.
func OpenLogger(path, level string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open %q: %w", path, err)
	}

	l := newLogger(io.MultiWriter(os.Stdout, f), f)
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("logger: %w", err)
		}
		l.log.SetLevel(parsed)
	}
	return l, nil
}

func newLogger(out io.Writer, f *os.File) *Logger {
	lg := logrus.New()
	lg.SetOutput(out)
	lg.SetLevel(logrus.InfoLevel)
	lg.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	return &Logger{log: lg, file: f}
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) Info(format string, args ...any) {
	l.log.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.log.Debugf(format, args...)
}
