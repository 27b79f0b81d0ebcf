package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultFile is the append-only batch log written next to the working directory.
const DefaultFile = "translation_batch.log"

type Logger struct {
	*logrus.Entry
	closer io.Closer
}

// Options controls where log lines go. The zero value logs to stdout.
type Options struct {
	// File is opened in append mode; every per-chunk and per-file event lands here.
	File string
	// Level overrides LOG_LEVEL when set.
	Level string
	// Console mirrors warnings and errors to stderr when File is set.
	Console bool
}

// NewWithOptions builds a logger writing to opts.File (if any). Callers must Close it.
func NewWithOptions(opts Options) (*Logger, error) {
	base := logrus.New()

	// Local env = pretty text; others = JSON
	env := os.Getenv("ENVIRONMENT")
	if env == "" || env == "local" {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			DisableColors:   opts.File != "",
		})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	var closer io.Closer
	base.SetOutput(os.Stdout)
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return &Logger{Entry: logrus.NewEntry(base)}, fmt.Errorf("open log file: %w", err)
		}
		base.SetOutput(f)
		closer = f
	}
	// without a file, warnings already reach the terminal through stdout
	if opts.Console && opts.File != "" {
		base.AddHook(&consoleHook{out: os.Stderr})
	}

	level := opts.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	base.SetLevel(ParseLevel(level))

	return &Logger{Entry: logrus.NewEntry(base), closer: closer}, nil
}

// ParseLevel maps a config string to a logrus level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard returns a logger that drops everything. Used by tests and library callers
// that don't care about logs.
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{Entry: logrus.NewEntry(base)}
}

// Close releases the log file, if one was opened.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}

// Component scopes the logger to one package-level subsystem.
func (l *Logger) Component(name string) *logrus.Entry {
	return l.Entry.WithField("component", name)
}

type consoleHook struct {
	out io.Writer
}

func (h *consoleHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
}

func (h *consoleHook) Fire(e *logrus.Entry) error {
	msg := e.Message
	if file, ok := e.Data["file"]; ok {
		msg = fmt.Sprintf("%s (%v)", msg, file)
	}
	_, err := fmt.Fprintf(h.out, "%s: %s\n", strings.ToUpper(e.Level.String()), msg)
	return err
}
