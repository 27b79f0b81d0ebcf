package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWithOptionsAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.log")
	if err := os.WriteFile(path, []byte("previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := NewWithOptions(Options{File: path, Level: "debug"})
	if err != nil {
		t.Fatalf("NewWithOptions() error = %v", err)
	}
	l.WithField("file", "a.mp3").Info("processing")
	l.WithError(errors.New("boom")).Error("failed")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.HasPrefix(got, "previous run\n") {
		t.Fatalf("log file was truncated: %q", got)
	}
	for _, want := range []string{"processing", "file=a.mp3", "error=boom"} {
		if !strings.Contains(got, want) {
			t.Fatalf("log missing %q:\n%s", want, got)
		}
	}
}

func TestNewWithOptionsBadPath(t *testing.T) {
	_, err := NewWithOptions(Options{File: filepath.Join(t.TempDir(), "missing", "x.log")})
	if err == nil {
		t.Fatal("expected error for unwritable log path")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"":        logrus.InfoLevel,
		"debug":   logrus.DebugLevel,
		"WARN":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWithErrorNil(t *testing.T) {
	l := Discard()
	if l.WithError(nil) != l.Entry {
		t.Fatal("WithError(nil) should return the base entry")
	}
}

func TestConsoleHookOnlyWithLogFile(t *testing.T) {
	stdoutOnly, err := NewWithOptions(Options{Console: true})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(stdoutOnly.Logger.Hooks[logrus.WarnLevel]); n != 0 {
		t.Fatalf("stdout logger has %d warn hooks, want 0", n)
	}

	withFile, err := NewWithOptions(Options{File: filepath.Join(t.TempDir(), "batch.log"), Console: true})
	if err != nil {
		t.Fatal(err)
	}
	defer withFile.Close()
	if n := len(withFile.Logger.Hooks[logrus.WarnLevel]); n != 1 {
		t.Fatalf("file logger has %d warn hooks, want 1", n)
	}
}
