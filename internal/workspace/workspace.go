// Package workspace manages the shared scratch directory used by pipeline work
// units. Ownership of an artifact is encoded in its name: everything a unit
// creates lives under a subdirectory (and file names) embedding the unit ID, so
// cleanup needs no index and no lock between workers.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
)

// DefaultDir is the scratch directory used when none is configured.
const DefaultDir = "temp_files"

const lockName = ".workspace.lock"

// ErrLocked is returned by Lock when another batch run holds the workspace.
var ErrLocked = errors.New("workspace is in use by another batch run")

type Workspace struct {
	dir  string
	log  *logrus.Entry
	lock *flock.Flock

	removeAll func(path string) error
}

// CleanupResult lists what a cleanup pass removed and what it could not.
type CleanupResult struct {
	Removed []string
	Freed   uint64
	Errors  []CleanupError
}

// CleanupError pairs a path with its removal error.
type CleanupError struct {
	Path  string
	Error error
}

// Acquire returns the shared scratch directory, creating it if absent. Safe to call
// from many workers at once.
func Acquire(dir string, log *logrus.Entry) (*Workspace, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = DefaultDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	return &Workspace{dir: abs, log: log.WithField("component", "workspace"), removeAll: os.RemoveAll}, nil
}

func (w *Workspace) Dir() string {
	return w.dir
}

// Namespace is the name of the per-unit subdirectory. It embeds the unit ID, which
// is how Cleanup recognizes ownership.
func Namespace(id string) string {
	return "unit_" + id
}

// Path returns a location for name inside the unit's namespace, creating the
// namespace directory on first use.
func (w *Workspace) Path(id, name string) (string, error) {
	if id == "" {
		return "", errors.New("workspace: empty unit id")
	}
	ns := filepath.Join(w.dir, Namespace(id))
	if err := os.MkdirAll(ns, 0o755); err != nil {
		return "", fmt.Errorf("create unit namespace: %w", err)
	}
	return filepath.Join(ns, name), nil
}

// Cleanup removes every entry in the workspace whose name contains id. Individual
// failures are logged and collected; the scan keeps going.
func (w *Workspace) Cleanup(id string) CleanupResult {
	if id == "" {
		return CleanupResult{}
	}
	return w.remove(func(name string) bool { return strings.Contains(name, id) })
}

// CleanupAll is the end-of-batch safety net: it removes everything except the
// workspace lock file.
func (w *Workspace) CleanupAll() CleanupResult {
	return w.remove(func(name string) bool { return name != lockName })
}

// Entries lists the names currently present in the workspace, excluding the lock file.
func (w *Workspace) Entries() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Name() == lockName {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (w *Workspace) remove(match func(name string) bool) CleanupResult {
	var result CleanupResult
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			w.log.WithField("error", err.Error()).Error("error in cleanup")
			result.Errors = append(result.Errors, CleanupError{Path: w.dir, Error: err})
		}
		return result
	}

	for _, entry := range entries {
		if !match(entry.Name()) {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		size := pathSize(path)
		if err := w.removeAll(path); err != nil {
			w.log.WithFields(logrus.Fields{"path": path, "error": err.Error()}).Error("error removing temporary file")
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		result.Removed = append(result.Removed, path)
		result.Freed += size
	}

	if len(result.Removed) > 0 {
		w.log.WithFields(logrus.Fields{
			"removed": len(result.Removed),
			"freed":   humanize.Bytes(result.Freed),
		}).Debug("workspace cleanup")
	}
	return result
}

// Lock takes an advisory lock on the workspace for the duration of a batch so two
// runs never share scratch space.
func (w *Workspace) Lock() error {
	fl := flock.New(filepath.Join(w.dir, lockName))
	ok, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("lock workspace: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, w.dir)
	}
	w.lock = fl
	return nil
}

// Unlock releases the lock taken by Lock and removes the lock file.
func (w *Workspace) Unlock() error {
	if w.lock == nil {
		return nil
	}
	err := w.lock.Unlock()
	_ = os.Remove(w.lock.Path())
	w.lock = nil
	return err
}

func pathSize(path string) uint64 {
	var size uint64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += uint64(info.Size())
		}
		return nil
	})
	return size
}
