// Package watcher delivers change notifications for a single file.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned by Next once the underlying watcher has shut down.
var ErrClosed = errors.New("watcher closed")

// DefaultOps are the operations that produce a notification when no
// explicit set is configured.
var DefaultOps = fsnotify.Write | fsnotify.Create

// Notification signals that the watched file may have changed.
type Notification struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

// String implements fmt.Stringer.
func (n Notification) String() string {
	return fmt.Sprintf("%s %q", n.Op, n.Path)
}

// SetupError reports that the watcher could not be created or could not
// register the target.
type SetupError struct {
	Stage string // "create" or "register"
	Path  string
	Err   error
}

func (e *SetupError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s watcher: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s watch on %s: %v", e.Stage, e.Path, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// SourceError reports a failure of the notification stream itself.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("event source: %v", e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Options configures a Watcher.
type Options struct {
	// Ops selects which operations on the target produce a notification.
	// Zero means DefaultOps.
	Ops fsnotify.Op
}

// Watcher watches one file. The file's directory is registered with
// fsnotify and events are filtered down to the file's name, so editors that
// save by writing a temporary file and renaming it over the target keep
// producing notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	target    string
	ops       fsnotify.Op
}

// New creates a watcher for path. The target is not registered until Start.
func New(path string, opts Options) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &SetupError{Stage: "create", Err: err}
	}

	ops := opts.Ops
	if ops == 0 {
		ops = DefaultOps
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		path:      path,
		ops:       ops,
	}, nil
}

// Start registers the target file. A symlinked target is resolved first:
// writes land in the directory of the file it points to.
func (w *Watcher) Start() error {
	absPath, err := filepath.Abs(w.path)
	if err != nil {
		return &SetupError{Stage: "register", Path: w.path, Err: err}
	}
	absPath, err = filepath.EvalSymlinks(absPath)
	if err != nil {
		return &SetupError{Stage: "register", Path: w.path, Err: err}
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return &SetupError{Stage: "register", Path: w.path, Err: err}
	}
	if info.IsDir() {
		return &SetupError{Stage: "register", Path: w.path, Err: errors.New("is a directory")}
	}

	if err := w.fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		return &SetupError{Stage: "register", Path: w.path, Err: err}
	}

	w.target = absPath
	return nil
}

// Next blocks until the next notification for the target or a failure of
// the underlying watcher. There is no timeout.
func (w *Watcher) Next() (Notification, error) {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return Notification{}, &SourceError{Err: ErrClosed}
			}
			if !w.matches(event) {
				continue
			}
			return Notification{Path: event.Name, Op: event.Op, Time: time.Now()}, nil

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return Notification{}, &SourceError{Err: ErrClosed}
			}
			return Notification{}, &SourceError{Err: err}
		}
	}
}

// matches reports whether event concerns the target with a selected op.
func (w *Watcher) matches(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.target {
		return false
	}
	return event.Op&w.ops != 0
}

// Path returns the path as given to New.
func (w *Watcher) Path() string {
	return w.path
}

// Target returns the resolved absolute path being matched. It is empty
// until Start succeeds.
func (w *Watcher) Target() string {
	return w.target
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// ParseOps converts operation names ("write", "create", "remove", "rename",
// "chmod") into an fsnotify.Op mask. An empty list yields DefaultOps.
func ParseOps(names []string) (fsnotify.Op, error) {
	if len(names) == 0 {
		return DefaultOps, nil
	}

	var ops fsnotify.Op
	for _, name := range names {
		switch strings.ToLower(name) {
		case "write":
			ops |= fsnotify.Write
		case "create":
			ops |= fsnotify.Create
		case "remove":
			ops |= fsnotify.Remove
		case "rename":
			ops |= fsnotify.Rename
		case "chmod":
			ops |= fsnotify.Chmod
		default:
			return 0, fmt.Errorf("unknown event type: %s", name)
		}
	}
	return ops, nil
}
