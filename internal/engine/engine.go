// Package engine keeps the last observed content of the watched file and,
// on every notification, re-reads the file, reports what changed and keeps
// the fresh content as the new snapshot.
//
// Every failure is fatal: once a read or a receive fails the engine is
// terminated and refuses further work. Reporting against stale content
// after losing track of the file would be misleading.
package engine

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"

	"filewatch/internal/diff"
	"filewatch/internal/logging"
	"filewatch/internal/watcher"
)

// ErrTerminated is returned by an engine that has already failed.
var ErrTerminated = errors.New("engine terminated")

// Snapshot is the full content of the watched file as last read.
type Snapshot []byte

// State is the engine lifecycle state.
type State int

const (
	// Uninitialized means no snapshot has been taken yet.
	Uninitialized State = iota
	// Watching means a snapshot exists and notifications are processed.
	Watching
	// Terminated means a failure occurred. There is no way back.
	Terminated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Watching:
		return "watching"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Source delivers notifications. Next blocks until a notification arrives
// or the source fails.
type Source interface {
	Next() (watcher.Notification, error)
}

// Engine owns the snapshot of one file.
type Engine struct {
	path     string
	snapshot Snapshot
	state    State
	printer  *diff.Printer
	log      *logging.Logger
}

// New returns an uninitialized engine for path writing reports to printer.
// A nil log discards log output.
func New(path string, printer *diff.Printer, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Discard()
	}
	return &Engine{
		path:    path,
		printer: printer,
		log:     log.WithComponent("engine"),
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (e *Engine) Snapshot() Snapshot {
	return e.snapshot
}

// Init takes the initial snapshot.
func (e *Engine) Init() error {
	if e.state != Uninitialized {
		return errors.New("engine already initialized")
	}

	snap, err := Load(e.path)
	if err != nil {
		e.state = Terminated
		return err
	}

	e.snapshot = snap
	e.state = Watching
	e.log.Info("initial snapshot", "path", e.path, "size", len(snap), "sha256", digest(snap))
	return nil
}

// Process handles one notification: re-read, report, replace.
func (e *Engine) Process(n watcher.Notification) error {
	switch e.state {
	case Uninitialized:
		return errors.New("engine not initialized")
	case Terminated:
		return ErrTerminated
	}

	e.log.Info("received event", "event", n.String(), "op", n.Op.String())

	snap, report, err := Refresh(e.snapshot, e.path, e.printer)
	if err != nil {
		e.state = Terminated
		return err
	}

	e.snapshot = snap
	e.log.Debug("snapshot replaced",
		"size", len(snap),
		"sha256", digest(snap),
		"entries", len(report.Entries),
	)
	return nil
}

// Run processes notifications from src until something fails. It only
// returns on failure, with an *IOError or an *EventSourceError, or with
// ErrTerminated without receiving anything if the engine has already
// failed. There is no cancellation; the loop ends with the process otherwise.
func (e *Engine) Run(src Source) error {
	switch e.state {
	case Terminated:
		return ErrTerminated
	case Uninitialized:
		if err := e.Init(); err != nil {
			return err
		}
	}

	for {
		n, err := src.Next()
		if err != nil {
			e.state = Terminated
			return &EventSourceError{Err: err}
		}
		if err := e.Process(n); err != nil {
			return err
		}
	}
}

// Load reads the whole file at path.
func Load(path string) (Snapshot, error) {
	return read(path, 0)
}

// Refresh re-reads path, prints the differences against current and
// returns the fresh content together with the report that was printed.
func Refresh(current Snapshot, path string, p *diff.Printer) (Snapshot, diff.Report, error) {
	fresh, err := read(path, len(current))
	if err != nil {
		return nil, diff.Report{}, err
	}

	report := diff.Compute(current, fresh)
	if err := p.Print(report); err != nil {
		return nil, diff.Report{}, &IOError{Op: "report", Path: path, Err: err}
	}
	return fresh, report, nil
}

// read opens path read-only and reads it to the end. sizeHint pre-sizes
// the buffer.
func read(path string, sizeHint int) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var buf bytes.Buffer
	buf.Grow(sizeHint)
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return Snapshot(buf.Bytes()), nil
}

// digest returns a short SHA-256 fingerprint for log lines.
func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}
