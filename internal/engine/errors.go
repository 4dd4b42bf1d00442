package engine

import "fmt"

// IOError reports that the watched file could not be read, or that a report
// could not be written. It is always fatal to the engine.
type IOError struct {
	Op   string // "open", "read" or "report"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// EventSourceError reports that the notification source failed.
type EventSourceError struct {
	Err error
}

func (e *EventSourceError) Error() string {
	return fmt.Sprintf("receive event: %v", e.Err)
}

func (e *EventSourceError) Unwrap() error { return e.Err }
