// Package diff compares two byte sequences position by position and
// renders the differences as human-readable lines.
//
// The comparison is purely positional: byte i of the old content is
// compared with byte i of the new content. Insertions are not detected,
// so inserting one byte at the front of a file reports every following
// position as changed.
package diff

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"filewatch/internal/pairing"
)

// DefaultSeparator is printed before every report.
var DefaultSeparator = strings.Repeat("-", 37)

// Kind classifies a differing position.
type Kind int

const (
	// Added means the position exists only in the new content.
	Added Kind = iota
	// Deleted means the position exists only in the old content.
	Deleted
	// Changed means both contents hold different bytes at the position.
	Changed
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	case Changed:
		return "changed"
	default:
		return "unknown"
	}
}

// Entry is a single differing position.
type Entry struct {
	Position int
	Old      pairing.Option[byte]
	New      pairing.Option[byte]
}

// Kind derives the classification from which sides are present.
func (e Entry) Kind() Kind {
	switch {
	case e.Old.IsSome() && e.New.IsNone():
		return Deleted
	case e.Old.IsNone() && e.New.IsSome():
		return Added
	default:
		return Changed
	}
}

// String renders the entry as one report line.
func (e Entry) String() string {
	o, _ := e.Old.Get()
	n, _ := e.New.Get()
	switch e.Kind() {
	case Deleted:
		return fmt.Sprintf("Byte %d deleted", e.Position)
	case Added:
		return fmt.Sprintf("Byte %d added: 0x%x", e.Position, n)
	default:
		return fmt.Sprintf("Byte %d changed from 0x%x to 0x%x", e.Position, o, n)
	}
}

// Report is the outcome of comparing two contents.
type Report struct {
	OldSize int
	NewSize int
	Entries []Entry
}

// SizeChanged reports whether the two contents differ in length.
func (r Report) SizeChanged() bool {
	return r.OldSize != r.NewSize
}

// Empty reports whether the contents were identical.
func (r Report) Empty() bool {
	return !r.SizeChanged() && len(r.Entries) == 0
}

// Compute compares before and after and returns every differing position in
// increasing order.
func Compute(before, after []byte) Report {
	r := Report{OldSize: len(before), NewSize: len(after)}
	for i, p := range pairing.All(slices.Values(before), slices.Values(after)) {
		o, hasOld := p.A.Get()
		n, hasNew := p.B.Get()
		if hasOld && hasNew && o == n {
			continue
		}
		r.Entries = append(r.Entries, Entry{Position: i, Old: p.A, New: p.B})
	}
	return r
}

// Printer writes reports to an output stream.
type Printer struct {
	W         io.Writer
	Separator string
}

// NewPrinter returns a Printer writing to w with the default separator.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{W: w, Separator: DefaultSeparator}
}

// Print writes the separator, an optional size notice and one line per entry.
func (p *Printer) Print(r Report) error {
	if _, err := fmt.Fprintln(p.W, p.Separator); err != nil {
		return err
	}
	if r.SizeChanged() {
		if _, err := fmt.Fprintf(p.W, "File size changed from %d to %d\n", r.OldSize, r.NewSize); err != nil {
			return err
		}
	}
	for _, e := range r.Entries {
		if _, err := fmt.Fprintln(p.W, e.String()); err != nil {
			return err
		}
	}
	return nil
}

// Emit computes the differences between before and after and prints them to w.
func Emit(w io.Writer, before, after []byte) (Report, error) {
	r := Compute(before, after)
	return r, NewPrinter(w).Print(r)
}
