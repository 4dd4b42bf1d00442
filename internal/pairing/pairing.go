// Package pairing zips two sequences of possibly different lengths into
// index-aligned pairs, padding the shorter side with absent values.
//
// Unlike a plain zip, which stops at the shorter input, a Zip keeps going
// until both inputs are exhausted:
//
//	A: a0 a1 a2
//	B: b0
//	=> (a0, b0) (a1, -) (a2, -)
package pairing

import (
	"fmt"
	"iter"
)

// Option holds a value that may be absent.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns a present Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool {
	return o.ok
}

// IsNone reports whether the value is absent.
func (o Option[T]) IsNone() bool {
	return !o.ok
}

// String implements fmt.Stringer.
func (o Option[T]) String() string {
	if !o.ok {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.value)
}

// Pair is one index-aligned slot of a Zip.
type Pair[L, R any] struct {
	A Option[L]
	B Option[R]
}

// fused wraps a pull iterator so that once it reports exhaustion it is
// stopped and never called again.
type fused[T any] struct {
	next func() (T, bool)
	stop func()
	done bool
}

func fuse[T any](seq iter.Seq[T]) *fused[T] {
	next, stop := iter.Pull(seq)
	return &fused[T]{next: next, stop: stop}
}

func (f *fused[T]) pull() Option[T] {
	if f.done {
		return None[T]()
	}
	v, ok := f.next()
	if !ok {
		f.release()
		return None[T]()
	}
	return Some(v)
}

func (f *fused[T]) release() {
	if f.done {
		return
	}
	f.done = true
	f.stop()
}

// Zip pairs up two sequences element by element until both are exhausted.
// A Zip is consumed once; it cannot be rewound.
type Zip[L, R any] struct {
	a *fused[L]
	b *fused[R]
}

// New returns a Zip over a and b. Callers that do not drain the Zip must
// call Stop to release the underlying iterators.
func New[L, R any](a iter.Seq[L], b iter.Seq[R]) *Zip[L, R] {
	return &Zip[L, R]{a: fuse(a), b: fuse(b)}
}

// Next returns the next pair. The boolean is false once both sequences
// are exhausted.
func (z *Zip[L, R]) Next() (Pair[L, R], bool) {
	p := Pair[L, R]{A: z.a.pull(), B: z.b.pull()}
	if p.A.IsNone() && p.B.IsNone() {
		return Pair[L, R]{}, false
	}
	return p, true
}

// Stop releases both underlying iterators. It is safe to call more than once.
func (z *Zip[L, R]) Stop() {
	z.a.release()
	z.b.release()
}

// All returns a sequence of (index, pair) for a and b, counting from zero.
// Breaking out of the range loop early releases both inputs.
func All[L, R any](a iter.Seq[L], b iter.Seq[R]) iter.Seq2[int, Pair[L, R]] {
	return func(yield func(int, Pair[L, R]) bool) {
		z := New(a, b)
		defer z.Stop()

		for i := 0; ; i++ {
			p, ok := z.Next()
			if !ok || !yield(i, p) {
				return
			}
		}
	}
}
