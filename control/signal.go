// Package control implements the block-diagram dataflow layer of EEROS-Go:
// typed Signal values, Input/Output ports, the Block contract, and
// TimeDomain, the unit of atomic, topologically-ordered execution.
package control

import "time"

// Signal is an immutable, timestamped value of type T, written by exactly
// one producer Output and readable by any number of consumer Inputs within
// the same tick.
type Signal[T any] struct {
	value     T
	timestamp time.Duration
	name      string
}

// NewSignal constructs a Signal carrying value, stamped at timestamp.
func NewSignal[T any](value T, timestamp time.Duration) Signal[T] {
	return Signal[T]{value: value, timestamp: timestamp}
}

// Value returns the carried value.
func (s Signal[T]) Value() T { return s.value }

// Timestamp returns the monotonic timestamp the value was produced at.
func (s Signal[T]) Timestamp() time.Duration { return s.timestamp }

// Name returns the optional signal name, empty if unset.
func (s Signal[T]) Name() string { return s.name }

// Named returns a copy of s with name attached.
func (s Signal[T]) Named(name string) Signal[T] {
	s.name = name
	return s
}
