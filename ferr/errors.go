// Package ferr defines the abstract error kinds shared by every EEROS-Go
// component: construction-time configuration/graph errors, and the runtime
// fault/overrun/rejection kinds produced by the tick thread.
//
// Each kind is a small struct with its own fields. The kinds that carry a
// Cause (ConfigurationError, FaultError) expose it through Unwrap, following
// the same Unwrap-based chaining as the teacher's TypeError, RangeError, and
// TimeoutError (eventloop/errors.go).
package ferr

import "fmt"

// ConfigurationError reports a problem discovered while constructing a
// static description: an unreachable level, unknown event, dangling input,
// duplicate name, or missing HAL entry. Always fatal to construction.
type ConfigurationError struct {
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Message == "" {
		return "configuration error"
	}
	return "configuration error: " + e.Message
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

// GraphErrorKind distinguishes the two ways TimeDomain.Freeze can fail.
type GraphErrorKind int

const (
	// CycleDetected means the contained blocks do not form a DAG.
	CycleDetected GraphErrorKind = iota
	// DanglingInput means an Input in the domain was never connected.
	DanglingInput
)

func (k GraphErrorKind) String() string {
	switch k {
	case CycleDetected:
		return "CycleDetected"
	case DanglingInput:
		return "DanglingInput"
	default:
		return "UnknownGraphError"
	}
}

// GraphError reports a structural problem found at TimeDomain.Freeze.
type GraphError struct {
	Kind    GraphErrorKind
	Message string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsCycleDetected reports whether err is a GraphError of kind CycleDetected.
func IsCycleDetected(err error) bool { return hasKind(err, CycleDetected) }

// IsDanglingInput reports whether err is a GraphError of kind DanglingInput.
func IsDanglingInput(err error) bool { return hasKind(err, DanglingInput) }

func hasKind(err error, k GraphErrorKind) bool {
	ge, ok := err.(*GraphError)
	return ok && ge.Kind == k
}

// IndexOutOfRangeError reports a bad port index on a block. Bubbles up as a
// Fault if the caller does not handle it directly.
type IndexOutOfRangeError struct {
	Block   string
	Index   int
	Message string
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range on block %q: %s", e.Index, e.Block, e.Message)
}

// FaultError wraps any error raised from a Block's Run or a Periodic's
// body. It is what the tick thread catches and converts into the Fault
// safety event.
type FaultError struct {
	Source string
	Cause  error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("fault in %s: %v", e.Source, e.Cause)
}

func (e *FaultError) Unwrap() error { return e.Cause }

// OverrunError describes one tick that did not finish within its period.
// Never fatal by itself; the Executor logs it, as a warning, only from the
// second consecutive occurrence on.
type OverrunError struct {
	Tick     uint64
	Period   string
	Overrun  string
	Consecutive uint32
}

func (e *OverrunError) Error() string {
	return fmt.Sprintf("tick %d overran period %s by %s (consecutive=%d)", e.Tick, e.Period, e.Overrun, e.Consecutive)
}

// RejectReason enumerates why TriggerEvent refused an event.
type RejectReason int

const (
	// RejectedPrivate means a private event was triggered from outside an
	// input-action callback of the current level.
	RejectedPrivate RejectReason = iota
	// NotAllowedInLevel means the event has no transition from the current level.
	NotAllowedInLevel
	// QueueFull means the bounded event queue had no room.
	QueueFull
)

func (r RejectReason) String() string {
	switch r {
	case RejectedPrivate:
		return "RejectedPrivate"
	case NotAllowedInLevel:
		return "NotAllowedInLevel"
	case QueueFull:
		return "QueueFull"
	default:
		return "UnknownRejectReason"
	}
}

// RejectedEventError describes a refused event by its RejectReason.
// safety.System.TriggerEvent does not return it: that method reports a
// refusal as a safety.TriggerResult value.
type RejectedEventError struct {
	Reason RejectReason
}

func (e *RejectedEventError) Error() string { return "event rejected: " + e.Reason.String() }

// Wrap joins a message to a cause, in the style of the teacher's WrapError
// helper (eventloop/errors.go), using %w so errors.Is/errors.As still see
// the original cause.
func Wrap(message string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s", message)
	}
	return fmt.Errorf("%s: %w", message, cause)
}
