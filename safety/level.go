// Package safety implements the hierarchical Safety System state machine
// (spec.md §4.3): SafetyLevel nodes, SafetyEvent transitions, and the
// SafetySystem that evaluates critical inputs, applies at most one event
// per tick, and runs the active level's TimeDomains.
package safety

import (
	"time"

	"github.com/Darkplayer180/eeros-framework/control"
)

// Event is an opaque identifier, unique within one Properties object.
type Event string

// Fault is the critical event raised when a block's Run returns an error
// during active-level execution (spec.md §4.3, "Failure model").
const Fault Event = "Fault"

// InputAction stages Event when a critical input's sampled value equals
// Expect. Sample must be non-blocking and side-effect free besides reading
// the HAL handle (spec.md §4.6).
type InputAction struct {
	Name   string
	Expect bool
	Sample func(now time.Duration) (bool, error)
	Event  Event
}

// transition describes one outgoing edge of a Level.
type transition struct {
	target  *Level
	private bool
}

// Level is a named node in the safety state machine.
type Level struct {
	name        string
	domains     []*control.TimeDomain
	actions     []InputAction
	transitions map[Event]transition
	onEntry     func()
	onExit      func()
}

// NewLevel creates an empty Level named name.
func NewLevel(name string) *Level {
	return &Level{name: name, transitions: make(map[Event]transition)}
}

// Name returns the level's name.
func (l *Level) Name() string { return l.name }

// WithDomain appends a TimeDomain to tick while this level is active, in
// declaration order (spec.md §4.3 step 3). Returns l for chaining.
func (l *Level) WithDomain(td *control.TimeDomain) *Level {
	l.domains = append(l.domains, td)
	return l
}

// OnInput registers a critical-input action evaluated every tick this level
// is active (spec.md §4.3 step 1). Returns l for chaining.
func (l *Level) OnInput(action InputAction) *Level {
	l.actions = append(l.actions, action)
	return l
}

// AllowPublic declares an externally-triggerable transition on ev to
// target. Returns l for chaining.
func (l *Level) AllowPublic(ev Event, target *Level) *Level {
	l.transitions[ev] = transition{target: target, private: false}
	return l
}

// AllowPrivate declares a transition on ev to target that may only be
// applied when ev was staged by one of this level's own input actions in
// the same tick. Returns l for chaining.
func (l *Level) AllowPrivate(ev Event, target *Level) *Level {
	l.transitions[ev] = transition{target: target, private: true}
	return l
}

// OnEntry registers the handler run once when this level becomes active.
// Returns l for chaining.
func (l *Level) OnEntry(fn func()) *Level {
	l.onEntry = fn
	return l
}

// OnExit registers the handler run once when this level stops being
// active. Returns l for chaining.
func (l *Level) OnExit(fn func()) *Level {
	l.onExit = fn
	return l
}
