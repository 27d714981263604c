package safety

import (
	"sync/atomic"
	"time"

	"github.com/Darkplayer180/eeros-framework/ferr"
	"github.com/Darkplayer180/eeros-framework/internal/ring"
)

// TriggerResult reports the outcome of TriggerEvent, mirroring
// spec.md §4.3's "return Ok or RejectedPrivate/NotAllowedInLevel".
type TriggerResult int

const (
	// Ok means the event was accepted and queued for the next tick.
	Ok TriggerResult = iota
	// RejectedPrivate means a private event was triggered from outside an
	// input-action callback of the current level.
	RejectedPrivate
	// NotAllowedInLevel means the current level has no transition for the event.
	NotAllowedInLevel
	// RejectedQueueFull means the bounded event queue had no room.
	RejectedQueueFull
)

func (r TriggerResult) String() string {
	switch r {
	case Ok:
		return "Ok"
	case RejectedPrivate:
		return "RejectedPrivate"
	case NotAllowedInLevel:
		return "NotAllowedInLevel"
	case RejectedQueueFull:
		return "RejectedQueueFull"
	default:
		return "Unknown"
	}
}

// queuedEvent carries an event plus whether it originated from an
// input-action callback of the level active at staging time, which is what
// a private transition's authorization check needs (spec.md §4.3 step 2).
type queuedEvent struct {
	event       Event
	fromAction  bool
	stagedLevel string
}

// eventQueueCapacity bounds the MPSC ring backing TriggerEvent (spec.md §5,
// "the event queue is a bounded MPSC ring consumed by the tick thread").
const eventQueueCapacity = 64

// System is the runtime Safety System: an atomic current-level snapshot, a
// bounded pending-event queue, and the per-tick algorithm of spec.md §4.3.
//
// The current level is held as an atomic pointer, swapped only by the tick
// goroutine, following the teacher's FastState pattern of exposing a
// lock-free snapshot to any number of readers (eventloop/state.go) while
// confining mutation to a single writer.
type System struct {
	props   *Properties
	current atomic.Pointer[Level]
	queue   *ring.Queue[queuedEvent]
	exited  atomic.Bool
}

// NewSystem constructs a System at props.Entry(), running that level's
// OnEntry handler (if any) immediately, matching the original implementation's
// convention that the entry level's setup runs before the first tick.
func NewSystem(props *Properties) *System {
	s := &System{props: props, queue: ring.New[queuedEvent](eventQueueCapacity)}
	s.current.Store(props.Entry())
	if fn := props.Entry().onEntry; fn != nil {
		fn()
	}
	return s
}

// CurrentLevel is a lock-free snapshot read (spec.md §4.3, "currentLevel():
// snapshot read; lock-free with respect to tick").
func (s *System) CurrentLevel() *Level { return s.current.Load() }

// TriggerEvent enqueues ev for application on the next tick. The caller is
// never an input-action callback, so a private event is always rejected
// here; input actions are applied directly within Tick's evaluation step
// instead, bypassing the queue entirely.
func (s *System) TriggerEvent(ev Event) TriggerResult {
	cur := s.current.Load()
	t, declared := cur.transitions[ev]
	if !declared {
		return NotAllowedInLevel
	}
	if t.private {
		return RejectedPrivate
	}
	if !s.queue.Push(queuedEvent{event: ev, stagedLevel: cur.name}) {
		return RejectedQueueFull
	}
	return Ok
}

// ExitHandler is static and idempotent: the first call arms the stop flag
// that ShouldStop reports to the Executor; subsequent calls are no-ops.
func (s *System) ExitHandler() {
	s.exited.Store(true)
}

// ShouldStop reports whether ExitHandler has been called.
func (s *System) ShouldStop() bool { return s.exited.Load() }

// Tick runs the four-step algorithm of spec.md §4.3 once. now is the
// shared tick timestamp passed through to every active TimeDomain.
//
// A block error surfacing from active-level execution is converted into a
// Fault event and applied immediately (same tick it was raised in, not
// queued): the original implementation's "failure model" treats a fault as
// too urgent to wait a tick, and with no handler for Fault in the level
// that faulted the Executor must abort, which can only happen if Fault is
// resolved before Tick returns.
func (s *System) Tick(now time.Duration) error {
	cur := s.current.Load()

	// step 1: input evaluation. An input action that matches takes
	// precedence over any externally triggered event already queued for
	// this tick: input-actions are safety-critical reactions to hardware,
	// while triggerEvent callers (the sequencer, in practice) only need
	// their event observed at some tick after it fired (spec.md §5,
	// "events triggered at wall time t are observed at the next tick
	// strictly after t" - "a" tick, not necessarily "the very next one
	// uncontested"). At most one input action is staged per tick, the
	// first declared match in the level's action order.
	var staged queuedEvent
	var haveStaged bool
	for _, action := range cur.actions {
		val, err := action.Sample(now)
		if err != nil {
			return s.applyFault(cur, err)
		}
		if val == action.Expect {
			staged = queuedEvent{event: action.Event, fromAction: true, stagedLevel: cur.name}
			haveStaged = true
			break
		}
	}

	// step 2: event application, at most one per tick.
	if haveStaged {
		s.applyTransition(cur, staged)
		cur = s.current.Load()
	} else if qe, ok := s.queue.Pop(); ok {
		s.applyTransition(cur, qe)
		cur = s.current.Load()
	}

	// step 3: active-level execution
	for _, td := range cur.domains {
		if err := td.Tick(now); err != nil {
			return s.applyFault(cur, err)
		}
	}

	return nil
}

// applyTransition performs step 2's authoritative re-check and, on
// success, the exit/assign/entry sequence.
func (s *System) applyTransition(cur *Level, qe queuedEvent) {
	t, declared := cur.transitions[qe.event]
	if !declared {
		return
	}
	if t.private && !(qe.fromAction && qe.stagedLevel == cur.name) {
		return
	}
	if cur.onExit != nil {
		cur.onExit()
	}
	s.current.Store(t.target)
	if t.target.onEntry != nil {
		t.target.onEntry()
	}
}

// applyFault converts a block error into the Fault event and applies it in
// the same tick. If cur has no handler for Fault, it returns a
// ferr.FaultError signalling the Executor must abort.
func (s *System) applyFault(cur *Level, cause error) error {
	t, declared := cur.transitions[Fault]
	if !declared {
		return &ferr.FaultError{Source: cur.name, Cause: cause}
	}
	if cur.onExit != nil {
		cur.onExit()
	}
	s.current.Store(t.target)
	if t.target.onEntry != nil {
		t.target.onEntry()
	}
	return nil
}
