package sequencer

import (
	"sync"

	"github.com/Darkplayer180/eeros-framework/safety"
)

// Sequencer owns a dedicated goroutine that drives one Sequence to
// completion, independent of the tick thread (spec.md §4.5, §5). Aborting
// mid-run signals the goroutine to stop at the next step boundary rather
// than interrupting a running step.
type Sequencer struct {
	root *Sequence
	sys  *safety.System

	mu         sync.Mutex
	started    bool
	terminated chan struct{}
	aborted    chan struct{}
	trace      []string
}

// New constructs a Sequencer that will drive root against sys. The first
// Sequencer constructed for a given SafetySystem is, by original-framework
// convention, the program's main sequencer, but nothing in this package
// enforces that; callers may construct as many as they like.
func New(root *Sequence, sys *safety.System) *Sequencer {
	return &Sequencer{
		root:       root,
		sys:        sys,
		terminated: make(chan struct{}),
		aborted:    make(chan struct{}),
	}
}

// Start launches the driving goroutine. Calling Start twice is a no-op.
func (s *Sequencer) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.terminated)
		s.root.run(s.sys, &s.trace, &s.mu, s.aborted)
	}()
}

// IsTerminated reports whether the driven sequence has returned Done, run
// out of steps, hit an unresolvable Goto, or been aborted.
func (s *Sequencer) IsTerminated() bool {
	select {
	case <-s.terminated:
		return true
	default:
		return false
	}
}

// Join blocks until the sequence terminates.
func (s *Sequencer) Join() { <-s.terminated }

// Abort signals the driving goroutine to stop at the next step boundary.
// Because steps run synchronously to completion once started, Abort takes
// effect between steps, the same "next step boundary" guarantee spec.md §5
// gives for cooperative cancellation; it does not forcibly interrupt a step
// already in progress.
func (s *Sequencer) Abort() {
	select {
	case <-s.aborted:
	default:
		close(s.aborted)
	}
}

// CalledSteps returns the ordered trace of step names visited so far,
// including nested RunSub invocations concatenated in call order.
func (s *Sequencer) CalledSteps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.trace))
	copy(out, s.trace)
	return out
}
