// Package sequencer implements step-structured cooperative procedures
// (spec.md §4.5): a Sequence is an ordered list of named steps, each
// returning Next, Goto(name), or Done; a Sequencer drives one Sequence on
// a dedicated goroutine, exposing Start/IsTerminated/Join/Abort.
package sequencer

import (
	"sync"

	"github.com/Darkplayer180/eeros-framework/safety"
)

// Result is what a step returns to tell the Sequencer what runs next.
type Result struct {
	kind indicator
	goal string
}

type indicator int

const (
	indicatorNext indicator = iota
	indicatorGoto
	indicatorDone
)

// Next continues to the step immediately following the current one in
// declaration order.
func Next() Result { return Result{kind: indicatorNext} }

// Goto jumps to the named step.
func Goto(name string) Result { return Result{kind: indicatorGoto, goal: name} }

// Done terminates the sequence successfully.
func Done() Result { return Result{kind: indicatorDone} }

// Context is passed to every step, giving it access to trigger safety
// events and to invoke nested subsequences.
type Context struct {
	safetySystem *safety.System
	trace        *[]string
	traceMu      *sync.Mutex
	aborted      <-chan struct{}
}

// TriggerEvent enqueues ev on the safety system driving this sequence's
// program; per spec.md §4.5, the event is not observed before the next
// control tick strictly after this call.
func (c *Context) TriggerEvent(ev safety.Event) safety.TriggerResult {
	return c.safetySystem.TriggerEvent(ev)
}

// RunSub runs sub to completion on the calling goroutine (blocking), and
// appends its step trace to the caller's own trace, implementing nested
// subsequence invocation (spec.md §4.5).
func (c *Context) RunSub(sub *Sequence) error {
	sub.run(c.safetySystem, c.trace, c.traceMu, c.aborted)
	return sub.err
}

// NamedStep is one step of a Sequence: a name and the function to run.
type NamedStep struct {
	Name string
	Run  func(ctx *Context) Result
}

// Sequence is an ordered program of named steps (spec.md §3). Steps are
// stored as a slice, not a map, because Next must know declaration order.
type Sequence struct {
	name  string
	steps []NamedStep
	index map[string]int

	err error
}

// NewSequence creates a Sequence named name with the given steps, which
// run starting from steps[0] unless redirected by Goto.
func NewSequence(name string, steps ...NamedStep) *Sequence {
	idx := make(map[string]int, len(steps))
	for i, s := range steps {
		idx[s.Name] = i
	}
	return &Sequence{name: name, steps: steps, index: idx}
}

// Name returns the sequence's name.
func (s *Sequence) Name() string { return s.name }

// Err returns the error recorded if a step name could not be resolved.
func (s *Sequence) Err() error { return s.err }

// run drives the sequence to completion on the calling goroutine,
// appending each visited step's name to trace under traceMu - the same
// mutex CalledSteps takes on the read side, since trace is read
// concurrently with this goroutine's writes. aborted, if non-nil, is
// checked at every step boundary; a closed channel stops the sequence
// before its next step runs.
func (s *Sequence) run(sys *safety.System, trace *[]string, traceMu *sync.Mutex, aborted <-chan struct{}) {
	if len(s.steps) == 0 {
		return
	}
	ctx := &Context{safetySystem: sys, trace: trace, traceMu: traceMu, aborted: aborted}
	i := 0
	for {
		if aborted != nil {
			select {
			case <-aborted:
				return
			default:
			}
		}
		step := s.steps[i]
		traceMu.Lock()
		*trace = append(*trace, step.Name)
		traceMu.Unlock()
		res := step.Run(ctx)
		switch res.kind {
		case indicatorDone:
			return
		case indicatorGoto:
			next, ok := s.index[res.goal]
			if !ok {
				s.err = &unknownStepError{Sequence: s.name, Step: res.goal}
				return
			}
			i = next
		default: // indicatorNext
			i++
			if i >= len(s.steps) {
				return
			}
		}
	}
}

type unknownStepError struct {
	Sequence string
	Step     string
}

func (e *unknownStepError) Error() string {
	return "sequence " + e.Sequence + ": unknown step " + e.Step
}
