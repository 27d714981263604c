package executor

import (
	"sync/atomic"
	"time"

	"github.com/Darkplayer180/eeros-framework/ferr"
	"github.com/joeycumines/go-catrate"

	"github.com/Darkplayer180/eeros-framework/eeroslog"
)

// state mirrors the shape of the teacher's FastState lifecycle
// (eventloop/state.go), trimmed to the three states an Executor actually
// passes through: it never needs Sleeping or a separate Terminating phase,
// since the tick loop either is running or has fully stopped.
type state uint32

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Metrics exposes the small atomic counters a tick thread accumulates,
// loosely grounded on eventloop/metrics.go's shape (plain atomic counters,
// no percentile tracking - the Executor only needs a fault-storm signal,
// not latency distributions).
type Metrics struct {
	Ticks              atomic.Uint64
	Overruns           atomic.Uint64
	ConsecutiveOverrun atomic.Uint32
	LastTickDuration   atomic.Int64
}

// Executor runs the single realtime tick loop described in spec.md §4.4:
// the main task (always the Safety System) first, then every registered
// Periodic whose period divides into the current tick count, in
// topological order of the `after` relation.
type Executor struct {
	period   time.Duration
	mainTask Body

	tasks []*Periodic
	order []*Periodic

	st      atomic.Uint32
	stopReq atomic.Bool

	Metrics Metrics

	log     *eeroslog.Logger
	limiter *catrate.Limiter
}

// New constructs an Executor whose base tick period is period. log, if
// nil, defaults to a console logger with no limiter. Overrun warnings go
// through log.WarnLimited, so they are throttled only by log's own limiter.
func New(period time.Duration, log *eeroslog.Logger) *Executor {
	if log == nil {
		log = eeroslog.NewConsole("executor", 0, nil)
	}
	return &Executor{period: period, log: log, limiter: eeroslog.DefaultOverrunLimiter()}
}

// SetMainTask registers the Safety System (or any Body) as the task that
// always runs first, every tick, at the Executor's base period.
func (e *Executor) SetMainTask(body Body) { e.mainTask = body }

// Add registers an extra Periodic task. Rejected once Run has started, and
// rejected if doing so would introduce a cycle in the `after` relation, or
// if p.worker is set despite p having a declared successor.
func (e *Executor) Add(p *Periodic) error {
	if state(e.st.Load()) != stateIdle {
		return &ferr.ConfigurationError{Message: "executor already running; cannot add periodic " + p.name}
	}
	e.tasks = append(e.tasks, p)
	if err := e.computeOrder(); err != nil {
		e.tasks = e.tasks[:len(e.tasks)-1]
		return err
	}
	return nil
}

// computeOrder runs Kahn's algorithm over the `after` relation restricted
// to tasks registered on this Executor, the same approach as
// control.TimeDomain.Freeze applied to a different edge relation.
func (e *Executor) computeOrder() error {
	member := make(map[*Periodic]bool, len(e.tasks))
	for _, t := range e.tasks {
		member[t] = true
	}

	indegree := make(map[*Periodic]int, len(e.tasks))
	dependents := make(map[*Periodic][]*Periodic, len(e.tasks))
	hasSuccessor := make(map[*Periodic]bool, len(e.tasks))
	for _, t := range e.tasks {
		indegree[t] = 0
	}
	for _, t := range e.tasks {
		for _, pred := range t.after {
			if member[pred] {
				indegree[t]++
				dependents[pred] = append(dependents[pred], t)
				hasSuccessor[pred] = true
			}
		}
	}

	for _, t := range e.tasks {
		if t.worker && hasSuccessor[t] {
			return &ferr.ConfigurationError{Message: "periodic " + t.name + " is dispatched to a worker but has a declared successor"}
		}
	}

	var queue []*Periodic
	for _, t := range e.tasks {
		if indegree[t] == 0 {
			queue = append(queue, t)
		}
	}

	order := make([]*Periodic, 0, len(e.tasks))
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		order = append(order, t)
		for _, next := range dependents[t] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(e.tasks) {
		return &ferr.ConfigurationError{Message: "periodic task graph has a cycle in the after relation"}
	}

	e.order = order
	return nil
}

// Stop arms the exit flag; the current tick (if any) runs to completion
// and Run returns.
func (e *Executor) Stop() { e.stopReq.Store(true) }

// Run enters the scheduling loop and blocks until Stop is called or the
// main task signals exit (via ShouldStop on the safety.System, surfaced
// through mainStopper). mainStopper, if non-nil, is consulted before every
// tick; the main task itself is always run through mainTask.
func (e *Executor) Run(mainStopper func() bool) error {
	if !e.st.CompareAndSwap(uint32(stateIdle), uint32(stateRunning)) {
		return &ferr.ConfigurationError{Message: "executor already running or stopped"}
	}
	defer e.st.Store(uint32(stateStopped))

	start := monotonicNow()
	var tick uint64

	for {
		if e.stopReq.Load() || (mainStopper != nil && mainStopper()) {
			return nil
		}

		deadline := start + time.Duration(tick+1)*e.period
		now := time.Duration(tick) * e.period

		tickStart := monotonicNow()
		if err := e.runTick(now, tick); err != nil {
			return err
		}
		tickEnd := monotonicNow()
		e.Metrics.LastTickDuration.Store(int64(tickEnd - tickStart))
		e.Metrics.Ticks.Add(1)
		tick++

		actualNow := monotonicNow()
		if actualNow >= deadline {
			overrun := actualNow - deadline
			e.Metrics.Overruns.Add(1)
			consecutive := e.Metrics.ConsecutiveOverrun.Add(1)
			if consecutive >= 2 {
				e.log.WarnLimited("overrun", (&ferr.OverrunError{
					Tick:        tick,
					Period:      e.period.String(),
					Overrun:     overrun.String(),
					Consecutive: consecutive,
				}).Error())
			}
			// combined work exceeded P: next tick starts immediately, no sleep.
			continue
		}

		e.Metrics.ConsecutiveOverrun.Store(0)
		sleepUntil(deadline)
	}
}

// runTick runs the main task, then every Periodic scheduled this tick, in
// topological order, skipping any whose period does not divide tick.
func (e *Executor) runTick(now time.Duration, tick uint64) error {
	if e.mainTask != nil {
		if err := e.mainTask.Run(now); err != nil {
			return err
		}
	}

	for _, p := range e.order {
		k := uint64(p.period / e.period)
		if k == 0 {
			k = 1
		}
		if tick%k != 0 {
			continue
		}
		if err := p.run(now); err != nil {
			return err
		}
	}

	return nil
}

func monotonicNow() time.Duration { return time.Duration(nowFunc().UnixNano()) }

// nowFunc and sleepUntil are indirected so tests can substitute a fake
// clock without sleeping real wall time.
var nowFunc = time.Now

func sleepUntil(deadline time.Duration) {
	d := deadline - monotonicNow()
	if d > 0 {
		time.Sleep(d)
	}
}
