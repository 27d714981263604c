// Package executor implements the Periodic Executor (spec.md §4.4): a
// single realtime tick thread that runs the Safety System as its main
// task, then every registered Periodic in topological order of the
// `after` relation, sleeping until the next period boundary - restarting
// immediately, without sleeping, on overrun.
package executor

import (
	"time"

	"github.com/Darkplayer180/eeros-framework/control"
	"github.com/Darkplayer180/eeros-framework/ferr"
)

// Body is anything a Periodic can run once per scheduled tick: either an
// arbitrary callable, or a control.TimeDomain via TimeDomainBody.
type Body interface {
	Run(now time.Duration) error
}

// BodyFunc adapts a plain function to Body.
type BodyFunc func(now time.Duration) error

// Run implements Body.
func (f BodyFunc) Run(now time.Duration) error { return f(now) }

// TimeDomainBody adapts a control.TimeDomain to Body. TimeDomain.Tick and
// Body.Run share the same (time.Duration) error shape by construction;
// this wrapper exists only because Go requires the method name to match.
type TimeDomainBody struct{ Domain *control.TimeDomain }

// Run implements Body.
func (b TimeDomainBody) Run(now time.Duration) error { return b.Domain.Tick(now) }

// Periodic is one registered task: a name, a period (must be an integer
// multiple of the Executor's base period P), a body, post-body monitors,
// and the set of Periodics that must complete first within the same tick
// window (spec.md §3, §4.4).
type Periodic struct {
	name     string
	period   time.Duration
	body     Body
	monitors []func(now time.Duration, runErr error)
	after    []*Periodic
	worker   bool
}

// NewPeriodic creates a Periodic named name, running body every period.
func NewPeriodic(name string, period time.Duration, body Body) *Periodic {
	return &Periodic{name: name, period: period, body: body}
}

// Name returns the periodic's name.
func (p *Periodic) Name() string { return p.name }

// Period returns the periodic's declared period.
func (p *Periodic) Period() time.Duration { return p.period }

// After declares that pred must complete before p within the same tick
// window. Returns p for chaining.
func (p *Periodic) After(pred *Periodic) *Periodic {
	p.after = append(p.after, pred)
	return p
}

// WithMonitor registers fn to run after body each tick this periodic
// executes, observing the tick timestamp and any error body.Run returned.
// Returns p for chaining.
func (p *Periodic) WithMonitor(fn func(now time.Duration, runErr error)) *Periodic {
	p.monitors = append(p.monitors, fn)
	return p
}

// Dispatch marks p eligible for worker-thread dispatch instead of in-line
// execution on the tick thread (spec.md §5: "may optionally be dispatched
// to worker threads but only if they have no successors through after").
// Validated against that constraint at Executor.Add time, not here, since
// successors may be declared later. The flag is only validated: the
// Executor still runs every Periodic in-line on the tick thread.
func (p *Periodic) Dispatch() *Periodic {
	p.worker = true
	return p
}

func (p *Periodic) run(now time.Duration) error {
	err := p.body.Run(now)
	for _, m := range p.monitors {
		m(now, err)
	}
	if err != nil {
		return &ferr.FaultError{Source: p.name, Cause: err}
	}
	return nil
}
