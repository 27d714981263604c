package control

import (
	"sync/atomic"
	"time"

	"github.com/Darkplayer180/eeros-framework/ferr"
)

// TimeDomain is the unit of atomic, topologically-ordered execution
// (spec.md §4.1): a set of Blocks that tick together, in dependency order,
// once per invocation of Tick.
//
// Add may be called freely before Freeze. Freeze computes the run order
// once (Kahn's algorithm over the Input->Output edges restricted to blocks
// registered in this domain) and rejects the domain wholesale, with no
// partial freeze state, if it finds a cycle or a dangling input. After
// Freeze, Add, and any Connect call that passes this domain, are rejected.
type TimeDomain struct {
	name   string
	blocks []Block
	frozen atomic.Bool
	order  []Block
}

// NewTimeDomain creates an empty, unfrozen TimeDomain named name.
func NewTimeDomain(name string) *TimeDomain {
	return &TimeDomain{name: name}
}

// Name returns the domain's name.
func (td *TimeDomain) Name() string { return td.name }

// Frozen reports whether Freeze has already succeeded on this domain.
func (td *TimeDomain) Frozen() bool { return td.frozen.Load() }

// Add registers b as a member of this domain. Rejected once frozen.
func (td *TimeDomain) Add(b Block) error {
	if td.Frozen() {
		return errDomainFrozen(td.name)
	}
	td.blocks = append(td.blocks, b)
	return nil
}

// Freeze computes the execution order and locks the domain against further
// Add/Connect calls. Safe to call exactly once; a second call is a no-op
// returning nil if the first succeeded.
func (td *TimeDomain) Freeze() error {
	if td.Frozen() {
		return nil
	}

	member := make(map[Block]bool, len(td.blocks))
	for _, b := range td.blocks {
		member[b] = true
	}

	// indegree[b] counts upstream edges from other members of this domain
	// only; an Input fed by a block outside the domain (or by nothing, for
	// a free-standing source block) does not constrain ordering here.
	indegree := make(map[Block]int, len(td.blocks))
	dependents := make(map[Block][]Block, len(td.blocks))
	for _, b := range td.blocks {
		indegree[b] = 0
	}
	for _, b := range td.blocks {
		for _, in := range b.Inputs() {
			upstream, connected := in.UpstreamBlock()
			if !connected {
				return &ferr.GraphError{
					Kind:    ferr.DanglingInput,
					Message: b.Name() + "." + in.PortName() + " is not connected",
				}
			}
			if member[upstream] {
				indegree[b]++
				dependents[upstream] = append(dependents[upstream], b)
			}
		}
	}

	var queue []Block
	for _, b := range td.blocks {
		if indegree[b] == 0 {
			queue = append(queue, b)
		}
	}

	order := make([]Block, 0, len(td.blocks))
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		order = append(order, b)
		for _, next := range dependents[b] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(td.blocks) {
		return &ferr.GraphError{
			Kind:    ferr.CycleDetected,
			Message: td.name + " does not form a directed acyclic graph",
		}
	}

	td.order = order
	td.frozen.Store(true)
	return nil
}

// Tick runs every member block exactly once, in topological order, passing
// now to each. The domain must be frozen first. The first error returned by
// any block's Run stops the tick immediately and is returned to the caller,
// wrapped as a ferr.FaultError naming the offending block.
func (td *TimeDomain) Tick(now time.Duration) error {
	for _, b := range td.order {
		if err := b.Run(now); err != nil {
			return &ferr.FaultError{Source: td.name + "/" + b.Name(), Cause: err}
		}
	}
	return nil
}

func errDomainFrozen(name string) error {
	return &ferr.ConfigurationError{Message: "time domain " + name + " is frozen; cannot add or connect"}
}
