package safety

import "github.com/Darkplayer180/eeros-framework/ferr"

// Properties is the immutable, validated description of a safety state
// machine (spec.md §3, SafetyProperties): every level must be reachable
// from entry, and every transition's target must itself be a known level.
type Properties struct {
	entry  *Level
	levels map[string]*Level
}

// NewProperties validates and wraps entry plus any additional levels
// reachable only through transitions (pass every level explicitly; NewLevel
// values not reachable from entry are rejected, matching "every level
// reachable from entry" in spec.md §3).
func NewProperties(entry *Level, others ...*Level) (*Properties, error) {
	if entry == nil {
		return nil, &ferr.ConfigurationError{Message: "safety properties require a non-nil entry level"}
	}

	all := make(map[string]*Level, len(others)+1)
	all[entry.name] = entry
	for _, l := range others {
		if l == nil {
			continue
		}
		if _, dup := all[l.name]; dup {
			return nil, &ferr.ConfigurationError{Message: "duplicate safety level name " + l.name}
		}
		all[l.name] = l
	}

	reachable := map[string]bool{entry.name: true}
	queue := []*Level{entry}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for ev, t := range cur.transitions {
			if t.target == nil {
				return nil, &ferr.ConfigurationError{Message: "event " + string(ev) + " on level " + cur.name + " has a nil target"}
			}
			if _, known := all[t.target.name]; !known {
				return nil, &ferr.ConfigurationError{Message: "event " + string(ev) + " on level " + cur.name + " targets unregistered level " + t.target.name}
			}
			if !reachable[t.target.name] {
				reachable[t.target.name] = true
				queue = append(queue, t.target)
			}
		}
	}

	for name := range all {
		if !reachable[name] {
			return nil, &ferr.ConfigurationError{Message: "level " + name + " is not reachable from entry level " + entry.name}
		}
	}

	return &Properties{entry: entry, levels: all}, nil
}

// Entry returns the entry level.
func (p *Properties) Entry() *Level { return p.entry }

// Level looks up a registered level by name.
func (p *Properties) Level(name string) (*Level, bool) {
	l, ok := p.levels[name]
	return l, ok
}
