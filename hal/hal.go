// Package hal is the Hardware Abstraction Layer façade (spec.md §4.6): the
// core looks up digital/analog input/output handles by name only, and the
// name set is frozen once ReadConfig returns.
package hal

import (
	"flag"
	"sync"

	"github.com/Darkplayer180/eeros-framework/ferr"
)

// LogicInput is a non-blocking, constant-time boolean reader.
type LogicInput interface {
	Read() (bool, error)
}

// LogicOutput is a non-blocking, constant-time boolean writer.
type LogicOutput interface {
	Write(bool) error
}

// AnalogInput is a non-blocking, constant-time float64 reader.
type AnalogInput interface {
	Read() (float64, error)
}

// AnalogOutput is a non-blocking, constant-time float64 writer.
type AnalogOutput interface {
	Write(float64) error
}

// Interface is the façade the core consumes by name only. It is built by
// an application-specific HAL implementation (e.g. hal.NewSimulated, or a
// real one backed by CAN/fieldbus drivers, out of scope per spec.md §1).
type Interface struct {
	mu     sync.RWMutex
	frozen bool

	logicIn  map[string]LogicInput
	logicOut map[string]LogicOutput
	analogIn map[string]AnalogInput
	analogOut map[string]AnalogOutput
}

// New constructs an empty, unfrozen Interface.
func New() *Interface {
	return &Interface{
		logicIn:   make(map[string]LogicInput),
		logicOut:  make(map[string]LogicOutput),
		analogIn:  make(map[string]AnalogInput),
		analogOut: make(map[string]AnalogOutput),
	}
}

// RegisterLogicInput adds a named digital input. Rejected once frozen.
func (h *Interface) RegisterLogicInput(name string, in LogicInput) error {
	return registerInto(h, &h.logicIn, name, in)
}

// RegisterLogicOutput adds a named digital output. Rejected once frozen.
func (h *Interface) RegisterLogicOutput(name string, out LogicOutput) error {
	return registerInto(h, &h.logicOut, name, out)
}

// RegisterAnalogInput adds a named analog input. Rejected once frozen.
func (h *Interface) RegisterAnalogInput(name string, in AnalogInput) error {
	return registerInto(h, &h.analogIn, name, in)
}

// RegisterAnalogOutput adds a named analog output. Rejected once frozen.
func (h *Interface) RegisterAnalogOutput(name string, out AnalogOutput) error {
	return registerInto(h, &h.analogOut, name, out)
}

func registerInto[V any](h *Interface, into *map[string]V, name string, v V) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.frozen {
		return &ferr.ConfigurationError{Message: "hal is frozen; cannot register " + name}
	}
	if _, dup := (*into)[name]; dup {
		return &ferr.ConfigurationError{Message: "hal name already registered: " + name}
	}
	(*into)[name] = v
	return nil
}

// invertedInput wraps a LogicInput, negating every Read - the "invertedFlag"
// of GetLogicInput (spec.md §4.6).
type invertedInput struct{ LogicInput }

func (i invertedInput) Read() (bool, error) {
	v, err := i.LogicInput.Read()
	return !v, err
}

// GetLogicInput returns the named digital input, inverted if inverted is
// true. Lookups succeed whether or not ReadConfig has frozen the name set.
func (h *Interface) GetLogicInput(name string, inverted bool) (LogicInput, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	in, ok := h.logicIn[name]
	if !ok {
		return nil, &ferr.ConfigurationError{Message: "no such logic input: " + name}
	}
	if inverted {
		return invertedInput{in}, nil
	}
	return in, nil
}

// GetLogicOutput returns the named digital output.
func (h *Interface) GetLogicOutput(name string) (LogicOutput, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out, ok := h.logicOut[name]
	if !ok {
		return nil, &ferr.ConfigurationError{Message: "no such logic output: " + name}
	}
	return out, nil
}

// GetAnalogInput returns the named analog input.
func (h *Interface) GetAnalogInput(name string) (AnalogInput, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	in, ok := h.analogIn[name]
	if !ok {
		return nil, &ferr.ConfigurationError{Message: "no such analog input: " + name}
	}
	return in, nil
}

// GetAnalogOutput returns the named analog output.
func (h *Interface) GetAnalogOutput(name string) (AnalogOutput, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out, ok := h.analogOut[name]
	if !ok {
		return nil, &ferr.ConfigurationError{Message: "no such analog output: " + name}
	}
	return out, nil
}

// ReadConfig parses args with the stdlib flag package (spec.md §1 names
// "command-line parsing" as an out-of-scope external collaborator; flag is
// the minimal idiomatic choice for that narrow a surface, see DESIGN.md)
// and freezes the name set: no further Register* call will succeed.
func (h *Interface) ReadConfig(args []string) error {
	fs := flag.NewFlagSet("hal", flag.ContinueOnError)
	// Application-specific flags would be defined here by an embedding HAL
	// implementation; the façade itself has none of its own.
	if err := fs.Parse(args); err != nil {
		return ferr.Wrap("hal config parse failed", err)
	}
	h.mu.Lock()
	h.frozen = true
	h.mu.Unlock()
	return nil
}

// Frozen reports whether ReadConfig has completed.
func (h *Interface) Frozen() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.frozen
}
