package hal

import (
	"math"
	"sync/atomic"
)

// simLogicPoint is an in-memory, concurrency-safe boolean cell.
type simLogicPoint struct{ v atomic.Bool }

func (p *simLogicPoint) Read() (bool, error) { return p.v.Load(), nil }
func (p *simLogicPoint) Write(v bool) error  { p.v.Store(v); return nil }

// Set updates the cell directly, for test fixtures simulating hardware.
func (p *simLogicPoint) Set(v bool) { p.v.Store(v) }

// simAnalogPoint is an in-memory, concurrency-safe float64 cell, stored as
// its bit pattern so reads and writes stay lock-free.
type simAnalogPoint struct{ bits atomic.Uint64 }

func (p *simAnalogPoint) Read() (float64, error) { return math.Float64frombits(p.bits.Load()), nil }
func (p *simAnalogPoint) Write(v float64) error  { p.bits.Store(math.Float64bits(v)); return nil }

// Set updates the cell directly, for test fixtures simulating hardware.
func (p *simAnalogPoint) Set(v float64) { p.bits.Store(math.Float64bits(v)) }

// Simulated is an in-memory HAL used by tests and cmd/eeros-demo in place
// of real fieldbus/CAN hardware. Each named point is created and registered
// by one of its *Point helpers; looking up a name no helper created fails.
type Simulated struct {
	*Interface
}

// NewSimulated constructs a Simulated HAL with no points; call its
// LogicInputPoint/LogicOutputPoint/AnalogInputPoint/AnalogOutputPoint
// helpers to create fixtures before ReadConfig.
func NewSimulated() *Simulated {
	return &Simulated{Interface: New()}
}

// LogicInputPoint registers and returns a settable simulated digital
// input named name.
func (s *Simulated) LogicInputPoint(name string) (*simLogicPoint, error) {
	p := &simLogicPoint{}
	if err := s.RegisterLogicInput(name, p); err != nil {
		return nil, err
	}
	return p, nil
}

// LogicOutputPoint registers and returns a readable simulated digital
// output named name.
func (s *Simulated) LogicOutputPoint(name string) (*simLogicPoint, error) {
	p := &simLogicPoint{}
	if err := s.RegisterLogicOutput(name, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AnalogInputPoint registers and returns a settable simulated analog
// input named name.
func (s *Simulated) AnalogInputPoint(name string) (*simAnalogPoint, error) {
	p := &simAnalogPoint{}
	if err := s.RegisterAnalogInput(name, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AnalogOutputPoint registers and returns a readable simulated analog
// output named name.
func (s *Simulated) AnalogOutputPoint(name string) (*simAnalogPoint, error) {
	p := &simAnalogPoint{}
	if err := s.RegisterAnalogOutput(name, p); err != nil {
		return nil, err
	}
	return p, nil
}
