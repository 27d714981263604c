// Package blocks implements concrete control.Block types: arithmetic and
// vector blocks grounded on original_source/includes/eeros/control, plus
// CAN bus stub I/O blocks grounded on original_source/examples/can.
package blocks

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/Darkplayer180/eeros-framework/control"
	"github.com/Darkplayer180/eeros-framework/ferr"
)

// Number is any scalar type a Sum/DeMux/WrapAround block can operate over.
type Number interface {
	constraints.Integer | constraints.Float
}

// Sum adds (or subtracts, per-input) n scalar inputs into one output. The
// original C++ block is a fixed-size template Sum<N,T>; Go has no const
// generics, so n is a runtime constructor argument instead (local choice,
// does not affect the core Block contract).
//
// Grounded on original_source/includes/eeros/control/Sum.hpp: out's
// timestamp is always in[0]'s timestamp, and negateInput(i) flips the sign
// of input i's contribution.
type Sum[T Number] struct {
	name     string
	inputs   []*control.Input[T]
	negated  []bool
	output   *control.Output[T]
}

// NewSum creates a Sum block named name with n inputs.
func NewSum[T Number](name string, n int) *Sum[T] {
	s := &Sum[T]{name: name, output: control.NewOutput[T](name + ".out")}
	s.output.SetOwner(s)
	s.inputs = make([]*control.Input[T], n)
	s.negated = make([]bool, n)
	for i := range s.inputs {
		s.inputs[i] = control.NewInput[T](name + ".in")
		s.inputs[i].SetOwner(s)
	}
	return s
}

// Name implements control.Block.
func (s *Sum[T]) Name() string { return s.name }

// Inputs implements control.Block.
func (s *Sum[T]) Inputs() []control.InputPort {
	out := make([]control.InputPort, len(s.inputs))
	for i, in := range s.inputs {
		out[i] = in
	}
	return out
}

// Outputs implements control.Block.
func (s *Sum[T]) Outputs() []control.OutputPort { return []control.OutputPort{s.output} }

// In returns input port index i, for wiring with control.Connect.
func (s *Sum[T]) In(i int) (*control.Input[T], error) {
	if i < 0 || i >= len(s.inputs) {
		return nil, &ferr.IndexOutOfRangeError{Block: s.name, Index: i, Message: "sum has " + strconv.Itoa(len(s.inputs)) + " inputs"}
	}
	return s.inputs[i], nil
}

// Out returns the sum's single output port.
func (s *Sum[T]) Out() *control.Output[T] { return s.output }

// NegateInput marks input i as subtracted instead of added.
func (s *Sum[T]) NegateInput(i int) error {
	if i < 0 || i >= len(s.negated) {
		return &ferr.IndexOutOfRangeError{Block: s.name, Index: i, Message: "sum has " + strconv.Itoa(len(s.negated)) + " inputs"}
	}
	s.negated[i] = true
	return nil
}

// Run implements control.Block: sums (or subtracts) every input, stamping
// the result with in[0]'s timestamp, per Sum.hpp.
func (s *Sum[T]) Run(now time.Duration) error {
	var total T
	var ts time.Duration
	for i, in := range s.inputs {
		sig := in.Signal()
		if i == 0 {
			ts = sig.Timestamp()
		}
		if s.negated[i] {
			total -= sig.Value()
		} else {
			total += sig.Value()
		}
	}
	s.output.Write(total, ts)
	return nil
}

// DeMux decomposes one vector-valued input (represented as []T) into n
// scalar outputs, grounded on
// original_source/includes/eeros/control/DeMux.hpp: every output shares
// the input signal's timestamp.
type DeMux[T Number] struct {
	name    string
	input   *control.Input[[]T]
	outputs []*control.Output[T]
}

// NewDeMux creates a DeMux block named name decomposing into n outputs.
func NewDeMux[T Number](name string, n int) *DeMux[T] {
	d := &DeMux[T]{name: name}
	d.input = control.NewInput[[]T](name + ".in")
	d.input.SetOwner(d)
	d.outputs = make([]*control.Output[T], n)
	for i := range d.outputs {
		d.outputs[i] = control.NewOutput[T](name + ".out")
		d.outputs[i].SetOwner(d)
	}
	return d
}

// Name implements control.Block.
func (d *DeMux[T]) Name() string { return d.name }

// Inputs implements control.Block.
func (d *DeMux[T]) Inputs() []control.InputPort { return []control.InputPort{d.input} }

// Outputs implements control.Block.
func (d *DeMux[T]) Outputs() []control.OutputPort {
	out := make([]control.OutputPort, len(d.outputs))
	for i, o := range d.outputs {
		out[i] = o
	}
	return out
}

// In returns the demux's single vector input.
func (d *DeMux[T]) In() *control.Input[[]T] { return d.input }

// Out returns output port index i.
func (d *DeMux[T]) Out(i int) (*control.Output[T], error) {
	if i < 0 || i >= len(d.outputs) {
		return nil, &ferr.IndexOutOfRangeError{Block: d.name, Index: i, Message: "demux has " + strconv.Itoa(len(d.outputs)) + " outputs"}
	}
	return d.outputs[i], nil
}

// Run implements control.Block.
func (d *DeMux[T]) Run(now time.Duration) error {
	sig := d.input.Signal()
	vec := sig.Value()
	for i, out := range d.outputs {
		var v T
		if i < len(vec) {
			v = vec[i]
		}
		out.Write(v, sig.Timestamp())
	}
	return nil
}

// WrapAround wraps its input into [minVal, maxVal), grounded on
// original_source/includes/eeros/control/WrapAround.hpp's exact
// floor-division algorithm.
type WrapAround[T Number] struct {
	name           string
	minVal, maxVal T
	input          *control.Input[T]
	output         *control.Output[T]
}

// NewWrapAround creates a WrapAround block named name wrapping into
// [minVal, maxVal).
func NewWrapAround[T Number](name string, minVal, maxVal T) *WrapAround[T] {
	w := &WrapAround[T]{name: name, minVal: minVal, maxVal: maxVal, output: control.NewOutput[T](name + ".out")}
	w.output.SetOwner(w)
	w.input = control.NewInput[T](name + ".in")
	w.input.SetOwner(w)
	return w
}

// Name implements control.Block.
func (w *WrapAround[T]) Name() string { return w.name }

// Inputs implements control.Block.
func (w *WrapAround[T]) Inputs() []control.InputPort { return []control.InputPort{w.input} }

// Outputs implements control.Block.
func (w *WrapAround[T]) Outputs() []control.OutputPort { return []control.OutputPort{w.output} }

// In returns the block's single input.
func (w *WrapAround[T]) In() *control.Input[T] { return w.input }

// Out returns the block's single output.
func (w *WrapAround[T]) Out() *control.Output[T] { return w.output }

// Run implements control.Block, exactly reproducing WrapAround.hpp's
// algorithm: delta = |min| + |max|; num = in - min; tquot = floor(num /
// delta); out = num - tquot*delta; if out < 0, out += delta; out += min.
func (w *WrapAround[T]) Run(now time.Duration) error {
	sig := w.input.Signal()
	in := float64(sig.Value())
	minVal := float64(w.minVal)
	maxVal := float64(w.maxVal)

	delta := math.Abs(minVal) + math.Abs(maxVal)
	num := in - minVal
	tquot := math.Floor(num / delta)
	outVal := num - tquot*delta
	if outVal < 0 {
		outVal += delta
	}
	outVal += minVal

	w.output.Write(T(outVal), sig.Timestamp())
	return nil
}
