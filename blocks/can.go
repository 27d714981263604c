package blocks

import (
	"time"

	"github.com/Darkplayer180/eeros-framework/control"
	"github.com/Darkplayer180/eeros-framework/ferr"
)

// CANFrame is one received or transmitted CAN bus frame, enough to drive
// the Faulhaber-style motor controller traffic in
// original_source/examples/can/CanExample.cpp without depending on any
// particular bus driver.
type CANFrame struct {
	ID   uint32
	Data [8]byte
	Len  int
}

// CANBus is the narrow interface a real CAN driver must satisfy; out of
// scope per spec.md §1 ("concrete block libraries... CAN I/O... their math
// is not part of this spec"). CANInput/CANOutput only depend on this much.
type CANBus interface {
	Receive(id uint32) (CANFrame, bool, error)
	Send(frame CANFrame) error
}

// CANInput is a source block: it samples the most recent frame with a
// matching arbitration ID from the bus each tick, grounded on
// CanReceiveFaulhaber's role in CanExample.cpp (a block whose Run pulls
// the latest bus-delivered value into a Signal for downstream blocks).
type CANInput struct {
	name   string
	bus    CANBus
	id     uint32
	output *control.Output[CANFrame]
}

// NewCANInput creates a CANInput block named name, reading frames with
// arbitration id from bus.
func NewCANInput(name string, bus CANBus, id uint32) *CANInput {
	c := &CANInput{name: name, bus: bus, id: id, output: control.NewOutput[CANFrame](name + ".out")}
	c.output.SetOwner(c)
	return c
}

// Name implements control.Block.
func (c *CANInput) Name() string { return c.name }

// Inputs implements control.Block.
func (c *CANInput) Inputs() []control.InputPort { return nil }

// Outputs implements control.Block.
func (c *CANInput) Outputs() []control.OutputPort { return []control.OutputPort{c.output} }

// Out returns the block's single output.
func (c *CANInput) Out() *control.Output[CANFrame] { return c.output }

// Run implements control.Block: a missing frame is not an error, the
// output simply keeps its last value, matching a bus that only delivers on
// change.
func (c *CANInput) Run(now time.Duration) error {
	frame, ok, err := c.bus.Receive(c.id)
	if err != nil {
		return &ferr.FaultError{Source: c.name, Cause: err}
	}
	if ok {
		c.output.Write(frame, now)
	}
	return nil
}

// CANOutput is a sink block: it sends its input's current frame onto the
// bus each tick, grounded on CanSendFaulhaber's role in CanExample.cpp.
type CANOutput struct {
	name  string
	bus   CANBus
	input *control.Input[CANFrame]
}

// NewCANOutput creates a CANOutput block named name, writing to bus.
func NewCANOutput(name string, bus CANBus) *CANOutput {
	c := &CANOutput{name: name, bus: bus}
	c.input = control.NewInput[CANFrame](name + ".in")
	c.input.SetOwner(c)
	return c
}

// Name implements control.Block.
func (c *CANOutput) Name() string { return c.name }

// Inputs implements control.Block.
func (c *CANOutput) Inputs() []control.InputPort { return []control.InputPort{c.input} }

// Outputs implements control.Block.
func (c *CANOutput) Outputs() []control.OutputPort { return nil }

// In returns the block's single input.
func (c *CANOutput) In() *control.Input[CANFrame] { return c.input }

// Run implements control.Block.
func (c *CANOutput) Run(now time.Duration) error {
	frame := c.input.Signal().Value()
	if err := c.bus.Send(frame); err != nil {
		return &ferr.FaultError{Source: c.name, Cause: err}
	}
	return nil
}
