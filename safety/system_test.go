package safety_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Darkplayer180/eeros-framework/control"
	"github.com/Darkplayer180/eeros-framework/safety"
)

// failingBlock always returns an error from Run, to drive the Fault path.
type failingBlock struct{}

func (failingBlock) Name() string                 { return "failing" }
func (failingBlock) Inputs() []control.InputPort   { return nil }
func (failingBlock) Outputs() []control.OutputPort { return nil }
func (failingBlock) Run(time.Duration) error       { return errors.New("simulated fault") }

func TestSystem_S1_SafetyWalk(t *testing.T) {
	l1 := safety.NewLevel("L1")
	l2 := safety.NewLevel("L2")
	l3 := safety.NewLevel("L3")
	l1.AllowPublic("seInitDone", l2)
	l2.AllowPublic("seFault", l3)

	props, err := safety.NewProperties(l1, l2, l3)
	require.NoError(t, err)
	sys := safety.NewSystem(props)

	var levels []string
	for i := 0; i < 5; i++ {
		require.NoError(t, sys.Tick(time.Duration(i)))
		levels = append(levels, sys.CurrentLevel().Name())
	}
	assert.Equal(t, []string{"L1", "L1", "L1", "L1", "L1"}, levels)

	require.Equal(t, safety.Ok, sys.TriggerEvent("seInitDone"))

	levels = nil
	for i := 5; i < 7; i++ {
		require.NoError(t, sys.Tick(time.Duration(i)))
		levels = append(levels, sys.CurrentLevel().Name())
	}
	assert.Equal(t, []string{"L2", "L2"}, levels)

	require.Equal(t, safety.Ok, sys.TriggerEvent("seFault"))
	require.NoError(t, sys.Tick(7))
	assert.Equal(t, "L3", sys.CurrentLevel().Name())

	// L3 has no further transitions; it stays there indefinitely.
	for i := 8; i < 12; i++ {
		require.NoError(t, sys.Tick(time.Duration(i)))
		assert.Equal(t, "L3", sys.CurrentLevel().Name())
	}
}

func TestSystem_TriggerEvent_NotAllowedInLevel(t *testing.T) {
	l1 := safety.NewLevel("L1")
	l2 := safety.NewLevel("L2")
	props, err := safety.NewProperties(l1, l2)
	require.NoError(t, err)
	sys := safety.NewSystem(props)

	assert.Equal(t, safety.NotAllowedInLevel, sys.TriggerEvent("unknown"))
}

func TestSystem_TriggerEvent_RejectedPrivate(t *testing.T) {
	l1 := safety.NewLevel("L1")
	l2 := safety.NewLevel("L2")
	l1.AllowPrivate("internal", l2)
	props, err := safety.NewProperties(l1, l2)
	require.NoError(t, err)
	sys := safety.NewSystem(props)

	assert.Equal(t, safety.RejectedPrivate, sys.TriggerEvent("internal"))
	assert.Equal(t, "L1", sys.CurrentLevel().Name())
}

func TestSystem_InputAction_PrivateTransition(t *testing.T) {
	// a private event may only be applied when an input-action of the
	// current level staged it - which the input-evaluation step does.
	l1 := safety.NewLevel("L1")
	l2 := safety.NewLevel("L2")
	l1.OnInput(safety.InputAction{
		Name:   "estop",
		Expect: true,
		Sample: func(time.Duration) (bool, error) { return true, nil },
		Event:  "trip",
	})
	l1.AllowPrivate("trip", l2)
	props, err := safety.NewProperties(l1, l2)
	require.NoError(t, err)
	sys := safety.NewSystem(props)

	require.NoError(t, sys.Tick(0))
	assert.Equal(t, "L2", sys.CurrentLevel().Name())
}

func TestSystem_Tick_ExactlyOneEventPerTick(t *testing.T) {
	// invariant 5: exactly one event is consumed from the queue per tick.
	l1 := safety.NewLevel("L1")
	l2 := safety.NewLevel("L2")
	l3 := safety.NewLevel("L3")
	l1.AllowPublic("e1", l2)
	l2.AllowPublic("e2", l3)
	props, err := safety.NewProperties(l1, l2, l3)
	require.NoError(t, err)
	sys := safety.NewSystem(props)

	// e2 is not declared in L1, so only e1 can be queued up front; each
	// tick consumes exactly the one event queued before it.
	require.Equal(t, safety.Ok, sys.TriggerEvent("e1"))

	require.NoError(t, sys.Tick(0))
	assert.Equal(t, "L2", sys.CurrentLevel().Name())

	require.Equal(t, safety.Ok, sys.TriggerEvent("e2"))
	require.NoError(t, sys.Tick(1))
	assert.Equal(t, "L3", sys.CurrentLevel().Name())
}

func TestSystem_EntryExitHandlers(t *testing.T) {
	var entered, exited []string
	l1 := safety.NewLevel("L1").OnExit(func() { exited = append(exited, "L1") })
	l2 := safety.NewLevel("L2").
		OnEntry(func() { entered = append(entered, "L2") }).
		OnExit(func() { exited = append(exited, "L2") })
	l1.AllowPublic("go", l2)
	props, err := safety.NewProperties(l1, l2)
	require.NoError(t, err)
	sys := safety.NewSystem(props)

	require.Equal(t, safety.Ok, sys.TriggerEvent("go"))
	require.NoError(t, sys.Tick(0))

	assert.Equal(t, []string{"L1"}, exited)
	assert.Equal(t, []string{"L2"}, entered)
}

func TestSystem_Fault_NoHandlerAborts(t *testing.T) {
	l1 := safety.NewLevel("L1")
	props, err := safety.NewProperties(l1)
	require.NoError(t, err)
	sys := safety.NewSystem(props)

	td := control.NewTimeDomain("faulty")
	require.NoError(t, td.Add(failingBlock{}))
	require.NoError(t, td.Freeze())
	l1.WithDomain(td)

	err = sys.Tick(0)
	require.Error(t, err)
}

func TestSystem_ExitHandler_StopsAfterInProgressTick(t *testing.T) {
	// invariant 6: after ExitHandler, the in-progress tick completes and
	// ShouldStop reports true for the Executor to observe at the next
	// boundary.
	l1 := safety.NewLevel("L1")
	props, err := safety.NewProperties(l1)
	require.NoError(t, err)
	sys := safety.NewSystem(props)

	assert.False(t, sys.ShouldStop())
	require.NoError(t, sys.Tick(0))
	sys.ExitHandler()
	assert.True(t, sys.ShouldStop())
	// idempotent
	sys.ExitHandler()
	assert.True(t, sys.ShouldStop())
}
