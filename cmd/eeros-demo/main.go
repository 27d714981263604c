// Command eeros-demo wires a minimal two-level safety machine around a
// WrapAround control block, driven by the Executor, to exercise the hal,
// control, safety and executor packages end to end (spec.md §6, "Entry
// point"). The sequencer package is not used here.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joeycumines/logiface"

	"github.com/Darkplayer180/eeros-framework/blocks"
	"github.com/Darkplayer180/eeros-framework/control"
	"github.com/Darkplayer180/eeros-framework/eeroslog"
	"github.com/Darkplayer180/eeros-framework/executor"
	"github.com/Darkplayer180/eeros-framework/hal"
	"github.com/Darkplayer180/eeros-framework/safety"
)

func main() {
	log := eeroslog.NewConsole("eeros-demo", logiface.LevelInformational, eeroslog.DefaultOverrunLimiter())
	log.Info("starting")

	h := hal.NewSimulated()
	estop, err := h.LogicInputPoint("estop")
	if err != nil {
		log.Fatal("hal setup failed", err)
	}
	if err := h.ReadConfig(os.Args[1:]); err != nil {
		log.Fatal("hal config failed", err)
	}

	const period = 20 * time.Millisecond

	td := control.NewTimeDomain("main")
	wrap := blocks.NewWrapAround[float64]("wrap", -180, 180)
	if err := td.Add(wrap); err != nil {
		log.Fatal("failed to add block", err)
	}
	if err := control.Connect(td, control.NewOutput[float64]("angle.out"), wrap.In()); err != nil {
		log.Fatal("failed to connect", err)
	}
	if err := td.Freeze(); err != nil {
		log.Fatal("failed to freeze time domain", err)
	}

	running := safety.NewLevel("Running").WithDomain(td)
	stopped := safety.NewLevel("Stopped")
	running.OnInput(safety.InputAction{
		Name:   "estop",
		Expect: true,
		Sample: func(time.Duration) (bool, error) { return estop.Read() },
		Event:  "EStop",
	})
	running.AllowPublic("EStop", stopped)
	running.AllowPublic(safety.Fault, stopped)

	props, err := safety.NewProperties(running, stopped)
	if err != nil {
		log.Fatal("invalid safety properties", err)
	}
	sys := safety.NewSystem(props)

	exec := executor.New(period, log.Named("executor"))
	exec.SetMainTask(executor.BodyFunc(func(now time.Duration) error { return sys.Tick(now) }))

	ctrlC := make(chan os.Signal, 1)
	signal.Notify(ctrlC, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlC
		log.Info("signal received, stopping")
		sys.ExitHandler()
	}()

	if err := exec.Run(sys.ShouldStop); err != nil {
		log.Error("executor exited with error", err)
		os.Exit(1)
	}
	log.Info("stopped")
}
