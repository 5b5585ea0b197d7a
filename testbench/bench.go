package testbench

import (
	"github.com/schedlab/dispatchsim/dispatch"
	"github.com/schedlab/dispatchsim/sim"
)

// A Bench is a fully wired closed-loop system: one dispatch controller, two
// execution resources, a driver on the register bus, and the shared queues
// coupling them.
type Bench struct {
	Engine     sim.Engine
	Controller *dispatch.Comp
	ResourceA  *Resource
	ResourceB  *Resource
	Driver     *Driver
	Conn       *sim.DirectConnection
}

// Run starts the driver and drives the bench to completion. The simulation
// finishes once the driver has disabled the controller and all in-flight
// work has drained.
func (b *Bench) Run() error {
	b.Driver.TickLater()
	return b.Engine.Run()
}

// BenchBuilder can build benches.
type BenchBuilder struct {
	engine sim.Engine
	freq   sim.Freq

	runCycles uint64

	continueSrc  dispatch.ContinueSource
	preVerifySrc dispatch.PreVerifySource

	controllerBuilder dispatch.Builder
	queueCapacity     int
	fixedLatency      int
	latencyPerUnit    int
}

// MakeBenchBuilder creates a builder with default parameters.
func MakeBenchBuilder() BenchBuilder {
	return BenchBuilder{
		freq:              1 * sim.GHz,
		runCycles:         1000,
		queueCapacity:     16,
		fixedLatency:      1,
		latencyPerUnit:    1,
		controllerBuilder: dispatch.MakeBuilder(),
	}
}

// WithEngine sets the event engine everything runs on.
func (b BenchBuilder) WithEngine(engine sim.Engine) BenchBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the common clock frequency.
func (b BenchBuilder) WithFreq(freq sim.Freq) BenchBuilder {
	b.freq = freq
	return b
}

// WithRunCycles sets how many cycles the controller stays enabled.
func (b BenchBuilder) WithRunCycles(n uint64) BenchBuilder {
	b.runCycles = n
	return b
}

// WithContinueSource sets the advisory continue-drafting decision source.
func (b BenchBuilder) WithContinueSource(src dispatch.ContinueSource) BenchBuilder {
	b.continueSrc = src
	return b
}

// WithPreVerifySource sets the advisory pre-verification decision source.
func (b BenchBuilder) WithPreVerifySource(src dispatch.PreVerifySource) BenchBuilder {
	b.preVerifySrc = src
	return b
}

// WithControllerBuilder sets the builder used for the controller, carrying
// its intervals, thresholds, and queue parameters.
func (b BenchBuilder) WithControllerBuilder(cb dispatch.Builder) BenchBuilder {
	b.controllerBuilder = cb
	return b
}

// WithQueueCapacity sets the capacity of the shared queues.
func (b BenchBuilder) WithQueueCapacity(n int) BenchBuilder {
	b.queueCapacity = n
	return b
}

// WithResourceLatency sets the base latency and per-unit latency of both
// resources.
func (b BenchBuilder) WithResourceLatency(fixed, perUnit int) BenchBuilder {
	b.fixedLatency = fixed
	b.latencyPerUnit = perUnit
	return b
}

// Build creates a bench with the given name.
func (b BenchBuilder) Build(name string) *Bench {
	if b.continueSrc == nil {
		b.continueSrc = NewScriptedContinueSource(true)
	}
	if b.preVerifySrc == nil {
		b.preVerifySrc = NewScriptedPreVerifySource()
	}

	pending := sim.NewBuffer(name+".PendingQueue", b.queueCapacity)
	feedback := sim.NewBuffer(name+".FeedbackQueue", b.queueCapacity)
	preVerify := sim.NewBuffer(name+".PreVerifyQueue", b.queueCapacity)

	resourceA := MakeResourceBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithFixedLatency(b.fixedLatency).
		WithLatencyPerUnit(b.latencyPerUnit).
		WithPendingQueue(pending).
		WithPreVerifyQueue(preVerify).
		Build(name + ".ResourceA")

	resourceB := MakeResourceBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithFixedLatency(b.fixedLatency).
		WithLatencyPerUnit(b.latencyPerUnit).
		WithPendingQueue(pending).
		WithPreVerifyQueue(preVerify).
		Build(name + ".ResourceB")

	controller := b.controllerBuilder.
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithPendingQueue(pending).
		WithFeedbackQueue(feedback).
		WithPreVerifyQueue(preVerify).
		WithResourceADst(resourceA.TopPort).
		WithResourceBDst(resourceB.TopPort).
		WithContinueSource(b.continueSrc).
		WithPreVerifySource(b.preVerifySrc).
		Build(name + ".Controller")

	driver := MakeDriverBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithCtrlDst(controller.CtrlPort).
		WithRunCycles(b.runCycles).
		Build(name + ".Driver")

	conn := sim.NewDirectConnection(name+".Conn", b.engine, b.freq)
	conn.PlugIn(controller.CtrlPort)
	conn.PlugIn(controller.ResourceAPort)
	conn.PlugIn(controller.ResourceBPort)
	conn.PlugIn(resourceA.TopPort)
	conn.PlugIn(resourceB.TopPort)
	conn.PlugIn(driver.TopPort)

	return &Bench{
		Engine:     b.engine,
		Controller: controller,
		ResourceA:  resourceA,
		ResourceB:  resourceB,
		Driver:     driver,
		Conn:       conn,
	}
}
