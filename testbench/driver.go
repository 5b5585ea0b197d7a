package testbench

import (
	"github.com/schedlab/dispatchsim/dispatch"
	"github.com/schedlab/dispatchsim/sim"
)

// A Driver programs the controller over its register bus. It enables the
// controller on its first cycle, lets it run for a configured number of
// cycles, then disables it again so the simulation can drain and finish.
type Driver struct {
	*sim.TickingComponent

	TopPort sim.Port

	ctrlDst   sim.Port
	runCycles uint64

	cycles      uint64
	enableSent  bool
	disableSent bool
	disableAck  bool
}

// Tick advances the driver by one cycle.
func (d *Driver) Tick() bool {
	madeProgress := d.drainResponses()

	if d.disableAck {
		return madeProgress
	}

	d.cycles++

	if !d.enableSent {
		if d.writeCtrl(1) {
			d.enableSent = true
			madeProgress = true
		}
		return madeProgress
	}

	if d.cycles >= d.runCycles && !d.disableSent {
		if d.writeCtrl(0) {
			d.disableSent = true
			madeProgress = true
		}
		return madeProgress
	}

	// Keep ticking until the disable write is acknowledged.
	return true
}

func (d *Driver) writeCtrl(value uint64) bool {
	req := dispatch.RegWriteReqBuilder{}.
		WithSrc(d.TopPort).
		WithDst(d.ctrlDst).
		WithAddr(dispatch.RegCtrl).
		WithData(value).
		Build()

	return d.TopPort.Send(req) == nil
}

func (d *Driver) drainResponses() bool {
	madeProgress := false

	for {
		item := d.TopPort.PeekIncoming()
		if item == nil {
			break
		}

		d.TopPort.RetrieveIncoming()
		madeProgress = true

		if d.disableSent {
			d.disableAck = true
		}
	}

	return madeProgress
}

// DriverBuilder can build drivers.
type DriverBuilder struct {
	engine    sim.Engine
	freq      sim.Freq
	ctrlDst   sim.Port
	runCycles uint64
}

// MakeDriverBuilder creates a builder with default parameters.
func MakeDriverBuilder() DriverBuilder {
	return DriverBuilder{
		freq:      1 * sim.GHz,
		runCycles: 1000,
	}
}

// WithEngine sets the event engine the driver runs on.
func (b DriverBuilder) WithEngine(engine sim.Engine) DriverBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the driver clock frequency.
func (b DriverBuilder) WithFreq(freq sim.Freq) DriverBuilder {
	b.freq = freq
	return b
}

// WithCtrlDst sets the controller port register writes are sent to.
func (b DriverBuilder) WithCtrlDst(p sim.Port) DriverBuilder {
	b.ctrlDst = p
	return b
}

// WithRunCycles sets how many cycles the controller stays enabled.
func (b DriverBuilder) WithRunCycles(n uint64) DriverBuilder {
	b.runCycles = n
	return b
}

// Build creates a driver with the given name.
func (b DriverBuilder) Build(name string) *Driver {
	d := &Driver{
		ctrlDst:   b.ctrlDst,
		runCycles: b.runCycles,
	}
	d.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, d)
	d.TopPort = sim.NewPort(d, 4, 4, name+".TopPort")
	d.AddPort("Top", d.TopPort)

	return d
}
