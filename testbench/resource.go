package testbench

import (
	"github.com/schedlab/dispatchsim/dispatch"
	"github.com/schedlab/dispatchsim/sim"
)

// A Resource is a latency-modeled execution unit. It executes one dispatched
// task at a time for a number of cycles proportional to the task length,
// then raises a completion pulse and applies the task's queue effects:
//
//   - A completed draft pushes one unverified entry into the pending queue
//     and stages one pre-verify candidate.
//   - A completed verify pops the verified entries from the pending queue.
//   - A completed pre-verify consumes one staged candidate.
type Resource struct {
	*sim.TickingComponent

	TopPort sim.Port

	fixedLatency   int
	latencyPerUnit int

	pendingQueue   sim.Buffer
	preVerifyQueue sim.Buffer

	executing Task
	busy      bool
	remaining int
	replyTo   sim.Port
	cycles    uint64
}

// Task aliases the controller task type for brevity inside the testbench.
type Task = dispatch.Task

// Tick advances the resource by one cycle.
func (r *Resource) Tick() bool {
	madeProgress := r.advanceExecution()
	madeProgress = r.acceptDispatch() || madeProgress

	return madeProgress
}

func (r *Resource) advanceExecution() bool {
	if !r.busy {
		return false
	}

	r.cycles++

	if r.remaining > 0 {
		r.remaining--
		return true
	}

	completion := dispatch.CompletionMsgBuilder{}.
		WithSrc(r.TopPort).
		WithDst(r.replyTo).
		WithTaskID(r.executing.ID).
		WithClass(r.executing.Class).
		WithCycleCount(r.cycles).
		Build()

	if err := r.TopPort.Send(completion); err != nil {
		return false
	}

	r.applyQueueEffects(r.executing)
	r.busy = false

	return true
}

func (r *Resource) acceptDispatch() bool {
	if r.busy {
		return false
	}

	item := r.TopPort.PeekIncoming()
	if item == nil {
		return false
	}

	req, ok := item.(*dispatch.DispatchReq)
	if !ok {
		panic("unknown message at resource")
	}

	r.TopPort.RetrieveIncoming()

	r.executing = req.Task
	r.busy = true
	r.remaining = r.fixedLatency + r.latencyPerUnit*int(req.Task.Length)
	r.replyTo = req.Src
	r.cycles = 0

	return true
}

func (r *Resource) applyQueueEffects(task Task) {
	switch task.Class {
	case dispatch.TaskDraft:
		if r.pendingQueue.CanPush() {
			r.pendingQueue.Push(task.ID)
		}
		if r.preVerifyQueue.CanPush() {
			r.preVerifyQueue.Push(task.ID)
		}
	case dispatch.TaskVerify:
		for i := 0; i < int(task.Length) && r.pendingQueue.Size() > 0; i++ {
			r.pendingQueue.Pop()
		}
	case dispatch.TaskPreVerify:
		if r.preVerifyQueue.Size() > 0 {
			r.preVerifyQueue.Pop()
		}
	}
}

// ResourceBuilder can build testbench resources.
type ResourceBuilder struct {
	engine         sim.Engine
	freq           sim.Freq
	fixedLatency   int
	latencyPerUnit int
	pendingQueue   sim.Buffer
	preVerifyQueue sim.Buffer
}

// MakeResourceBuilder creates a builder with default parameters.
func MakeResourceBuilder() ResourceBuilder {
	return ResourceBuilder{
		freq:           1 * sim.GHz,
		fixedLatency:   1,
		latencyPerUnit: 1,
	}
}

// WithEngine sets the event engine the resource runs on.
func (b ResourceBuilder) WithEngine(engine sim.Engine) ResourceBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the resource clock frequency.
func (b ResourceBuilder) WithFreq(freq sim.Freq) ResourceBuilder {
	b.freq = freq
	return b
}

// WithFixedLatency sets the per-task base latency in cycles.
func (b ResourceBuilder) WithFixedLatency(n int) ResourceBuilder {
	b.fixedLatency = n
	return b
}

// WithLatencyPerUnit sets the additional latency per unit of task length.
func (b ResourceBuilder) WithLatencyPerUnit(n int) ResourceBuilder {
	b.latencyPerUnit = n
	return b
}

// WithPendingQueue sets the unverified-task queue the resource mutates.
func (b ResourceBuilder) WithPendingQueue(buf sim.Buffer) ResourceBuilder {
	b.pendingQueue = buf
	return b
}

// WithPreVerifyQueue sets the pre-verify staging queue the resource mutates.
func (b ResourceBuilder) WithPreVerifyQueue(buf sim.Buffer) ResourceBuilder {
	b.preVerifyQueue = buf
	return b
}

// Build creates a resource with the given name.
func (b ResourceBuilder) Build(name string) *Resource {
	r := &Resource{
		fixedLatency:   b.fixedLatency,
		latencyPerUnit: b.latencyPerUnit,
		pendingQueue:   b.pendingQueue,
		preVerifyQueue: b.preVerifyQueue,
	}
	r.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, r)
	r.TopPort = sim.NewPort(r, 4, 4, name+".TopPort")
	r.AddPort("Top", r.TopPort)

	return r
}
