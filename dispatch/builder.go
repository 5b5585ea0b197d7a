package dispatch

import "github.com/schedlab/dispatchsim/sim"

// Builder can build dispatch controllers.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq

	pendingQueue   sim.Buffer
	feedbackQueue  sim.Buffer
	preVerifyQueue sim.Buffer
	queueCapacity  int

	resourceADst sim.Port
	resourceBDst sim.Port

	continueSrc  ContinueSource
	preVerifySrc PreVerifySource

	enabled           bool
	decisionAInterval uint32
	decisionBInterval uint32
	queuePollInterval uint32
	maxPending        int
	overflowThreshold int
	maxDraftLength    uint16

	deadlineCheck DeadlineCheckFunc
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:              1 * sim.GHz,
		queueCapacity:     16,
		maxPending:        4,
		overflowThreshold: 8,
		maxDraftLength:    8,
	}
}

// WithEngine sets the event engine the controller runs on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the controller clock frequency.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithPendingQueue makes the controller observe an externally owned
// unverified-task queue instead of creating its own.
func (b Builder) WithPendingQueue(buf sim.Buffer) Builder {
	b.pendingQueue = buf
	return b
}

// WithFeedbackQueue makes the controller use an externally owned feedback
// queue instead of creating its own.
func (b Builder) WithFeedbackQueue(buf sim.Buffer) Builder {
	b.feedbackQueue = buf
	return b
}

// WithPreVerifyQueue makes the controller observe an externally owned
// pre-verify queue instead of creating its own.
func (b Builder) WithPreVerifyQueue(buf sim.Buffer) Builder {
	b.preVerifyQueue = buf
	return b
}

// WithQueueCapacity sets the capacity of the queues the builder creates.
func (b Builder) WithQueueCapacity(n int) Builder {
	b.queueCapacity = n
	return b
}

// WithResourceADst sets the port draft and pre-verify dispatches are sent
// to.
func (b Builder) WithResourceADst(p sim.Port) Builder {
	b.resourceADst = p
	return b
}

// WithResourceBDst sets the port verify dispatches are sent to.
func (b Builder) WithResourceBDst(p sim.Port) Builder {
	b.resourceBDst = p
	return b
}

// WithContinueSource sets the advisory continue-drafting decision source.
func (b Builder) WithContinueSource(src ContinueSource) Builder {
	b.continueSrc = src
	return b
}

// WithPreVerifySource sets the advisory pre-verification decision source.
func (b Builder) WithPreVerifySource(src PreVerifySource) Builder {
	b.preVerifySrc = src
	return b
}

// WithEnabled sets whether the controller starts enabled. The controller is
// disabled at reset and normally enabled by software through RegCtrl.
func (b Builder) WithEnabled(enabled bool) Builder {
	b.enabled = enabled
	return b
}

// WithDecisionAInterval sets the reset value of the draft-decision poll
// interval register.
func (b Builder) WithDecisionAInterval(n uint32) Builder {
	b.decisionAInterval = n
	return b
}

// WithDecisionBInterval sets the reset value of the pre-verify-decision poll
// interval register.
func (b Builder) WithDecisionBInterval(n uint32) Builder {
	b.decisionBInterval = n
	return b
}

// WithQueuePollInterval sets the reset value of the queue monitor poll
// interval register.
func (b Builder) WithQueuePollInterval(n uint32) Builder {
	b.queuePollInterval = n
	return b
}

// WithMaxPending sets the pending-queue depth at which drafting stalls.
func (b Builder) WithMaxPending(n int) Builder {
	b.maxPending = n
	return b
}

// WithOverflowThreshold sets the queue depth the monitor treats as an
// overflow.
func (b Builder) WithOverflowThreshold(n int) Builder {
	b.overflowThreshold = n
	return b
}

// WithMaxDraftLength sets the length assigned to draft tasks.
func (b Builder) WithMaxDraftLength(n uint16) Builder {
	b.maxDraftLength = n
	return b
}

// WithDeadlineCheck installs a per-cycle latency check on in-flight tasks.
func (b Builder) WithDeadlineCheck(f DeadlineCheckFunc) Builder {
	b.deadlineCheck = f
	return b
}

// Build creates a dispatch controller with the given name.
func (b Builder) Build(name string) *Comp {
	if b.continueSrc == nil || b.preVerifySrc == nil {
		panic("dispatch controller requires both decision sources")
	}

	c := &Comp{}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.CtrlPort = sim.NewPort(c, 4, 4, name+".CtrlPort")
	c.ResourceAPort = sim.NewPort(c, 4, 4, name+".ResourceAPort")
	c.ResourceBPort = sim.NewPort(c, 4, 4, name+".ResourceBPort")
	c.AddPort("Ctrl", c.CtrlPort)
	c.AddPort("ResourceA", c.ResourceAPort)
	c.AddPort("ResourceB", c.ResourceBPort)

	c.pendingQueue = b.pendingQueue
	if c.pendingQueue == nil {
		c.pendingQueue = sim.NewBuffer(name+".PendingQueue", b.queueCapacity)
	}
	c.feedbackQueue = b.feedbackQueue
	if c.feedbackQueue == nil {
		c.feedbackQueue = sim.NewBuffer(name+".FeedbackQueue", b.queueCapacity)
	}
	c.preVerifyQueue = b.preVerifyQueue
	if c.preVerifyQueue == nil {
		c.preVerifyQueue = sim.NewBuffer(name+".PreVerifyQueue", b.queueCapacity)
	}

	c.resourceADst = b.resourceADst
	c.resourceBDst = b.resourceBDst
	c.continueSrc = b.continueSrc
	c.preVerifySrc = b.preVerifySrc
	c.deadlineCheck = b.deadlineCheck

	c.cfg = config{
		enabled:           b.enabled,
		decisionAInterval: b.decisionAInterval,
		decisionBInterval: b.decisionBInterval,
		queuePollInterval: b.queuePollInterval,
		maxPending:        b.maxPending,
		overflowThreshold: b.overflowThreshold,
		maxDraftLength:    b.maxDraftLength,
	}
	c.poller = newDecisionPoller()

	// Register writes land before the same cycle's polls, polls store fresh
	// decisions before the schedulers consult them, and the monitor samples
	// depths after the schedulers have moved work.
	c.AddMiddleware(&ctrlMiddleware{Comp: c})
	c.AddMiddleware(&pollerMiddleware{Comp: c})
	c.AddMiddleware(&schedulerA{Comp: c})
	c.AddMiddleware(&schedulerB{Comp: c})
	c.AddMiddleware(&monitorMiddleware{Comp: c})

	return c
}
