package dispatch

import "github.com/schedlab/dispatchsim/sim"

// ResourceBState enumerates the verify-side state machine states.
type ResourceBState int

// Resource-B verifies pending work and passes through a one-cycle
// WaitFeedback state after each verification.
const (
	ResourceBIdle ResourceBState = iota
	ResourceBVerifying
	ResourceBWaitFeedback
)

func (s ResourceBState) String() string {
	switch s {
	case ResourceBIdle:
		return "Idle"
	case ResourceBVerifying:
		return "Verifying"
	case ResourceBWaitFeedback:
		return "WaitFeedback"
	}
	return "Unknown"
}

type resourceBTracker struct {
	state          ResourceBState
	inFlight       Task
	cyclesInFlight uint64
}

// schedulerB drives the verify side. From Idle it launches one verify task
// covering everything currently pending. WaitFeedback never blocks: it
// opportunistically pops one feedback entry if any is available and returns
// to Idle after exactly one cycle either way.
type schedulerB struct {
	*Comp
}

func (m *schedulerB) Tick() bool {
	madeProgress := false

	switch m.resourceB.state {
	case ResourceBIdle:
		madeProgress = m.processBCompletions()
		if m.cfg.enabled {
			madeProgress = m.verifyFromIdle() || madeProgress
		}
	case ResourceBVerifying:
		m.resourceB.cyclesInFlight++
		m.checkDeadline(m.resourceB.inFlight, m.resourceB.cyclesInFlight)
		madeProgress = m.processBCompletions()
	case ResourceBWaitFeedback:
		if m.feedbackQueue.Size() > 0 {
			m.feedbackQueue.Pop()
		}
		m.resourceB.state = ResourceBIdle
		madeProgress = true
	}

	return madeProgress
}

func (m *schedulerB) verifyFromIdle() bool {
	pending := m.pendingQueue.Size()
	if pending == 0 {
		m.stats.IdleCyclesB++
		return false
	}

	task := Task{
		ID:       m.ids.peek(TaskVerify),
		Class:    TaskVerify,
		Length:   uint16(pending),
		Resource: ResourceB,
	}

	if !m.launch(m.ResourceBPort, m.resourceBDst, task) {
		return false
	}

	m.ids.allocate(TaskVerify)
	m.resourceB.state = ResourceBVerifying
	m.resourceB.inFlight = task
	m.resourceB.cyclesInFlight = 0
	m.stats.TotalVerifies++

	return true
}

func (m *schedulerB) processBCompletions() bool {
	madeProgress := false

	for {
		item := m.ResourceBPort.PeekIncoming()
		if item == nil {
			break
		}

		msg, ok := item.(*CompletionMsg)
		if !ok {
			panic("unknown message on Resource-B port")
		}

		m.ResourceBPort.RetrieveIncoming()
		madeProgress = true

		if m.resourceB.state != ResourceBVerifying ||
			msg.TaskID != m.resourceB.inFlight.ID ||
			msg.Class != m.resourceB.inFlight.Class {
			m.dropCompletion(msg)
			continue
		}

		m.completeB(msg)
	}

	return madeProgress
}

func (m *schedulerB) completeB(msg *CompletionMsg) {
	task := m.resourceB.inFlight

	m.resourceB.state = ResourceBWaitFeedback
	m.resourceB.inFlight = Task{}
	m.resourceB.cyclesInFlight = 0

	if m.NumHooks() > 0 {
		m.InvokeHook(sim.HookCtx{
			Domain: m.Comp,
			Pos:    HookPosTaskComplete,
			Item:   task,
			Detail: msg,
		})
	}
}
