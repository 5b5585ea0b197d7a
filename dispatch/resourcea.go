package dispatch

import "github.com/schedlab/dispatchsim/sim"

// ResourceAState enumerates the draft-side state machine states.
type ResourceAState int

// Resource-A holds at most one task in flight and is otherwise idle.
const (
	ResourceAIdle ResourceAState = iota
	ResourceADrafting
	ResourceAPreVerifying
)

func (s ResourceAState) String() string {
	switch s {
	case ResourceAIdle:
		return "Idle"
	case ResourceADrafting:
		return "Drafting"
	case ResourceAPreVerifying:
		return "PreVerifying"
	}
	return "Unknown"
}

type resourceATracker struct {
	state          ResourceAState
	inFlight       Task
	cyclesInFlight uint64
}

// schedulerA drives the draft side. From Idle it consults the stored
// advisory decisions: a false continue decision suppresses drafting but
// still allows opportunistic pre-verify work, and an eligible pre-verify
// decision takes priority over drafting when unverified work is pending.
// Draft dispatch is additionally gated by the pending-queue depth.
type schedulerA struct {
	*Comp
}

func (m *schedulerA) Tick() bool {
	madeProgress := false

	switch m.resourceA.state {
	case ResourceAIdle:
		madeProgress = m.processACompletions()
		if m.cfg.enabled {
			madeProgress = m.dispatchFromIdle() || madeProgress
		}
	case ResourceADrafting:
		m.resourceA.cyclesInFlight++
		m.checkDeadline(m.resourceA.inFlight, m.resourceA.cyclesInFlight)
		madeProgress = m.processACompletions()
	case ResourceAPreVerifying:
		m.resourceA.cyclesInFlight++
		m.stats.PreventedIdleCycles++
		m.checkDeadline(m.resourceA.inFlight, m.resourceA.cyclesInFlight)
		madeProgress = m.processACompletions()
	}

	return madeProgress
}

func (m *schedulerA) dispatchFromIdle() bool {
	p := &m.poller
	pending := m.pendingQueue.Size()
	preVerifyReady := p.lastPreVerifyOK && pending > 0

	if !p.lastContinue {
		m.stats.SuppressedDrafts++
		if preVerifyReady {
			return m.startPreVerify()
		}
		m.stats.IdleCyclesA++
		return false
	}

	// Pre-verify work preempts drafting whenever it is eligible.
	if preVerifyReady {
		return m.startPreVerify()
	}

	if pending < m.cfg.maxPending {
		return m.startDraft()
	}

	m.stats.IdleCyclesA++
	return false
}

func (m *schedulerA) startDraft() bool {
	task := Task{
		ID:       m.ids.peek(TaskDraft),
		Class:    TaskDraft,
		Length:   m.cfg.maxDraftLength,
		Resource: ResourceA,
	}

	if !m.launch(m.ResourceAPort, m.resourceADst, task) {
		return false
	}

	m.ids.allocate(TaskDraft)
	m.resourceA.state = ResourceADrafting
	m.resourceA.inFlight = task
	m.resourceA.cyclesInFlight = 0
	m.stats.TotalDrafts++

	return true
}

func (m *schedulerA) startPreVerify() bool {
	task := Task{
		ID:       m.ids.peek(TaskPreVerify),
		Class:    TaskPreVerify,
		Length:   uint16(m.poller.lastPreVerifyLen),
		Resource: ResourceA,
	}

	if !m.launch(m.ResourceAPort, m.resourceADst, task) {
		return false
	}

	m.ids.allocate(TaskPreVerify)
	m.resourceA.state = ResourceAPreVerifying
	m.resourceA.inFlight = task
	m.resourceA.cyclesInFlight = 0
	m.stats.TotalPreVerifies++

	return true
}

// launch sends a dispatch request and reports whether the resource path
// accepted it. A rejected dispatch leaves all state untouched so the same
// decision is retried next cycle.
func (m *Comp) launch(src, dst sim.Port, task Task) bool {
	req := DispatchReqBuilder{}.
		WithSrc(src).
		WithDst(dst).
		WithTask(task).
		Build()

	if err := src.Send(req); err != nil {
		return false
	}

	if m.NumHooks() > 0 {
		m.InvokeHook(sim.HookCtx{
			Domain: m,
			Pos:    HookPosTaskDispatch,
			Item:   task,
		})
	}

	return true
}

func (m *schedulerA) processACompletions() bool {
	madeProgress := false

	for {
		item := m.ResourceAPort.PeekIncoming()
		if item == nil {
			break
		}

		msg, ok := item.(*CompletionMsg)
		if !ok {
			panic("unknown message on Resource-A port")
		}

		m.ResourceAPort.RetrieveIncoming()
		madeProgress = true

		if m.resourceA.state == ResourceAIdle ||
			msg.TaskID != m.resourceA.inFlight.ID ||
			msg.Class != m.resourceA.inFlight.Class {
			m.dropCompletion(msg)
			continue
		}

		m.completeA(msg)
	}

	return madeProgress
}

func (m *schedulerA) completeA(msg *CompletionMsg) {
	task := m.resourceA.inFlight

	if task.Class == TaskDraft {
		entry := FeedbackEntry{DraftID: task.ID, Length: task.Length}
		if m.feedbackQueue.CanPush() {
			m.feedbackQueue.Push(entry)
		} else {
			m.stats.DroppedFeedback++
		}
	}

	m.resourceA.state = ResourceAIdle
	m.resourceA.inFlight = Task{}
	m.resourceA.cyclesInFlight = 0

	if m.NumHooks() > 0 {
		m.InvokeHook(sim.HookCtx{
			Domain: m.Comp,
			Pos:    HookPosTaskComplete,
			Item:   task,
			Detail: msg,
		})
	}
}

// dropCompletion discards a completion pulse whose ID or class does not
// match the in-flight task. The drop is silent at the architectural level
// but is counted and hookable for debugging.
func (m *Comp) dropCompletion(msg *CompletionMsg) {
	m.stats.DroppedCompletions++

	if m.NumHooks() > 0 {
		m.InvokeHook(sim.HookCtx{
			Domain: m,
			Pos:    HookPosCompletionDropped,
			Item:   msg,
		})
	}
}

func (m *Comp) checkDeadline(task Task, cycles uint64) {
	if m.deadlineCheck != nil {
		m.deadlineCheck(task, cycles)
	}
}
