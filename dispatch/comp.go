package dispatch

import "github.com/schedlab/dispatchsim/sim"

// HookPosTaskDispatch is triggered when a task is accepted by a resource.
var HookPosTaskDispatch = &sim.HookPos{Name: "TaskDispatch"}

// HookPosTaskComplete is triggered when a completion pulse matches the
// in-flight task.
var HookPosTaskComplete = &sim.HookPos{Name: "TaskComplete"}

// HookPosCompletionDropped is triggered when a completion pulse is discarded
// because its ID or class does not match the in-flight task.
var HookPosCompletionDropped = &sim.HookPos{Name: "CompletionDropped"}

// HookPosQueueOverflow is triggered when a queue monitor poll observes a
// depth at or above the overflow threshold.
var HookPosQueueOverflow = &sim.HookPos{Name: "QueueOverflow"}

type config struct {
	enabled bool

	decisionAInterval uint32
	decisionBInterval uint32
	queuePollInterval uint32

	maxPending        int
	overflowThreshold int
	maxDraftLength    uint16
}

// Comp is the dispatch controller. It drives two resource state machines,
// two advisory decision poll timers, and a queue depth monitor, all stepped
// in lockstep by the controller clock, and exposes a register file for
// software control.
//
// Ports:
//   - CtrlPort receives register read and write requests.
//   - ResourceAPort carries draft and pre-verify dispatches out and their
//     completion pulses in.
//   - ResourceBPort does the same for verify tasks.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	CtrlPort      sim.Port
	ResourceAPort sim.Port
	ResourceBPort sim.Port

	resourceADst sim.Port
	resourceBDst sim.Port

	pendingQueue   sim.Buffer
	feedbackQueue  sim.Buffer
	preVerifyQueue sim.Buffer

	continueSrc  ContinueSource
	preVerifySrc PreVerifySource

	cfg     config
	ids     taskIDAllocator
	poller  decisionPoller
	monitor queueMonitor
	flags   uint64
	stats   Statistics

	resourceA resourceATracker
	resourceB resourceBTracker

	deadlineCheck DeadlineCheckFunc
}

// DeadlineCheckFunc is called once per cycle for every in-flight task with
// the number of cycles the task has been executing. It can panic or log to
// flag tasks that exceed an expected latency bound.
type DeadlineCheckFunc func(task Task, cycles uint64)

// Tick advances all controller logic by one cycle.
func (c *Comp) Tick() bool {
	c.Lock()
	defer c.Unlock()

	return c.MiddlewareHolder.Tick()
}

// PendingQueue returns the unverified-task queue. The producing and
// consuming resource models mutate it; the controller only reads its depth.
func (c *Comp) PendingQueue() sim.Buffer {
	return c.pendingQueue
}

// FeedbackQueue returns the feedback queue. The controller pushes one entry
// per completed draft and drains one entry per WaitFeedback pass.
func (c *Comp) FeedbackQueue() sim.Buffer {
	return c.feedbackQueue
}

// PreVerifyQueue returns the pre-verify staging queue. It is sampled by the
// queue monitor only; result consumption belongs to the resource models.
func (c *Comp) PreVerifyQueue() sim.Buffer {
	return c.preVerifyQueue
}

// ResourceAStatus returns the draft-side state and in-flight task.
func (c *Comp) ResourceAStatus() (ResourceAState, Task) {
	c.Lock()
	defer c.Unlock()

	return c.resourceA.state, c.resourceA.inFlight
}

// ResourceBStatus returns the verify-side state and in-flight task.
func (c *Comp) ResourceBStatus() (ResourceBState, Task) {
	c.Lock()
	defer c.Unlock()

	return c.resourceB.state, c.resourceB.inFlight
}
