// Package dispatch implements the control core of an asynchronous
// heterogeneous task-dispatch controller. Two execution resources work on a
// two-phase draft-then-verify workload. Resource-A produces speculative
// draft tasks (and opportunistic pre-verify tasks when drafting is
// suppressed), Resource-B verifies everything pending. The two sides never
// synchronize directly: they are coupled only through bounded queues, and
// their behavior is gated by advisory decisions sampled on independent
// timers.
package dispatch

// TaskClass identifies the kind of work a task carries.
type TaskClass int

// The three task classes the controller schedules.
const (
	TaskDraft TaskClass = iota
	TaskVerify
	TaskPreVerify

	numTaskClasses
)

func (c TaskClass) String() string {
	switch c {
	case TaskDraft:
		return "Draft"
	case TaskVerify:
		return "Verify"
	case TaskPreVerify:
		return "PreVerify"
	}
	return "Unknown"
}

// ResourceID identifies one of the controller's two execution resources.
type ResourceID int

// The two execution resources.
const (
	ResourceA ResourceID = iota
	ResourceB
)

func (r ResourceID) String() string {
	if r == ResourceA {
		return "ResourceA"
	}
	return "ResourceB"
}

// A Task is one unit of in-flight work tracked by a resource state machine.
type Task struct {
	ID       uint32
	Class    TaskClass
	Length   uint16
	Resource ResourceID
}

// taskIDAllocator issues monotonically increasing identifiers, partitioned
// by task class. IDs start at 0 and are never reused. Wraparound is not a
// concern within the controller's counter widths.
type taskIDAllocator struct {
	next [numTaskClasses]uint32
}

func (a *taskIDAllocator) allocate(c TaskClass) uint32 {
	id := a.next[c]
	a.next[c]++
	return id
}

// peek returns the ID the next allocation of the class would get.
func (a *taskIDAllocator) peek(c TaskClass) uint32 {
	return a.next[c]
}

// FeedbackEntry is one verification feedback item exchanged through the
// feedback queue: pushed by the draft side on draft completion, drained by
// the verify side while passing through its WaitFeedback state.
type FeedbackEntry struct {
	DraftID uint32
	Length  uint16
}
