package dispatch

// Statistics aggregates the controller's scheduling counters. All counters
// only ever increase while the simulation runs.
type Statistics struct {
	TotalDrafts      uint64
	TotalVerifies    uint64
	TotalPreVerifies uint64

	// SuppressedDrafts counts idle cycles in which a draft was not launched
	// because the stored continue decision was false.
	SuppressedDrafts uint64

	// IdleCyclesA and IdleCyclesB count enabled cycles a resource spent idle
	// without launching anything.
	IdleCyclesA uint64
	IdleCyclesB uint64

	// PreventedIdleCycles counts cycles Resource-A spent on pre-verify work,
	// cycles it would otherwise have idled through.
	PreventedIdleCycles uint64

	// DecisionAChanges and DecisionBChanges count samples that differed from
	// the stored decision. They advance together with the sticky interrupt
	// flags but are never cleared.
	DecisionAChanges uint64
	DecisionBChanges uint64

	// DroppedCompletions counts completion pulses whose ID or class did not
	// match the in-flight task. DroppedFeedback counts draft results lost to
	// a full feedback queue.
	DroppedCompletions uint64
	DroppedFeedback    uint64
}

// Stats returns a copy of the controller's counters.
func (c *Comp) Stats() Statistics {
	c.Lock()
	defer c.Unlock()

	return c.stats
}

// HighWaterMarks returns the maximum observed depths of the pending,
// feedback, and pre-verify queues, in that order.
func (c *Comp) HighWaterMarks() [3]int {
	c.Lock()
	defer c.Unlock()

	return c.monitor.highWater
}
