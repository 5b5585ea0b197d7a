package dispatch

import "github.com/schedlab/dispatchsim/sim"

// queueMonitor samples the three queue depths on its own poll timer. Each
// expiration updates per-queue high-water marks and checks every depth
// against the overflow threshold. Overflow detection is level-triggered at
// poll granularity: every expiration that observes any depth at or above the
// threshold counts one more overflow event and raises the sticky overflow
// flag.
type queueMonitor struct {
	counter uint32

	highWater     [3]int
	overflowCount uint64
}

type monitorMiddleware struct {
	*Comp
}

func (m *monitorMiddleware) Tick() bool {
	if !m.cfg.enabled {
		return false
	}

	mon := &m.monitor

	if mon.counter < m.cfg.queuePollInterval {
		mon.counter++
		return true
	}
	mon.counter = 0

	depths := [3]int{
		m.pendingQueue.Size(),
		m.feedbackQueue.Size(),
		m.preVerifyQueue.Size(),
	}

	overflow := false
	for i, d := range depths {
		if d > mon.highWater[i] {
			mon.highWater[i] = d
		}
		if d >= m.cfg.overflowThreshold {
			overflow = true
		}
	}

	if overflow {
		m.flags |= IntrQueueOverflow
		mon.overflowCount++

		if m.NumHooks() > 0 {
			m.InvokeHook(sim.HookCtx{
				Domain: m.Comp,
				Pos:    HookPosQueueOverflow,
				Item:   depths,
			})
		}
	}

	return true
}
