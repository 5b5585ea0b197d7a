package dispatch

// A ContinueSource supplies the advisory continue-drafting decision sampled
// by the draft-decision poll timer.
type ContinueSource interface {
	Continue() bool
}

// A PreVerifySource supplies the advisory pre-verification decision sampled
// by the pre-verify poll timer: whether opportunistic pre-verify work is
// worthwhile right now, and how long such a task should be.
type PreVerifySource interface {
	Advice() (eligible bool, length uint8)
}

// decisionPoller owns the two advisory poll timers. Each timer counts ticks
// while the controller is enabled and expires when its counter reaches the
// configured interval, so an interval of N samples every N+1 ticks and an
// interval of 0 samples every tick. Between expirations the last sampled
// values stay in force. A sample that differs from the stored value raises
// the corresponding sticky interrupt flag and advances a change counter.
type decisionPoller struct {
	counterA uint32
	counterB uint32

	lastContinue     bool
	lastPreVerifyOK  bool
	lastPreVerifyLen uint8

	suppressionCount uint64
}

func newDecisionPoller() decisionPoller {
	// Drafting proceeds until the first sample says otherwise.
	return decisionPoller{lastContinue: true}
}

type pollerMiddleware struct {
	*Comp
}

func (m *pollerMiddleware) Tick() bool {
	if !m.cfg.enabled {
		return false
	}

	p := &m.poller

	if p.counterA >= m.cfg.decisionAInterval {
		p.counterA = 0
		v := m.continueSrc.Continue()
		if v != p.lastContinue {
			m.flags |= IntrDecisionAChanged
			m.stats.DecisionAChanges++
		}
		if !v {
			p.suppressionCount++
		}
		p.lastContinue = v
	} else {
		p.counterA++
	}

	if p.counterB >= m.cfg.decisionBInterval {
		p.counterB = 0
		ok, length := m.preVerifySrc.Advice()
		if ok != p.lastPreVerifyOK || length != p.lastPreVerifyLen {
			m.flags |= IntrDecisionBChanged
			m.stats.DecisionBChanges++
		}
		p.lastPreVerifyOK = ok
		p.lastPreVerifyLen = length
	} else {
		p.counterB++
	}

	// The timers advanced, so the controller must keep ticking while it
	// stays enabled.
	return true
}
