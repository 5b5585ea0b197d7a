package dispatch

import "github.com/schedlab/dispatchsim/sim"

// Register addresses of the control and status file. Registers are 64 bits
// wide and laid out at an 8-byte stride. Reads of unmapped addresses return
// 0, writes to read-only or unmapped addresses are ignored.
const (
	RegCtrl               uint64 = 0x00 // RW, bit 0 enables the controller
	RegDecisionAInterval  uint64 = 0x08 // RW, draft-decision poll interval
	RegDecisionBInterval  uint64 = 0x10 // RW, pre-verify-decision poll interval
	RegQueuePollInterval  uint64 = 0x18 // RW, queue monitor poll interval
	RegLastDecisionA      uint64 = 0x20 // RO, last sampled continue decision
	RegSuppressionCount   uint64 = 0x28 // RO, false continue samples observed
	RegPreVerifyCount     uint64 = 0x30 // RO, pre-verify tasks dispatched
	RegPreventedIdleCount uint64 = 0x38 // RO, cycles rescued by pre-verify work
	RegPendingDepth       uint64 = 0x40 // RO, unverified-task queue depth
	RegFeedbackDepth      uint64 = 0x48 // RO, feedback queue depth
	RegPreVerifyDepth     uint64 = 0x50 // RO, pre-verify queue depth
	RegOverflowCount      uint64 = 0x58 // RO, queue overflow events observed
	RegIntrStatus         uint64 = 0x60 // RO, sticky interrupt flags
	RegIntrClear          uint64 = 0x68 // WO, write-1-to-clear per flag bit
)

// Sticky interrupt flag bits reported in RegIntrStatus. Once set, a flag
// stays set until software writes its bit to RegIntrClear.
const (
	IntrQueueOverflow    uint64 = 1 << 0
	IntrDecisionAChanged uint64 = 1 << 1
	IntrDecisionBChanged uint64 = 1 << 2
)

// ReadRegister returns the current value of one status register. Reads have
// no side effects and never fail; unmapped addresses read as 0.
func (c *Comp) ReadRegister(addr uint64) uint64 {
	c.Lock()
	defer c.Unlock()

	return c.readRegister(addr)
}

// WriteRegister updates one control register. Writes to read-only addresses
// are silently ignored. A write that enables the controller wakes it up.
func (c *Comp) WriteRegister(addr, data uint64) {
	c.Lock()
	c.writeRegister(addr, data)
	enabled := c.cfg.enabled
	c.Unlock()

	if enabled {
		c.TickLater()
	}
}

func (c *Comp) readRegister(addr uint64) uint64 {
	switch addr {
	case RegCtrl:
		return boolToReg(c.cfg.enabled)
	case RegDecisionAInterval:
		return uint64(c.cfg.decisionAInterval)
	case RegDecisionBInterval:
		return uint64(c.cfg.decisionBInterval)
	case RegQueuePollInterval:
		return uint64(c.cfg.queuePollInterval)
	case RegLastDecisionA:
		return boolToReg(c.poller.lastContinue)
	case RegSuppressionCount:
		return c.poller.suppressionCount
	case RegPreVerifyCount:
		return c.stats.TotalPreVerifies
	case RegPreventedIdleCount:
		return c.stats.PreventedIdleCycles
	case RegPendingDepth:
		return uint64(c.pendingQueue.Size())
	case RegFeedbackDepth:
		return uint64(c.feedbackQueue.Size())
	case RegPreVerifyDepth:
		return uint64(c.preVerifyQueue.Size())
	case RegOverflowCount:
		return c.monitor.overflowCount
	case RegIntrStatus:
		return c.flags
	}

	return 0
}

func (c *Comp) writeRegister(addr, data uint64) {
	switch addr {
	case RegCtrl:
		c.cfg.enabled = data&1 != 0
	case RegDecisionAInterval:
		c.cfg.decisionAInterval = uint32(data)
	case RegDecisionBInterval:
		c.cfg.decisionBInterval = uint32(data)
	case RegQueuePollInterval:
		c.cfg.queuePollInterval = uint32(data)
	case RegIntrClear:
		c.flags &^= data &
			(IntrQueueOverflow | IntrDecisionAChanged | IntrDecisionBChanged)
	}
}

func boolToReg(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// ctrlMiddleware services register access requests arriving on the control
// port. The register bus is always ready: every request queued at the start
// of a cycle is answered within that cycle, subject only to response
// backpressure. Writes take effect before the same cycle's poll and
// scheduling logic runs.
type ctrlMiddleware struct {
	*Comp
}

func (m *ctrlMiddleware) Tick() bool {
	madeProgress := false

	for {
		item := m.CtrlPort.PeekIncoming()
		if item == nil {
			break
		}

		var rsp sim.Msg
		var write *RegWriteReq
		switch req := item.(type) {
		case *RegReadReq:
			rsp = RegReadRspBuilder{}.
				WithSrc(m.CtrlPort).
				WithDst(req.Src).
				WithRspTo(req.ID).
				WithAddr(req.Addr).
				WithData(m.readRegister(req.Addr)).
				Build()
		case *RegWriteReq:
			write = req
			rsp = sim.GeneralRspBuilder{}.
				WithSrc(m.CtrlPort).
				WithDst(req.Src).
				WithOriginalReq(req).
				Build()
		default:
			panic("unknown request on control port")
		}

		if err := m.CtrlPort.Send(rsp); err != nil {
			break
		}

		if write != nil {
			m.writeRegister(write.Addr, write.Data)
		}

		m.CtrlPort.RetrieveIncoming()
		madeProgress = true
	}

	return madeProgress
}
