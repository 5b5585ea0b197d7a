package dispatch

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/schedlab/dispatchsim/sim"
)

var _ = Describe("Register File", func() {
	var (
		mockCtrl *gomock.Controller
		f        *testFixture
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		f = makeFixture(mockCtrl, MakeBuilder().
			WithDecisionAInterval(3).
			WithDecisionBInterval(5).
			WithQueuePollInterval(7))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should expose the reset state", func() {
		Expect(f.comp.ReadRegister(RegCtrl)).To(Equal(uint64(0)))
		Expect(f.comp.ReadRegister(RegDecisionAInterval)).To(Equal(uint64(3)))
		Expect(f.comp.ReadRegister(RegDecisionBInterval)).To(Equal(uint64(5)))
		Expect(f.comp.ReadRegister(RegQueuePollInterval)).To(Equal(uint64(7)))
		Expect(f.comp.ReadRegister(RegLastDecisionA)).To(Equal(uint64(1)))
		Expect(f.comp.ReadRegister(RegSuppressionCount)).To(Equal(uint64(0)))
		Expect(f.comp.ReadRegister(RegIntrStatus)).To(Equal(uint64(0)))
	})

	It("should read back written interval values unchanged", func() {
		f.comp.WriteRegister(RegDecisionAInterval, 42)

		Expect(f.comp.ReadRegister(RegDecisionAInterval)).To(Equal(uint64(42)))
	})

	It("should truncate interval writes to 32 bits", func() {
		f.comp.WriteRegister(RegDecisionAInterval, 0x1_0000_0003)

		Expect(f.comp.ReadRegister(RegDecisionAInterval)).To(Equal(uint64(3)))
	})

	It("should ignore writes to read-only registers", func() {
		f.comp.WriteRegister(RegSuppressionCount, 99)
		f.comp.WriteRegister(RegOverflowCount, 99)
		f.comp.WriteRegister(RegIntrStatus, 7)

		Expect(f.comp.ReadRegister(RegSuppressionCount)).To(Equal(uint64(0)))
		Expect(f.comp.ReadRegister(RegOverflowCount)).To(Equal(uint64(0)))
		Expect(f.comp.ReadRegister(RegIntrStatus)).To(Equal(uint64(0)))
	})

	It("should read unmapped addresses as zero", func() {
		Expect(f.comp.ReadRegister(0x70)).To(Equal(uint64(0)))
		Expect(f.comp.ReadRegister(0x1000)).To(Equal(uint64(0)))
	})

	It("should read the write-only clear register as zero", func() {
		Expect(f.comp.ReadRegister(RegIntrClear)).To(Equal(uint64(0)))
	})

	It("should clear only the written interrupt flag bits", func() {
		f.comp.flags = IntrQueueOverflow |
			IntrDecisionAChanged |
			IntrDecisionBChanged

		f.comp.WriteRegister(RegIntrClear, IntrDecisionAChanged)
		Expect(f.comp.ReadRegister(RegIntrStatus)).
			To(Equal(IntrQueueOverflow | IntrDecisionBChanged))

		f.comp.WriteRegister(RegIntrClear, IntrQueueOverflow)
		Expect(f.comp.ReadRegister(RegIntrStatus)).
			To(Equal(IntrDecisionBChanged))

		f.comp.WriteRegister(RegIntrClear, IntrDecisionBChanged)
		Expect(f.comp.ReadRegister(RegIntrStatus)).To(Equal(uint64(0)))
	})

	It("should keep a flag whose clear bit is not written", func() {
		f.comp.flags = IntrQueueOverflow

		f.comp.WriteRegister(RegIntrClear, ^uint64(IntrQueueOverflow))

		Expect(f.comp.ReadRegister(RegIntrStatus)).To(Equal(IntrQueueOverflow))
	})

	It("should report queue depths", func() {
		f.comp.PendingQueue().Push(0)
		f.comp.PendingQueue().Push(1)
		f.comp.PreVerifyQueue().Push(0)

		Expect(f.comp.ReadRegister(RegPendingDepth)).To(Equal(uint64(2)))
		Expect(f.comp.ReadRegister(RegFeedbackDepth)).To(Equal(uint64(0)))
		Expect(f.comp.ReadRegister(RegPreVerifyDepth)).To(Equal(uint64(1)))
	})

	It("should enable and disable the controller through RegCtrl", func() {
		Expect(f.comp.Tick()).To(BeFalse())

		f.comp.WriteRegister(RegCtrl, 1)
		Expect(f.comp.ReadRegister(RegCtrl)).To(Equal(uint64(1)))
		Expect(f.comp.Tick()).To(BeTrue())

		f.comp.WriteRegister(RegCtrl, 0)
		Expect(f.comp.Tick()).To(BeFalse())
	})

	Context("over the control port", func() {
		writeReg := func(addr, data uint64) {
			req := RegWriteReqBuilder{}.
				WithSrc(f.remote).
				WithDst(f.comp.CtrlPort).
				WithAddr(addr).
				WithData(data).
				Build()
			f.comp.CtrlPort.Deliver(req)
		}

		readReg := func(addr uint64) *RegReadReq {
			req := RegReadReqBuilder{}.
				WithSrc(f.remote).
				WithDst(f.comp.CtrlPort).
				WithAddr(addr).
				Build()
			f.comp.CtrlPort.Deliver(req)

			return req
		}

		It("should apply writes and acknowledge them", func() {
			writeReg(RegDecisionAInterval, 11)

			f.comp.Tick()

			Expect(f.comp.ReadRegister(RegDecisionAInterval)).
				To(Equal(uint64(11)))

			rsp := f.comp.CtrlPort.RetrieveOutgoing()
			Expect(rsp).NotTo(BeNil())
			Expect(rsp).To(BeAssignableToTypeOf(&sim.GeneralRsp{}))
		})

		It("should answer reads with the register value", func() {
			req := readReg(RegDecisionBInterval)

			f.comp.Tick()

			rsp := f.comp.CtrlPort.RetrieveOutgoing().(*RegReadRsp)
			Expect(rsp.RspTo).To(Equal(req.ID))
			Expect(rsp.Addr).To(Equal(RegDecisionBInterval))
			Expect(rsp.Data).To(Equal(uint64(5)))
		})

		It("should service every queued request in one cycle", func() {
			writeReg(RegDecisionAInterval, 1)
			writeReg(RegDecisionBInterval, 2)
			readReg(RegQueuePollInterval)

			f.comp.Tick()

			Expect(f.comp.ReadRegister(RegDecisionAInterval)).To(Equal(uint64(1)))
			Expect(f.comp.ReadRegister(RegDecisionBInterval)).To(Equal(uint64(2)))
			Expect(f.comp.CtrlPort.PeekIncoming()).To(BeNil())
		})

		It("should apply a write before the same cycle's scheduling", func() {
			writeReg(RegCtrl, 1)

			f.comp.Tick()

			task, ok := f.dispatchedTask(f.comp.ResourceAPort)
			Expect(ok).To(BeTrue())
			Expect(task.Class).To(Equal(TaskDraft))
		})
	})
})
