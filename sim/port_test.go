package sim

import (
	gomock "go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type sampleMsg struct {
	MsgMeta
}

func (m *sampleMsg) Meta() *MsgMeta {
	return &m.MsgMeta
}

func (m *sampleMsg) Clone() Msg {
	clone := *m
	clone.ID = GetIDGenerator().Generate()
	return &clone
}

var _ = Describe("DefaultPort", func() {
	var (
		mockCtrl *gomock.Controller
		comp     *MockComponent
		conn     *MockConnection
		port     Port
		dstPort  *MockPort
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		comp = NewMockComponent(mockCtrl)
		conn = NewMockConnection(mockCtrl)
		dstPort = NewMockPort(mockCtrl)

		port = NewPort(comp, 2, 2, "Comp.Port")
		port.SetConnection(conn)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should buffer outgoing messages and notify the connection", func() {
		msg := &sampleMsg{}
		msg.Src = port
		msg.Dst = dstPort

		conn.EXPECT().NotifySend()

		Expect(port.CanSend()).To(BeTrue())
		Expect(port.Send(msg)).To(BeNil())
		Expect(port.PeekOutgoing()).To(BeIdenticalTo(msg))
	})

	It("should reject outgoing messages when the buffer is full", func() {
		msg1 := &sampleMsg{}
		msg1.Src = port
		msg1.Dst = dstPort
		msg2 := &sampleMsg{}
		msg2.Src = port
		msg2.Dst = dstPort
		msg3 := &sampleMsg{}
		msg3.Src = port
		msg3.Dst = dstPort

		conn.EXPECT().NotifySend()

		Expect(port.Send(msg1)).To(BeNil())
		Expect(port.Send(msg2)).To(BeNil())
		Expect(port.CanSend()).To(BeFalse())
		Expect(port.Send(msg3)).NotTo(BeNil())
	})

	It("should panic when the sending port is not the msg src", func() {
		msg := &sampleMsg{}
		msg.Src = dstPort
		msg.Dst = dstPort

		Expect(func() { port.Send(msg) }).To(Panic())
	})

	It("should deliver incoming messages and notify the component", func() {
		msg := &sampleMsg{}
		msg.Src = dstPort
		msg.Dst = port

		comp.EXPECT().NotifyRecv(port)

		Expect(port.Deliver(msg)).To(BeNil())
		Expect(port.PeekIncoming()).To(BeIdenticalTo(msg))
		Expect(port.RetrieveIncoming()).To(BeIdenticalTo(msg))
		Expect(port.PeekIncoming()).To(BeNil())
	})

	It("should notify only on the first message in the incoming buffer", func() {
		msg1 := &sampleMsg{}
		msg1.Src = dstPort
		msg1.Dst = port
		msg2 := &sampleMsg{}
		msg2.Src = dstPort
		msg2.Dst = port

		comp.EXPECT().NotifyRecv(port)

		Expect(port.Deliver(msg1)).To(BeNil())
		Expect(port.Deliver(msg2)).To(BeNil())
	})

	It("should reject deliveries when the incoming buffer is full", func() {
		msg1 := &sampleMsg{}
		msg1.Src = dstPort
		msg1.Dst = port
		msg2 := &sampleMsg{}
		msg2.Src = dstPort
		msg2.Dst = port
		msg3 := &sampleMsg{}
		msg3.Src = dstPort
		msg3.Dst = port

		comp.EXPECT().NotifyRecv(port)

		Expect(port.Deliver(msg1)).To(BeNil())
		Expect(port.Deliver(msg2)).To(BeNil())
		Expect(port.Deliver(msg3)).NotTo(BeNil())
	})

	It("should notify the connection when buffer space frees up", func() {
		msg1 := &sampleMsg{}
		msg1.Src = dstPort
		msg1.Dst = port
		msg2 := &sampleMsg{}
		msg2.Src = dstPort
		msg2.Dst = port

		comp.EXPECT().NotifyRecv(port)
		conn.EXPECT().NotifyAvailable(port)

		Expect(port.Deliver(msg1)).To(BeNil())
		Expect(port.Deliver(msg2)).To(BeNil())
		Expect(port.RetrieveIncoming()).To(BeIdenticalTo(msg1))
	})
})
