package dispatch

import "github.com/schedlab/dispatchsim/sim"

// A DispatchReq launches one task on an execution resource.
type DispatchReq struct {
	sim.MsgMeta

	Task Task
}

// Meta returns the meta data of the message.
func (r *DispatchReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone duplicates the request with a fresh ID.
func (r *DispatchReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// DispatchReqBuilder can build dispatch requests.
type DispatchReqBuilder struct {
	src, dst sim.Port
	task     Task
}

// WithSrc sets the source of the request to build.
func (b DispatchReqBuilder) WithSrc(src sim.Port) DispatchReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b DispatchReqBuilder) WithDst(dst sim.Port) DispatchReqBuilder {
	b.dst = dst
	return b
}

// WithTask sets the task the request carries.
func (b DispatchReqBuilder) WithTask(task Task) DispatchReqBuilder {
	b.task = task
	return b
}

// Build creates a new DispatchReq.
func (b DispatchReqBuilder) Build() *DispatchReq {
	r := &DispatchReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.Task = b.task

	return r
}

// A CompletionMsg is the single-cycle completion pulse a resource sends back
// when it finishes a task. The carried ID and class must match the
// controller's in-flight task exactly, otherwise the pulse is dropped.
type CompletionMsg struct {
	sim.MsgMeta

	TaskID     uint32
	Class      TaskClass
	CycleCount uint64
	Metric     float64
}

// Meta returns the meta data of the message.
func (m *CompletionMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone duplicates the message with a fresh ID.
func (m *CompletionMsg) Clone() sim.Msg {
	cloneMsg := *m
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// CompletionMsgBuilder can build completion messages.
type CompletionMsgBuilder struct {
	src, dst   sim.Port
	taskID     uint32
	class      TaskClass
	cycleCount uint64
	metric     float64
}

// WithSrc sets the source of the message to build.
func (b CompletionMsgBuilder) WithSrc(src sim.Port) CompletionMsgBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the message to build.
func (b CompletionMsgBuilder) WithDst(dst sim.Port) CompletionMsgBuilder {
	b.dst = dst
	return b
}

// WithTaskID sets the ID of the completed task.
func (b CompletionMsgBuilder) WithTaskID(id uint32) CompletionMsgBuilder {
	b.taskID = id
	return b
}

// WithClass sets the class of the completed task.
func (b CompletionMsgBuilder) WithClass(c TaskClass) CompletionMsgBuilder {
	b.class = c
	return b
}

// WithCycleCount sets the number of cycles the task spent executing.
func (b CompletionMsgBuilder) WithCycleCount(n uint64) CompletionMsgBuilder {
	b.cycleCount = n
	return b
}

// WithMetric sets the quality metric reported with the completion.
func (b CompletionMsgBuilder) WithMetric(m float64) CompletionMsgBuilder {
	b.metric = m
	return b
}

// Build creates a new CompletionMsg.
func (b CompletionMsgBuilder) Build() *CompletionMsg {
	m := &CompletionMsg{}
	m.ID = sim.GetIDGenerator().Generate()
	m.Src = b.src
	m.Dst = b.dst
	m.TaskID = b.taskID
	m.Class = b.class
	m.CycleCount = b.cycleCount
	m.Metric = b.metric

	return m
}

// A RegReadReq reads one 64-bit register from the controller's control and
// status file.
type RegReadReq struct {
	sim.MsgMeta

	Addr uint64
}

// Meta returns the meta data of the message.
func (r *RegReadReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone duplicates the request with a fresh ID.
func (r *RegReadReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// RegReadReqBuilder can build register read requests.
type RegReadReqBuilder struct {
	src, dst sim.Port
	addr     uint64
}

// WithSrc sets the source of the request to build.
func (b RegReadReqBuilder) WithSrc(src sim.Port) RegReadReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b RegReadReqBuilder) WithDst(dst sim.Port) RegReadReqBuilder {
	b.dst = dst
	return b
}

// WithAddr sets the register address to read.
func (b RegReadReqBuilder) WithAddr(addr uint64) RegReadReqBuilder {
	b.addr = addr
	return b
}

// Build creates a new RegReadReq.
func (b RegReadReqBuilder) Build() *RegReadReq {
	r := &RegReadReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.Addr = b.addr

	return r
}

// A RegReadRsp carries the value read from a register.
type RegReadRsp struct {
	sim.MsgMeta

	RspTo string
	Addr  uint64
	Data  uint64
}

// Meta returns the meta data of the message.
func (r *RegReadRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone duplicates the response with a fresh ID.
func (r *RegReadRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the request the response is for.
func (r *RegReadRsp) GetRspTo() string {
	return r.RspTo
}

// RegReadRspBuilder can build register read responses.
type RegReadRspBuilder struct {
	src, dst sim.Port
	rspTo    string
	addr     uint64
	data     uint64
}

// WithSrc sets the source of the response to build.
func (b RegReadRspBuilder) WithSrc(src sim.Port) RegReadRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b RegReadRspBuilder) WithDst(dst sim.Port) RegReadRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets the ID of the request the response answers.
func (b RegReadRspBuilder) WithRspTo(id string) RegReadRspBuilder {
	b.rspTo = id
	return b
}

// WithAddr sets the register address that was read.
func (b RegReadRspBuilder) WithAddr(addr uint64) RegReadRspBuilder {
	b.addr = addr
	return b
}

// WithData sets the value that was read.
func (b RegReadRspBuilder) WithData(data uint64) RegReadRspBuilder {
	b.data = data
	return b
}

// Build creates a new RegReadRsp.
func (b RegReadRspBuilder) Build() *RegReadRsp {
	r := &RegReadRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.RspTo = b.rspTo
	r.Addr = b.addr
	r.Data = b.data

	return r
}

// A RegWriteReq writes one 64-bit register in the controller's control and
// status file. Writes to read-only addresses are silently ignored.
type RegWriteReq struct {
	sim.MsgMeta

	Addr uint64
	Data uint64
}

// Meta returns the meta data of the message.
func (r *RegWriteReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone duplicates the request with a fresh ID.
func (r *RegWriteReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// RegWriteReqBuilder can build register write requests.
type RegWriteReqBuilder struct {
	src, dst sim.Port
	addr     uint64
	data     uint64
}

// WithSrc sets the source of the request to build.
func (b RegWriteReqBuilder) WithSrc(src sim.Port) RegWriteReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b RegWriteReqBuilder) WithDst(dst sim.Port) RegWriteReqBuilder {
	b.dst = dst
	return b
}

// WithAddr sets the register address to write.
func (b RegWriteReqBuilder) WithAddr(addr uint64) RegWriteReqBuilder {
	b.addr = addr
	return b
}

// WithData sets the value to write.
func (b RegWriteReqBuilder) WithData(data uint64) RegWriteReqBuilder {
	b.data = data
	return b
}

// Build creates a new RegWriteReq.
func (b RegWriteReqBuilder) Build() *RegWriteReq {
	r := &RegWriteReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.Addr = b.addr
	r.Data = b.data

	return r
}
