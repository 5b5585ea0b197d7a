package datarecording

import (
	"github.com/schedlab/dispatchsim/dispatch"
	"github.com/schedlab/dispatchsim/sim"
)

// A TaskEntry is one row of the task trace table.
type TaskEntry struct {
	Time     float64
	Kind     string
	Class    string
	TaskID   uint32
	Length   uint16
	Resource string
	Cycles   uint64
	Metric   float64
}

// Trace event kinds.
const (
	TraceKindDispatch = "Dispatch"
	TraceKindComplete = "Complete"
	TraceKindDropped  = "Dropped"
)

// A TaskTracer is a hook that records every task dispatch, completion, and
// dropped completion of a controller into a database table.
type TaskTracer struct {
	recorder   DataRecorder
	timeTeller sim.TimeTeller
	tableName  string
}

// NewTaskTracer creates a tracer that writes into the task_trace table.
func NewTaskTracer(
	recorder DataRecorder,
	timeTeller sim.TimeTeller,
) *TaskTracer {
	t := &TaskTracer{
		recorder:   recorder,
		timeTeller: timeTeller,
		tableName:  "task_trace",
	}

	recorder.CreateTable(t.tableName, TaskEntry{})

	return t
}

// Func records one hook invocation.
func (t *TaskTracer) Func(ctx sim.HookCtx) {
	now := float64(t.timeTeller.CurrentTime())

	switch ctx.Pos {
	case dispatch.HookPosTaskDispatch:
		task := ctx.Item.(dispatch.Task)
		t.recorder.InsertData(t.tableName, taskToEntry(now, TraceKindDispatch, task))
	case dispatch.HookPosTaskComplete:
		task := ctx.Item.(dispatch.Task)
		entry := taskToEntry(now, TraceKindComplete, task)
		if msg, ok := ctx.Detail.(*dispatch.CompletionMsg); ok {
			entry.Cycles = msg.CycleCount
			entry.Metric = msg.Metric
		}
		t.recorder.InsertData(t.tableName, entry)
	case dispatch.HookPosCompletionDropped:
		msg := ctx.Item.(*dispatch.CompletionMsg)
		t.recorder.InsertData(t.tableName, TaskEntry{
			Time:   now,
			Kind:   TraceKindDropped,
			Class:  msg.Class.String(),
			TaskID: msg.TaskID,
			Cycles: msg.CycleCount,
			Metric: msg.Metric,
		})
	}
}

func taskToEntry(now float64, kind string, task dispatch.Task) TaskEntry {
	return TaskEntry{
		Time:     now,
		Kind:     kind,
		Class:    task.Class.String(),
		TaskID:   task.ID,
		Length:   task.Length,
		Resource: task.Resource.String(),
	}
}

// A StatsEntry is one row of the final controller counters.
type StatsEntry struct {
	Controller          string
	TotalDrafts         uint64
	TotalVerifies       uint64
	TotalPreVerifies    uint64
	SuppressedDrafts    uint64
	IdleCyclesA         uint64
	IdleCyclesB         uint64
	PreventedIdleCycles uint64
	DecisionAChanges    uint64
	DecisionBChanges    uint64
	DroppedCompletions  uint64
	DroppedFeedback     uint64
}

// RecordStats writes a controller's final counters into the
// controller_stats table, creating it on first use.
func RecordStats(recorder DataRecorder, controller *dispatch.Comp) {
	tableKnown := false
	for _, name := range recorder.ListTables() {
		if name == "controller_stats" {
			tableKnown = true
			break
		}
	}
	if !tableKnown {
		recorder.CreateTable("controller_stats", StatsEntry{})
	}

	stats := controller.Stats()
	recorder.InsertData("controller_stats", StatsEntry{
		Controller:          controller.Name(),
		TotalDrafts:         stats.TotalDrafts,
		TotalVerifies:       stats.TotalVerifies,
		TotalPreVerifies:    stats.TotalPreVerifies,
		SuppressedDrafts:    stats.SuppressedDrafts,
		IdleCyclesA:         stats.IdleCyclesA,
		IdleCyclesB:         stats.IdleCyclesB,
		PreventedIdleCycles: stats.PreventedIdleCycles,
		DecisionAChanges:    stats.DecisionAChanges,
		DecisionBChanges:    stats.DecisionBChanges,
		DroppedCompletions:  stats.DroppedCompletions,
		DroppedFeedback:     stats.DroppedFeedback,
	})
}
