// Package monitoring turns a running simulation into an HTTP server so the
// engine, the components, and the controller register files can be inspected
// and controlled from outside.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"reflect"
	"runtime/pprof"
	"sort"
	"strconv"
	"time"
	"unsafe"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/schedlab/dispatchsim/dispatch"
	"github.com/schedlab/dispatchsim/sim"
)

// Monitor exposes a simulation as a web server for external inspection and
// control.
type Monitor struct {
	engine      sim.Engine
	components  []sim.Component
	controllers []*dispatch.Comp
	buffers     []sim.Buffer
	portNumber  int
	address     string
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// Address returns the address the monitoring server listens on. It is empty
// before StartServer is called.
func (m *Monitor) Address() string {
	return m.address
}

// WithPortNumber sets the port number of the monitoring server.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterEngine registers the engine that drives the simulation.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterComponent registers a component to be monitored.
func (m *Monitor) RegisterComponent(c sim.Component) {
	m.components = append(m.components, c)

	m.collectBuffers(c)
}

// RegisterController registers a dispatch controller, additionally exposing
// its register file and counters. The shared queues are picked up through
// the regular buffer discovery.
func (m *Monitor) RegisterController(c *dispatch.Comp) {
	m.RegisterComponent(c)
	m.controllers = append(m.controllers, c)
}

// RegisterBuffer adds one buffer to the buffer-level report.
func (m *Monitor) RegisterBuffer(b sim.Buffer) {
	m.buffers = append(m.buffers, b)
}

func (m *Monitor) collectBuffers(c sim.Component) {
	m.collectStructBuffers(c)

	for _, p := range c.Ports() {
		m.collectStructBuffers(p)
	}
}

func (m *Monitor) collectStructBuffers(c any) {
	v := reflect.ValueOf(c).Elem()
	bufferType := reflect.TypeOf((*sim.Buffer)(nil)).Elem()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Type() != bufferType {
			continue
		}

		fieldRef := reflect.NewAt(
			field.Type(),
			unsafe.Pointer(field.UnsafeAddr()),
		).Elem().Interface().(sim.Buffer)
		m.buffers = append(m.buffers, fieldRef)
	}
}

// StartServer starts the monitoring server. It returns the address the
// server listens on.
func (m *Monitor) StartServer() string {
	r := mux.NewRouter()
	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.componentDetails)
	r.HandleFunc("/api/tick/{name}", m.tick)
	r.HandleFunc("/api/buffers", m.listBuffers)
	r.HandleFunc("/api/registers/{name}", m.listRegisters)
	r.HandleFunc("/api/stats/{name}", m.listStats)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	addr := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	m.address = addr
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", addr)

	go func() {
		err = http.Serve(listener, r)
		dieOnErr(err)
	}()

	return addr
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"now\":%.10f}", m.engine.CurrentTime())
}

func (m *Monitor) run(_ http.ResponseWriter, _ *http.Request) {
	go func() {
		if err := m.engine.Run(); err != nil {
			panic(err)
		}
	}()
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) componentDetails(w http.ResponseWriter, r *http.Request) {
	component := m.findComponentOr404(w, mux.Vars(r)["name"])
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	dieOnErr(serializer.Serialize(w))
}

type tickingComponent interface {
	TickLater()
}

func (m *Monitor) tick(w http.ResponseWriter, r *http.Request) {
	component := m.findComponentOr404(w, mux.Vars(r)["name"])
	if component == nil {
		return
	}

	tickingComp, ok := component.(tickingComponent)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Component %s cannot tick", component.Name())
		return
	}

	tickingComp.TickLater()
	_, err := w.Write(nil)
	dieOnErr(err)
}

type bufferStatus struct {
	Buffer string `json:"buffer"`
	Level  int    `json:"level"`
	Cap    int    `json:"cap"`
}

func (m *Monitor) listBuffers(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := paginationParams(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	statuses := make([]bufferStatus, 0, len(m.buffers))
	for _, b := range selectFullestBuffers(m.buffers, limit, offset) {
		statuses = append(statuses, bufferStatus{
			Buffer: b.Name(),
			Level:  b.Size(),
			Cap:    b.Capacity(),
		})
	}

	writeJSON(w, statuses)
}

func paginationParams(r *http.Request) (limit, offset int, err error) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		limitStr = "0"
	}
	limit, err = strconv.Atoi(limitStr)
	if err != nil {
		return 0, 0, err
	}

	offsetStr := r.URL.Query().Get("offset")
	if offsetStr == "" {
		offsetStr = "0"
	}
	offset, err = strconv.Atoi(offsetStr)
	if err != nil {
		return limit, 0, err
	}

	return limit, offset, nil
}

func bufferPercent(b sim.Buffer) float64 {
	return float64(b.Size()) / float64(b.Capacity())
}

// selectFullestBuffers sorts buffers by fill percentage and applies
// pagination.
func selectFullestBuffers(
	buffers []sim.Buffer,
	limit, offset int,
) []sim.Buffer {
	sorted := make([]sim.Buffer, len(buffers))
	copy(sorted, buffers)

	sort.Slice(sorted, func(i, j int) bool {
		pi, pj := bufferPercent(sorted[i]), bufferPercent(sorted[j])
		if pi != pj {
			return pi > pj
		}

		return sorted[i].Size() > sorted[j].Size()
	})

	if offset >= len(sorted) {
		return nil
	}
	sorted = sorted[offset:]

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return sorted
}

type registerEntry struct {
	Addr  string `json:"addr"`
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

var registerNames = []struct {
	addr uint64
	name string
}{
	{dispatch.RegCtrl, "Ctrl"},
	{dispatch.RegDecisionAInterval, "DecisionAInterval"},
	{dispatch.RegDecisionBInterval, "DecisionBInterval"},
	{dispatch.RegQueuePollInterval, "QueuePollInterval"},
	{dispatch.RegLastDecisionA, "LastDecisionA"},
	{dispatch.RegSuppressionCount, "SuppressionCount"},
	{dispatch.RegPreVerifyCount, "PreVerifyCount"},
	{dispatch.RegPreventedIdleCount, "PreventedIdleCount"},
	{dispatch.RegPendingDepth, "PendingDepth"},
	{dispatch.RegFeedbackDepth, "FeedbackDepth"},
	{dispatch.RegPreVerifyDepth, "PreVerifyDepth"},
	{dispatch.RegOverflowCount, "OverflowCount"},
	{dispatch.RegIntrStatus, "IntrStatus"},
}

func (m *Monitor) listRegisters(w http.ResponseWriter, r *http.Request) {
	controller := m.findControllerOr404(w, mux.Vars(r)["name"])
	if controller == nil {
		return
	}

	entries := make([]registerEntry, 0, len(registerNames))
	for _, reg := range registerNames {
		entries = append(entries, registerEntry{
			Addr:  fmt.Sprintf("0x%02x", reg.addr),
			Name:  reg.name,
			Value: controller.ReadRegister(reg.addr),
		})
	}

	writeJSON(w, entries)
}

func (m *Monitor) listStats(w http.ResponseWriter, r *http.Request) {
	controller := m.findControllerOr404(w, mux.Vars(r)["name"])
	if controller == nil {
		return
	}

	writeJSON(w, controller.Stats())
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) sim.Component {
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Component not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) findControllerOr404(
	w http.ResponseWriter,
	name string,
) *dispatch.Comp {
	for _, c := range m.controllers {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Controller not found"))
	dieOnErr(err)

	return nil
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	dieOnErr(err)

	_, err = w.Write(data)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
