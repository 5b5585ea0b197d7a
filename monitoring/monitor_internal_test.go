package monitoring

import (
	"encoding/json"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/gorilla/mux"

	"github.com/schedlab/dispatchsim/dispatch"
	"github.com/schedlab/dispatchsim/sim"
)

type alwaysContinue struct{}

func (alwaysContinue) Continue() bool {
	return true
}

type neverPreVerify struct{}

func (neverPreVerify) Advice() (bool, uint8) {
	return false, 0
}

var _ = Describe("Buffer Selection", func() {
	var buffers []sim.Buffer

	BeforeEach(func() {
		buffers = nil
		for i, fill := range []int{2, 8, 5} {
			b := sim.NewBuffer("Buf"+string(rune('A'+i)), 10)
			for j := 0; j < fill; j++ {
				b.Push(j)
			}
			buffers = append(buffers, b)
		}
	})

	It("should sort by fill percentage", func() {
		selected := selectFullestBuffers(buffers, 0, 0)

		Expect(selected).To(HaveLen(3))
		Expect(selected[0].Size()).To(Equal(8))
		Expect(selected[1].Size()).To(Equal(5))
		Expect(selected[2].Size()).To(Equal(2))
	})

	It("should apply limit and offset", func() {
		selected := selectFullestBuffers(buffers, 1, 1)

		Expect(selected).To(HaveLen(1))
		Expect(selected[0].Size()).To(Equal(5))
	})

	It("should tolerate an offset past the end", func() {
		Expect(selectFullestBuffers(buffers, 10, 10)).To(BeEmpty())
	})
})

var _ = Describe("Monitor Endpoints", func() {
	var (
		engine     *sim.SerialEngine
		controller *dispatch.Comp
		monitor    *Monitor
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		controller = dispatch.MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithDecisionAInterval(3).
			WithContinueSource(alwaysContinue{}).
			WithPreVerifySource(neverPreVerify{}).
			Build("Controller")

		monitor = NewMonitor()
		monitor.RegisterEngine(engine)
		monitor.RegisterController(controller)
	})

	It("should list registered components", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/list_components", nil)

		monitor.listComponents(w, r)

		var names []string
		Expect(json.Unmarshal(w.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(ContainElement("Controller"))
	})

	It("should report the controller registers", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/registers/Controller", nil)
		r = mux.SetURLVars(r, map[string]string{"name": "Controller"})

		monitor.listRegisters(w, r)

		var entries []registerEntry
		Expect(json.Unmarshal(w.Body.Bytes(), &entries)).To(Succeed())

		byName := map[string]uint64{}
		for _, e := range entries {
			byName[e.Name] = e.Value
		}
		Expect(byName["DecisionAInterval"]).To(Equal(uint64(3)))
		Expect(byName["Ctrl"]).To(Equal(uint64(0)))
		Expect(byName["LastDecisionA"]).To(Equal(uint64(1)))
	})

	It("should 404 on unknown controllers", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/registers/Nope", nil)
		r = mux.SetURLVars(r, map[string]string{"name": "Nope"})

		monitor.listRegisters(w, r)

		Expect(w.Code).To(Equal(404))
	})

	It("should report queue levels", func() {
		controller.PendingQueue().Push(0)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/buffers?limit=1", nil)

		monitor.listBuffers(w, r)

		var statuses []bufferStatus
		Expect(json.Unmarshal(w.Body.Bytes(), &statuses)).To(Succeed())
		Expect(statuses).To(HaveLen(1))
		Expect(statuses[0].Buffer).To(Equal("Controller.PendingQueue"))
		Expect(statuses[0].Level).To(Equal(1))
	})
})
