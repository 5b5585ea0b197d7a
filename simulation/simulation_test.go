package simulation

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

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

var _ = Describe("Simulation", func() {
	var (
		s          *Simulation
		outputPath string
	)

	BeforeEach(func() {
		outputPath = filepath.Join(GinkgoT().TempDir(), "sim_output")
		s = MakeBuilder().
			WithoutMonitoring().
			WithOutputFileName(outputPath).
			Build()
	})

	AfterEach(func() {
		s.Terminate()
		os.Remove(outputPath + ".sqlite3")
	})

	buildController := func(name string) *dispatch.Comp {
		return dispatch.MakeBuilder().
			WithEngine(s.GetEngine()).
			WithFreq(1 * sim.GHz).
			WithContinueSource(alwaysContinue{}).
			WithPreVerifySource(neverPreVerify{}).
			Build(name)
	}

	It("should create an engine and a recorder", func() {
		Expect(s.GetEngine()).NotTo(BeNil())
		Expect(s.GetDataRecorder()).NotTo(BeNil())
		Expect(s.ID()).NotTo(BeEmpty())
	})

	It("should register components and their ports", func() {
		c := buildController("Controller")

		s.RegisterComponent(c)

		Expect(s.GetComponentByName("Controller")).To(
			BeIdenticalTo(sim.Component(c)))
		Expect(s.GetPortByName("Controller.CtrlPort")).To(
			BeIdenticalTo(c.CtrlPort))
		Expect(s.Components()).To(HaveLen(1))
	})

	It("should panic on duplicated component names", func() {
		c := buildController("Controller")
		s.RegisterComponent(c)

		Expect(func() { s.RegisterComponent(c) }).To(Panic())
	})

	It("should track registered controllers", func() {
		c := buildController("Controller")

		s.RegisterController(c)

		Expect(s.Controllers()).To(HaveLen(1))
		Expect(s.GetComponentByName("Controller")).NotTo(BeNil())
	})

	It("should record controller stats on termination", func() {
		c := buildController("Controller")
		s.RegisterController(c)

		Expect(func() { s.Terminate() }).NotTo(Panic())

		s = MakeBuilder().
			WithoutMonitoring().
			WithOutputFileName(filepath.Join(GinkgoT().TempDir(), "sim2")).
			Build()
	})
})
