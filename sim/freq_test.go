package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get period", func() {
		var f = 1 * GHz
		Expect(f.Period()).To(BeNumerically("==", 1e-9))
	})

	It("should get this tick", func() {
		var f = 1 * Hz
		Expect(f.ThisTick(1)).To(BeNumerically("~", 1, 1e-12))
	})

	It("should get the next tick", func() {
		var f = 1 * GHz
		Expect(f.NextTick(102.000000001)).
			To(BeNumerically("~", 102.000000002, 1e-12))
	})

	It("should get the next tick when the time is not on a tick", func() {
		var f = 1 * GHz
		Expect(f.NextTick(102.0000000015)).
			To(BeNumerically("~", 102.000000002, 1e-12))
	})

	It("should get n cycles later", func() {
		var f = 1 * GHz
		Expect(f.NCyclesLater(12, 102.000000001)).
			To(BeNumerically("~", 102.000000013, 1e-12))
	})

	It("should count cycles from time 0", func() {
		var f = 1 * GHz
		Expect(f.Cycle(0.000000013)).To(Equal(uint64(13)))
	})

	It("should panic on zero frequency period", func() {
		var f Freq
		Expect(func() { f.Period() }).To(Panic())
	})
})
