package simulation

import (
	"database/sql"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/terminalsim/sim"
)

var _ = Describe("Simulation", func() {
	var simulation *Simulation

	BeforeEach(func() {
		simulation = MakeBuilder().
			WithoutMonitoring().
			WithoutRecording().
			Build()
	})

	AfterEach(func() {
		simulation.Terminate()
	})

	It("should register pools", func() {
		gates, err := sim.NewResourcePool(simulation.GetEngine(), "gates", 1)
		Expect(err).NotTo(HaveOccurred())

		simulation.RegisterPool(gates)

		Expect(simulation.GetPoolByName("gates")).To(BeIdenticalTo(gates))
		Expect(simulation.GetPoolByName("cranes")).To(BeNil())
		Expect(simulation.Pools()).To(HaveLen(1))
	})

	It("should refuse duplicated pool names", func() {
		gates, _ := sim.NewResourcePool(simulation.GetEngine(), "gates", 1)
		again, _ := sim.NewResourcePool(simulation.GetEngine(), "gates", 2)

		simulation.RegisterPool(gates)

		Expect(func() { simulation.RegisterPool(again) }).To(Panic())
	})

	It("should not record without recording", func() {
		Expect(simulation.GetDataRecorder()).To(BeNil())
		Expect(simulation.GetVisTracer()).To(BeNil())
		Expect(simulation.OutputPath()).To(BeEmpty())
		Expect(simulation.ID()).NotTo(BeEmpty())
	})

	It("should refuse a monitor port without monitoring", func() {
		Expect(func() {
			MakeBuilder().WithoutMonitoring().WithMonitorPort(8080).Build()
		}).To(Panic())
	})

	Context("Builder with custom output file", func() {
		var (
			customSim *Simulation
			path      string
		)

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "test_custom_output")
		})

		AfterEach(func() {
			os.Remove(path + ".sqlite3")
		})

		It("should write the trace into the output file", func() {
			customSim = MakeBuilder().
				WithoutMonitoring().
				WithOutputFileName(path).
				Build()

			Expect(customSim.GetDataRecorder()).ToNot(BeNil())
			Expect(customSim.OutputPath()).To(Equal(path + ".sqlite3"))

			customSim.GetEngine().Spawn("Truck-0", func(p *sim.Process) error {
				return p.Timeout(10)
			})
			customSim.Terminate()

			db, err := sql.Open("sqlite3", customSim.OutputPath())
			Expect(err).NotTo(HaveOccurred())
			defer db.Close()

			var n int
			err = db.QueryRow("SELECT COUNT(*) FROM trace").Scan(&n)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(0))
		})
	})

	Context("with monitoring", func() {
		It("should start and stop the monitor", func() {
			monitored := MakeBuilder().WithoutRecording().Build()

			Expect(monitored.GetMonitor()).NotTo(BeNil())
			Expect(monitored.GetMonitor().URL()).NotTo(BeEmpty())

			monitored.Terminate()

			Expect(monitored.GetMonitor().URL()).To(BeEmpty())
		})
	})
})
