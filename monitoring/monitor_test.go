package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/terminalsim/sim"
)

type fixedCounters map[string]uint64

func (c fixedCounters) Counters() map[string]uint64 {
	return c
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		engine *sim.SerialEngine
		gates  *sim.ResourcePool
		cranes *sim.ResourcePool
	)

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		m.router().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		var err error

		engine = sim.NewSerialEngine()
		gates, err = sim.NewResourcePool(engine, "gates", 1)
		Expect(err).NotTo(HaveOccurred())
		cranes, err = sim.NewResourcePool(engine, "cranes", 2)
		Expect(err).NotTo(HaveOccurred())

		engine.Spawn("Truck-0", func(p *sim.Process) error {
			return gates.Acquire(p)
		})

		m = NewMonitor()
		m.RegisterEngine(engine)
		m.RegisterPool(gates)
		m.RegisterPool(cranes)
	})

	It("should report the current time", func() {
		rec := get("/api/now")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal(`{"now":0.0000000000}`))
	})

	It("should list pools sorted by name", func() {
		rec := get("/api/pools")

		var stats []sim.ResourcePoolStats
		Expect(json.Unmarshal(rec.Body.Bytes(), &stats)).To(Succeed())
		Expect(stats).To(HaveLen(2))
		Expect(stats[0].Name).To(Equal("cranes"))
		Expect(stats[1].Name).To(Equal("gates"))
		Expect(stats[1].InUse).To(Equal(1))
		Expect(stats[1].Grants).To(Equal(uint64(1)))
	})

	It("should serialize a single pool", func() {
		rec := get("/api/pool/gates")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("gates"))
	})

	It("should answer 404 for unknown pools", func() {
		rec := get("/api/pool/bays")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should sum counters of all sources", func() {
		m.RegisterCounters(fixedCounters{"containers_unloaded": 3})
		m.RegisterCounters(fixedCounters{
			"containers_unloaded": 2,
			"containers_loaded":   1,
		})

		rec := get("/api/counters")

		var counters map[string]uint64
		Expect(json.Unmarshal(rec.Body.Bytes(), &counters)).To(Succeed())
		Expect(counters).To(Equal(map[string]uint64{
			"containers_unloaded": 5,
			"containers_loaded":   1,
		}))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("simulated time", 50)
		bar.IncrementFinished(10)
		bar.IncrementInProgress(2)
		bar.MoveInProgressToFinished(1)
		done := m.CreateProgressBar("vehicles", 4)

		m.CompleteProgressBar(done)
		rec := get("/api/progress")

		var bars []map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]["name"]).To(Equal("simulated time"))
		Expect(bars[0]["finished"]).To(BeNumerically("==", 11))
		Expect(bars[0]["in_progress"]).To(BeNumerically("==", 1))
	})

	It("should pause and continue the engine", func() {
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))

		Expect(engine.Run()).To(Succeed())
	})

	It("should report process resources", func() {
		rec := get("/api/resource")

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve over HTTP", func() {
		m.StartServer()
		defer m.StopServer()

		rsp, err := http.Get(m.URL() + "/api/now")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})

	It("should refuse low port numbers", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))
	})
})
