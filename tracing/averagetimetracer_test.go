package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/terminalsim/sim"
)

var _ = Describe("AverageTimeTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		t          *AverageTimeTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		t = NewAverageTimeTracer(timeTeller, KindFilter("truck"))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should average the completed tasks", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		t.StartTask(Task{ID: "1", Kind: "truck"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		t.StartTask(Task{ID: "2", Kind: "truck"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3))
		t.EndTask(Task{ID: "1"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(6))
		t.EndTask(Task{ID: "2"})

		Expect(t.AverageTime()).To(Equal(sim.VTimeInSec(3)))
		Expect(t.TotalCount()).To(Equal(uint64(2)))
		Expect(t.InflightCount()).To(Equal(0))
	})

	It("should ignore filtered and unfinished tasks", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1)).Times(3)
		t.StartTask(Task{ID: "1", Kind: "vessel"})
		t.StartTask(Task{ID: "2", Kind: "truck"})
		t.EndTask(Task{ID: "1"})

		Expect(t.TotalCount()).To(Equal(uint64(0)))
		Expect(t.InflightCount()).To(Equal(1))
	})
})
