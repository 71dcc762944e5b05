package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/terminalsim/sim"
)

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		backend    *MockDataRecorder
		tracer     *DBTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		backend = NewMockDataRecorder(mockCtrl)

		backend.EXPECT().CreateTable("trace", taskTableEntry{})
		backend.EXPECT().CreateTable("trace_steps", stepTableEntry{})
		tracer = NewDBTracer(timeTeller, backend)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should write completed tasks and their steps", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		tracer.StartTask(Task{
			ID: "1", Kind: "truck", What: "Truck-0", Where: "terminal",
		})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		backend.EXPECT().InsertData("trace_steps", stepTableEntry{
			TaskID: "1", Time: 2, What: "entering terminal",
		})
		tracer.StepTask(Task{
			ID: "1", Steps: []TaskStep{{What: "entering terminal"}},
		})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(4))
		backend.EXPECT().InsertData("trace", taskTableEntry{
			ID: "1", Kind: "truck", What: "Truck-0", Location: "terminal",
			StartTime: 1, EndTime: 4, Completed: true,
		})
		tracer.EndTask(Task{ID: "1"})
	})

	It("should write unfinished tasks on terminate", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		tracer.StartTask(Task{ID: "7", Kind: "vessel", What: "Vessel-3"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(50))
		backend.EXPECT().InsertData("trace", taskTableEntry{
			ID: "7", Kind: "vessel", What: "Vessel-3",
			StartTime: 1, EndTime: 50, Completed: false,
		})
		backend.EXPECT().Flush()
		tracer.Terminate()
		tracer.Terminate()

		tracer.StartTask(Task{ID: "8", Kind: "vessel", What: "Vessel-4"})
		Expect(tracer.tracingTasks).To(BeEmpty())
	})

	It("should skip tasks outside of the time range", func() {
		tracer.SetTimeRange(10, 20)

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(25))
		tracer.StartTask(Task{ID: "1", Kind: "truck", What: "Truck-0"})
		Expect(tracer.tracingTasks).NotTo(HaveKey("1"))

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		tracer.StartTask(Task{ID: "2", Kind: "truck", What: "Truck-1"})
		Expect(tracer.tracingTasks).To(HaveKey("2"))

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(5))
		tracer.EndTask(Task{ID: "2"})
		Expect(tracer.tracingTasks).To(BeEmpty())
	})
})
