package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/terminalsim/sim"
)

var _ = Describe("EventLog", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		log        *EventLog
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		log = NewEventLog(timeTeller)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should keep the steps in order", func() {
		log.StartTask(Task{ID: "1", Kind: "truck", What: "Truck-0"})
		log.StartTask(Task{ID: "2", Kind: "vessel", What: "Vessel-0"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(0))
		log.StepTask(Task{ID: "1", Steps: []TaskStep{{What: "arriving at gate"}}})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1.5))
		log.StepTask(Task{ID: "2", Steps: []TaskStep{{What: "berthing"}}})
		log.EndTask(Task{ID: "1"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		log.StepTask(Task{ID: "1", Steps: []TaskStep{{What: "ghost"}}})

		entries := log.Entries()
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].String()).To(Equal("Truck-0 arriving at gate at 0.0000"))
		Expect(entries[1]).To(Equal(LogEntry{
			Time: 1.5, TaskID: "2", Kind: "vessel", Who: "Vessel-0", What: "berthing",
		}))
	})
})

var _ = Describe("LogTracer", func() {
	It("should log each step", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		timeTeller := NewMockTimeTeller(mockCtrl)
		logger, hook := test.NewNullLogger()
		tracer := NewLogTracer(timeTeller, logger, KindFilter("truck"))

		tracer.StartTask(Task{ID: "1", Kind: "truck", What: "Truck-0"})
		tracer.StartTask(Task{ID: "2", Kind: "generator", What: "trucks"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3))
		tracer.StepTask(Task{ID: "1", Steps: []TaskStep{{What: "leaving terminal"}}})
		tracer.StepTask(Task{ID: "2", Steps: []TaskStep{{What: "spawned"}}})
		tracer.EndTask(Task{ID: "1"})

		Expect(hook.Entries).To(HaveLen(1))
		Expect(hook.LastEntry().Level).To(Equal(logrus.InfoLevel))
		Expect(hook.LastEntry().Message).To(Equal("Truck-0 leaving terminal at 3.0000"))
		Expect(hook.LastEntry().Data["kind"]).To(Equal("truck"))
	})
})
