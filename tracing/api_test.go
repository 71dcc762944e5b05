package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/terminalsim/sim"
)

type testDomain struct {
	sim.HookableBase
	name string
}

func (d *testDomain) Name() string {
	return d.name
}

type recordingTracer struct {
	started, stepped, ended []Task
}

func (t *recordingTracer) StartTask(task Task) { t.started = append(t.started, task) }
func (t *recordingTracer) StepTask(task Task)  { t.stepped = append(t.stepped, task) }
func (t *recordingTracer) EndTask(task Task)   { t.ended = append(t.ended, task) }

var _ = Describe("Task API", func() {
	var (
		domain *testDomain
		tracer *recordingTracer
	)

	BeforeEach(func() {
		domain = &testDomain{name: "terminal"}
		tracer = &recordingTracer{}
	})

	It("should not build tasks when nobody listens", func() {
		StartTask("1", "", domain, "truck", "Truck-0", nil)
		AddTaskStep("1", domain, "arriving at gate")
		EndTask("1", domain)

		Expect(tracer.started).To(BeEmpty())
	})

	It("should forward the lifecycle to the tracer", func() {
		CollectTrace(domain, tracer)

		StartTask("1", "0", domain, "truck", "Truck-0", nil)
		AddTaskStep("1", domain, "arriving at gate")
		EndTask("1", domain)

		Expect(tracer.started).To(HaveLen(1))
		Expect(tracer.started[0].Kind).To(Equal("truck"))
		Expect(tracer.started[0].ParentID).To(Equal("0"))
		Expect(tracer.started[0].Where).To(Equal("terminal"))
		Expect(tracer.stepped[0].Steps[0].What).To(Equal("arriving at gate"))
		Expect(tracer.ended[0].ID).To(Equal("1"))
	})

	It("should panic on incomplete tasks", func() {
		CollectTrace(domain, tracer)

		Expect(func() {
			StartTask("", "", domain, "truck", "Truck-0", nil)
		}).To(Panic())
		Expect(func() {
			StartTask("1", "", domain, "", "Truck-0", nil)
		}).To(Panic())
	})

	It("should filter by kind", func() {
		filter := KindFilter("truck", "vessel")

		Expect(filter(Task{Kind: "vessel"})).To(BeTrue())
		Expect(filter(Task{Kind: "generator"})).To(BeFalse())
	})
})
