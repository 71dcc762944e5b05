package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		h        *HookableBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		h = NewHookableBase()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should invoke hooks in registration order", func() {
		hook1 := NewMockHook(mockCtrl)
		hook2 := NewMockHook(mockCtrl)
		ctx := HookCtx{Pos: HookPosBeforeEvent, Now: 2}

		first := hook1.EXPECT().Func(ctx)
		hook2.EXPECT().Func(ctx).After(first)

		h.AcceptHook(hook1)
		h.AcceptHook(hook2)
		h.InvokeHook(ctx)

		Expect(h.NumHooks()).To(Equal(2))
	})

	It("should adapt plain functions", func() {
		var got *HookPos
		h.AcceptHook(HookFunc(func(ctx HookCtx) { got = ctx.Pos }))

		h.InvokeHook(HookCtx{Pos: HookPosAfterEvent})

		Expect(got).To(BeIdenticalTo(HookPosAfterEvent))
	})
})

var _ = Describe("Log hooks", func() {
	It("should log events at trace level", func() {
		logger, hook := test.NewNullLogger()
		logger.SetLevel(logrus.TraceLevel)

		engine := NewSerialEngine()
		engine.AcceptHook(NewEventLogger(logger))
		engine.Spawn("Truck-0", func(p *Process) error {
			return p.Timeout(3)
		})

		Expect(engine.Run()).To(Succeed())

		Expect(hook.Entries).To(HaveLen(1))
		Expect(hook.LastEntry().Level).To(Equal(logrus.TraceLevel))
		Expect(hook.LastEntry().Data["time"]).To(Equal(3.0))
		Expect(hook.LastEntry().Data["handler"]).To(Equal("Truck-0"))
	})

	It("should log pool usage at debug level", func() {
		logger, hook := test.NewNullLogger()
		logger.SetLevel(logrus.DebugLevel)

		engine := NewSerialEngine()
		pool, err := NewResourcePool(engine, "gates", 1)
		Expect(err).NotTo(HaveOccurred())
		pool.AcceptHook(NewResourceLogger(logger))

		engine.Spawn("Truck-0", func(p *Process) error {
			return pool.Use(p, func() error { return nil })
		})

		Expect(hook.Entries).To(HaveLen(3))
		Expect(hook.Entries[0].Message).To(Equal("ResourceRequest"))
		Expect(hook.Entries[1].Message).To(Equal("ResourceGrant"))
		Expect(hook.Entries[1].Data["in_use"]).To(Equal(1))
		Expect(hook.Entries[2].Message).To(Equal("ResourceRelease"))
		Expect(hook.Entries[2].Data["in_use"]).To(Equal(0))
	})
})

var _ = Describe("IDGenerator", func() {
	It("should generate unique IDs", func() {
		g := GetIDGenerator()

		Expect(g.Generate()).NotTo(Equal(g.Generate()))
	})

	It("should not switch generators after use", func() {
		GetIDGenerator()

		Expect(func() { UseParallelIDGenerator() }).To(Panic())
	})
})
