package sim

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Process", func() {
	var (
		engine *SerialEngine
		log    []string
	)

	record := func(p *Process, what string) {
		log = append(log, fmt.Sprintf("%.1f %s %s", p.Now(), p.Name(), what))
	}

	BeforeEach(func() {
		engine = NewSerialEngine()
		log = nil
	})

	AfterEach(func() {
		engine.Terminate()
	})

	It("should run the body synchronously until the first suspension", func() {
		p := engine.Spawn("a", func(p *Process) error {
			record(p, "start")
			err := p.Timeout(2)
			record(p, "resumed")
			return err
		})

		Expect(log).To(Equal([]string{"0.0 a start"}))
		Expect(p.State()).To(Equal(ProcessSuspended))
		Expect(engine.LiveProcesses()).To(Equal(1))

		Expect(engine.Run()).To(Succeed())
		Expect(log).To(Equal([]string{"0.0 a start", "2.0 a resumed"}))
		Expect(p.State()).To(Equal(ProcessFinished))
		Expect(engine.LiveProcesses()).To(Equal(0))
	})

	It("should never resume before the requested time", func() {
		for i := 0; i < 10; i++ {
			delay := VTimeInSec(i%3) + 0.5
			engine.Spawn(fmt.Sprintf("p%d", i), func(p *Process) error {
				for j := 0; j < 5; j++ {
					wanted := p.Now() + delay
					if err := p.Timeout(delay); err != nil {
						return err
					}
					Expect(p.Now()).To(BeNumerically(">=", wanted))
				}
				return nil
			})
		}

		Expect(engine.Run()).To(Succeed())
	})

	It("should resume same-time processes in scheduling order", func() {
		for _, name := range []string{"a", "b", "c"} {
			engine.Spawn(name, func(p *Process) error {
				if err := p.Timeout(1); err != nil {
					return err
				}
				record(p, "woke")
				if err := p.Timeout(0); err != nil {
					return err
				}
				record(p, "yielded")
				return nil
			})
		}

		Expect(engine.Run()).To(Succeed())
		Expect(log).To(Equal([]string{
			"1.0 a woke", "1.0 b woke", "1.0 c woke",
			"1.0 a yielded", "1.0 b yielded", "1.0 c yielded",
		}))
	})

	It("should start children without waiting for them", func() {
		engine.Spawn("parent", func(p *Process) error {
			record(p, "before")
			child := p.Spawn("child", func(c *Process) error {
				record(c, "start")
				err := c.Timeout(5)
				record(c, "end")
				return err
			})
			Expect(child.Parent()).To(BeIdenticalTo(p))
			record(p, "after")
			err := p.Timeout(1)
			record(p, "end")
			return err
		})

		Expect(engine.Run()).To(Succeed())
		Expect(log).To(Equal([]string{
			"0.0 parent before",
			"0.0 child start",
			"0.0 parent after",
			"1.0 parent end",
			"5.0 child end",
		}))
	})

	It("should reject negative timeouts", func() {
		var err error
		engine.Spawn("a", func(p *Process) error {
			err = p.Timeout(-1)
			return nil
		})

		var cfgErr *ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
	})

	It("should fail the run when a body returns an error", func() {
		boom := errors.New("boom")
		engine.Spawn("a", func(p *Process) error {
			if err := p.Timeout(3); err != nil {
				return err
			}
			return boom
		})
		engine.Spawn("b", func(p *Process) error {
			return p.Timeout(10)
		})

		err := engine.Run()

		Expect(err).To(MatchError(boom))
		var procErr *ProcessError
		Expect(errors.As(err, &procErr)).To(BeTrue())
		Expect(procErr.Process).To(Equal("a"))
		Expect(procErr.Time).To(Equal(VTimeInSec(3)))
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(3)))
	})

	It("should turn a panic into a failure", func() {
		engine.Spawn("a", func(p *Process) error {
			panic("oops")
		})

		Expect(engine.Run()).To(MatchError(ContainSubstring("oops")))
	})

	It("should leave processes past the end time suspended", func() {
		p := engine.Spawn("a", func(p *Process) error {
			if err := p.Timeout(100); err != nil {
				return err
			}
			record(p, "late")
			return nil
		})
		engine.Spawn("driver", func(d *Process) error {
			err := d.Timeout(50)
			d.Engine().Halt()
			return err
		})

		Expect(engine.RunUntil(50)).To(Succeed())
		Expect(log).To(BeEmpty())
		Expect(p.State()).To(Equal(ProcessSuspended))

		engine.Terminate()
		Expect(p.State()).To(Equal(ProcessAbandoned))
		Expect(engine.LiveProcesses()).To(Equal(0))
	})

	It("should report the hooks of the lifecycle", func() {
		var positions []string
		engine.AcceptHook(HookFunc(func(ctx HookCtx) {
			if p, ok := ctx.Item.(*Process); ok {
				positions = append(positions, p.Name()+" "+ctx.Pos.Name)
			}
		}))

		engine.Spawn("a", func(p *Process) error {
			return p.Timeout(1)
		})
		Expect(engine.Run()).To(Succeed())

		Expect(positions).To(Equal([]string{"a ProcessStart", "a ProcessEnd"}))
	})
})
