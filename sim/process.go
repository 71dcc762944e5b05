package sim

import (
	"fmt"
	"runtime"
	"strconv"
)

// A ProcessFunc is the body of a process. It receives the process handle to
// suspend on, and returns an error to fail the whole simulation.
type ProcessFunc func(p *Process) error

// ProcessState is the lifecycle stage of a process.
type ProcessState int

// All the process states.
const (
	ProcessCreated ProcessState = iota
	ProcessRunning
	ProcessSuspended
	ProcessFinished
	ProcessAbandoned
)

func (s ProcessState) String() string {
	switch s {
	case ProcessCreated:
		return "created"
	case ProcessRunning:
		return "running"
	case ProcessSuspended:
		return "suspended"
	case ProcessFinished:
		return "finished"
	case ProcessAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// HookPosProcessStart triggers when a process body starts running.
var HookPosProcessStart = &HookPos{Name: "ProcessStart"}

// HookPosProcessEnd triggers when a process body returns.
var HookPosProcessEnd = &HookPos{Name: "ProcessEnd"}

// A Process is a resumable computation driven by a SerialEngine.
//
// A process suspends by waiting for virtual time to pass (Timeout) or for a
// resource slot (ResourcePool.Acquire). While suspended it is owned by at
// most one pending event, or by a pool's wait queue.
type Process struct {
	engine *SerialEngine
	id     uint64
	name   string
	parent *Process
	body   ProcessFunc

	state     ProcessState
	pending   bool
	abandoned bool
	err       error

	resume chan struct{}
	yield  chan struct{}
}

func newProcess(
	engine *SerialEngine,
	id uint64,
	name string,
	parent *Process,
	body ProcessFunc,
) *Process {
	return &Process{
		engine: engine,
		id:     id,
		name:   name,
		parent: parent,
		body:   body,
		state:  ProcessCreated,
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
	}
}

// ID returns the identifier of the process, unique within its engine.
func (p *Process) ID() string {
	return strconv.FormatUint(p.id, 10)
}

// Name returns the name of the process.
func (p *Process) Name() string {
	return p.name
}

// Parent returns the process that spawned this process, or nil.
func (p *Process) Parent() *Process {
	return p.parent
}

// State returns the lifecycle stage of the process.
func (p *Process) State() ProcessState {
	return p.state
}

// Err returns the error returned by the process body.
func (p *Process) Err() error {
	return p.err
}

// Engine returns the engine that drives the process.
func (p *Process) Engine() *SerialEngine {
	return p.engine
}

// Now returns the current simulation time.
func (p *Process) Now() VTimeInSec {
	return p.engine.CurrentTime()
}

// Timeout suspends the process for delay seconds of virtual time. A zero
// delay yields to every event already scheduled for the current time.
func (p *Process) Timeout(delay VTimeInSec) error {
	if delay < 0 {
		return &ConfigurationError{
			Field:  "timeout",
			Reason: fmt.Sprintf("negative delay %.10f", delay),
		}
	}

	if p.abandoned {
		return ErrProcessAbandoned
	}

	p.scheduleResume(p.Now() + delay)

	return p.suspend()
}

// Spawn starts a child process. The child runs until its first suspension
// point before Spawn returns. The child is not awaited.
func (p *Process) Spawn(name string, body ProcessFunc) *Process {
	return p.engine.spawn(name, p, body)
}

// Handle resumes the process when its resume event fires.
func (p *Process) Handle(e Event) error {
	if _, ok := e.(*resumeEvent); !ok {
		return fmt.Errorf("process %s cannot handle event %T", p.name, e)
	}

	p.pending = false

	if p.state == ProcessFinished || p.state == ProcessAbandoned {
		return nil
	}

	p.transfer()

	return nil
}

func (p *Process) scheduleResume(t VTimeInSec) {
	if p.pending {
		panic(fmt.Sprintf("process %s already has a pending event", p.name))
	}

	p.pending = true
	p.engine.Schedule(newResumeEvent(t, p))
}

func (p *Process) start() {
	go p.run()
	p.transfer()
}

func (p *Process) run() {
	defer p.exit()

	<-p.resume
	if p.abandoned {
		return
	}

	p.state = ProcessRunning
	p.invokeHook(HookPosProcessStart)

	p.err = p.body(p)
}

func (p *Process) exit() {
	if r := recover(); r != nil {
		p.err = fmt.Errorf("panic: %v", r)
	}

	if p.abandoned {
		p.state = ProcessAbandoned
	} else {
		p.state = ProcessFinished
		p.invokeHook(HookPosProcessEnd)

		if p.err != nil {
			p.engine.fail(&ProcessError{
				Process: p.name,
				Time:    p.Now(),
				Err:     p.err,
			})
		}
	}

	p.engine.removeProcess(p)
	p.yield <- struct{}{}
}

// transfer hands the control token to the process and blocks until the
// process suspends or finishes.
func (p *Process) transfer() {
	p.resume <- struct{}{}
	<-p.yield
}

// suspend hands the control token back to whoever resumed the process.
func (p *Process) suspend() error {
	p.state = ProcessSuspended
	p.yield <- struct{}{}
	<-p.resume

	if p.abandoned {
		runtime.Goexit()
	}

	p.state = ProcessRunning

	return nil
}

func (p *Process) abandon() {
	p.abandoned = true
	p.transfer()
}

func (p *Process) invokeHook(pos *HookPos) {
	if p.engine.NumHooks() == 0 {
		return
	}

	p.engine.InvokeHook(HookCtx{
		Domain: p.engine,
		Now:    p.Now(),
		Pos:    pos,
		Item:   p,
	})
}
