package sim

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
)

// ErrEngineTerminated is returned when running an engine after Terminate.
var ErrEngineTerminated = errors.New("engine terminated")

// A SerialEngine is an Engine that always run events one after another.
//
// Process bodies run on their own goroutines, but control is handed over
// through unbuffered channels so that at most one body, or the engine loop
// itself, executes at any instant. State shared between processes needs no
// locking as long as it is only touched from process bodies and handlers.
type SerialEngine struct {
	HookableBase

	timeLock sync.RWMutex
	time     VTimeInSec
	nextSeq  uint64
	queue    EventQueue

	halted     atomic.Bool
	terminated bool
	err        error

	nextProcID uint64
	processes  map[uint64]*Process

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex

	simulationEndHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	e := new(SerialEngine)

	e.queue = NewEventQueue()
	e.processes = make(map[uint64]*Process)

	return e
}

// Schedule register an event to be happen in the future
func (e *SerialEngine) Schedule(evt Event) {
	now := e.readNow()
	if evt.Time() < now {
		panic(&CausalityError{
			EventTime: evt.Time(),
			Now:       now,
			What:      "scheduling " + reflect.TypeOf(evt).String(),
		})
	}

	e.nextSeq++
	e.queue.Push(ScheduledEvent{Event: evt, Seq: e.nextSeq})
}

func (e *SerialEngine) readNow() VTimeInSec {
	e.timeLock.RLock()
	t := e.time
	e.timeLock.RUnlock()

	return t
}

func (e *SerialEngine) writeNow(t VTimeInSec) {
	e.timeLock.Lock()
	e.time = t
	e.timeLock.Unlock()
}

// Run processes all the events scheduled in the SerialEngine
func (e *SerialEngine) Run() error {
	return e.RunUntil(VTimeInSec(math.Inf(1)))
}

// RunUntil processes the scheduled events in order until there is no event
// left, the next event is later than end, the engine is halted, or a process
// fails. Events later than end stay in the queue and are never triggered by
// this call.
func (e *SerialEngine) RunUntil(end VTimeInSec) error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	if e.terminated {
		return ErrEngineTerminated
	}

	e.halted.Store(false)

	for {
		if e.err != nil {
			return e.err
		}

		if e.halted.Load() || e.queue.Len() == 0 {
			return nil
		}

		if e.queue.Peek().Time() > end {
			return nil
		}

		e.pauseLock.Lock()
		err := e.triggerNext()
		e.pauseLock.Unlock()

		if err != nil {
			return err
		}
	}
}

func (e *SerialEngine) triggerNext() error {
	evt := e.queue.Pop()
	now := e.readNow()
	if evt.Time() < now {
		return &CausalityError{
			EventTime: evt.Time(),
			Now:       now,
			What:      "running " + reflect.TypeOf(evt.Event).String(),
		}
	}
	e.writeNow(evt.Time())

	hookCtx := HookCtx{
		Domain: e,
		Now:    evt.Time(),
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	err := evt.Handler().Handle(evt.Event)
	if err != nil {
		e.fail(err)
	}

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)

	return e.err
}

// fail records the first fatal error of the run.
func (e *SerialEngine) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// Err returns the error that stopped the run, if any.
func (e *SerialEngine) Err() error {
	return e.err
}

// Halt stops the current run after the current event. It can be called from
// any goroutine. A later RunUntil call clears the halt and continues with the
// remaining events.
func (e *SerialEngine) Halt() {
	e.halted.Store(true)
}

// IsHalted tells if the engine has been halted.
func (e *SerialEngine) IsHalted() bool {
	return e.halted.Load()
}

// PendingEvents returns the number of events that are still in the queue.
func (e *SerialEngine) PendingEvents() int {
	return e.queue.Len()
}

// Pause prevents the SerialEngine to trigger more events.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to trigger more events.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// CurrentTime returns the current time at which the engine is at.
// Specifically, the run time of the current event.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	return e.readNow()
}

// Spawn creates a top-level process and runs its body until the first
// suspension point before returning.
func (e *SerialEngine) Spawn(name string, body ProcessFunc) *Process {
	return e.spawn(name, nil, body)
}

func (e *SerialEngine) spawn(
	name string,
	parent *Process,
	body ProcessFunc,
) *Process {
	if e.terminated {
		panic(fmt.Sprintf("cannot spawn process %s on a terminated engine", name))
	}

	e.nextProcID++
	p := newProcess(e, e.nextProcID, name, parent, body)
	e.processes[p.id] = p

	p.start()

	return p
}

func (e *SerialEngine) removeProcess(p *Process) {
	delete(e.processes, p.id)
}

// LiveProcesses returns the number of processes that have started and not
// finished yet.
func (e *SerialEngine) LiveProcesses() int {
	return len(e.processes)
}

// Terminate ends the simulation for good. Processes that are still
// suspended are abandoned: their goroutines are unwound, but the resource
// slots they hold and their places in wait queues are left as they are. The
// engine cannot run again after Terminate.
func (e *SerialEngine) Terminate() {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	if e.terminated {
		return
	}
	e.terminated = true

	ids := make([]uint64, 0, len(e.processes))
	for id := range e.processes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		e.processes[id].abandon()
	}
}

// RegisterSimulationEndHandler invokes all the registered simulation end
// handler.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished should be called after the simulation ends. This function
// calls all the registered SimulationEndHandler.
func (e *SerialEngine) Finished() {
	now := e.readNow()
	for _, h := range e.simulationEndHandlers {
		h.Handle(now)
	}
}
