package tracing

import (
	"sort"
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/terminalsim/datarecording"
	"github.com/sarchlab/terminalsim/sim"
)

type taskTableEntry struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	StartTime float64
	EndTime   float64
	Completed bool
}

type stepTableEntry struct {
	TaskID string
	Time   float64
	What   string
}

// DBTracer is a tracer that can store tasks into a database.
type DBTracer struct {
	lock       sync.Mutex
	timeTeller sim.TimeTeller
	backend    datarecording.DataRecorder

	startTime, endTime sim.VTimeInSec

	tracingTasks map[string]Task
	terminated   bool
}

// NewDBTracer creates a new DBTracer.
func NewDBTracer(
	timeTeller sim.TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable("trace", taskTableEntry{})
	dataRecorder.CreateTable("trace_steps", stepTableEntry{})

	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange sets the time range of the tracer. Tasks that end before
// startTime or start after endTime are not recorded. A zero value leaves the
// corresponding side open.
func (t *DBTracer) SetTimeRange(startTime, endTime sim.VTimeInSec) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.terminated {
		return
	}

	task.StartTime = t.timeTeller.CurrentTime()
	if t.endTime > 0 && task.StartTime > t.endTime {
		return
	}

	t.tracingTasks[task.ID] = task
}

// StepTask records a step of a task.
func (t *DBTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if _, ok := t.tracingTasks[task.ID]; !ok {
		return
	}

	now := t.timeTeller.CurrentTime()
	for _, step := range task.Steps {
		t.backend.InsertData("trace_steps", stepTableEntry{
			TaskID: task.ID,
			Time:   float64(now),
			What:   step.What,
		})
	}
}

// EndTask marks the end of a task.
func (t *DBTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	task.EndTime = t.timeTeller.CurrentTime()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}
	delete(t.tracingTasks, task.ID)

	if t.startTime > 0 && task.EndTime < t.startTime {
		return
	}

	originalTask.EndTime = task.EndTime
	t.writeTask(originalTask, true)
}

// Terminate records the tasks that are still in flight with the current time
// as their end time, and flushes the backend.
func (t *DBTracer) Terminate() {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.terminated {
		return
	}
	t.terminated = true

	now := t.timeTeller.CurrentTime()

	ids := make([]string, 0, len(t.tracingTasks))
	for id := range t.tracingTasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		task := t.tracingTasks[id]
		task.EndTime = now
		t.writeTask(task, false)
	}

	t.tracingTasks = nil
	t.backend.Flush()
}

func (t *DBTracer) writeTask(task Task, completed bool) {
	t.backend.InsertData("trace", taskTableEntry{
		ID:        task.ID,
		ParentID:  task.ParentID,
		Kind:      task.Kind,
		What:      task.What,
		Location:  task.Where,
		StartTime: float64(task.StartTime),
		EndTime:   float64(task.EndTime),
		Completed: completed,
	})
}
