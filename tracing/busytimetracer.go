package tracing

import (
	"sort"
	"sync"

	"github.com/sarchlab/terminalsim/sim"
)

type taskInterval struct {
	start, end sim.VTimeInSec
}

// BusyTimeTracer measures how long a domain has at least one task of interest
// in flight. Overlapping tasks count once.
type BusyTimeTracer struct {
	timeTeller sim.TimeTeller
	filter     TaskFilter

	lock      sync.Mutex
	inflight  map[string]sim.VTimeInSec
	intervals []taskInterval
}

// NewBusyTimeTracer creates a new BusyTimeTracer. A nil filter accepts every
// task.
func NewBusyTimeTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *BusyTimeTracer {
	return &BusyTimeTracer{
		timeTeller: timeTeller,
		filter:     filter,
		inflight:   make(map[string]sim.VTimeInSec),
	}
}

// StartTask records the task start time
func (t *BusyTimeTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	t.inflight[task.ID] = now
	t.lock.Unlock()
}

// StepTask does nothing.
func (t *BusyTimeTracer) StepTask(_ Task) {}

// EndTask records the end of the task
func (t *BusyTimeTracer) EndTask(task Task) {
	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.inflight[task.ID]
	if !ok {
		return
	}

	delete(t.inflight, task.ID)
	t.intervals = append(t.intervals, taskInterval{start: start, end: now})
}

// TerminateAllTasks ends every in-flight task at the current time.
func (t *BusyTimeTracer) TerminateAllTasks() {
	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	for id, start := range t.inflight {
		t.intervals = append(t.intervals, taskInterval{start: start, end: now})
		delete(t.inflight, id)
	}
}

// BusyTime returns the length of the union of the finished tasks.
func (t *BusyTimeTracer) BusyTime() sim.VTimeInSec {
	t.lock.Lock()
	intervals := make([]taskInterval, len(t.intervals))
	copy(intervals, t.intervals)
	t.lock.Unlock()

	if len(intervals) == 0 {
		return 0
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	var busy sim.VTimeInSec
	current := intervals[0]
	for _, in := range intervals[1:] {
		if in.start <= current.end {
			if in.end > current.end {
				current.end = in.end
			}

			continue
		}

		busy += current.end - current.start
		current = in
	}

	return busy + current.end - current.start
}
