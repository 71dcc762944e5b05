package tracing

import (
	"fmt"
	"sync"

	"github.com/sarchlab/terminalsim/sim"
)

// A LogEntry is one line of the chronological log of a run.
type LogEntry struct {
	Time   sim.VTimeInSec `json:"time"`
	TaskID string         `json:"task_id"`
	Kind   string         `json:"kind"`
	Who    string         `json:"who"`
	What   string         `json:"what"`
}

func (e LogEntry) String() string {
	return fmt.Sprintf("%s %s at %.4f", e.Who, e.What, e.Time)
}

// EventLog keeps every task step in the order they happen.
type EventLog struct {
	timeTeller sim.TimeTeller

	lock    sync.Mutex
	tasks   map[string]Task
	entries []LogEntry
}

// NewEventLog creates an empty EventLog.
func NewEventLog(timeTeller sim.TimeTeller) *EventLog {
	return &EventLog{
		timeTeller: timeTeller,
		tasks:      make(map[string]Task),
	}
}

// Entries returns a copy of the log.
func (l *EventLog) Entries() []LogEntry {
	l.lock.Lock()
	defer l.lock.Unlock()

	entries := make([]LogEntry, len(l.entries))
	copy(entries, l.entries)

	return entries
}

// StartTask remembers the task so that its steps can be attributed.
func (l *EventLog) StartTask(task Task) {
	l.lock.Lock()
	l.tasks[task.ID] = task
	l.lock.Unlock()
}

// StepTask appends an entry.
func (l *EventLog) StepTask(task Task) {
	now := l.timeTeller.CurrentTime()

	l.lock.Lock()
	defer l.lock.Unlock()

	original, ok := l.tasks[task.ID]
	if !ok {
		return
	}

	for _, step := range task.Steps {
		l.entries = append(l.entries, LogEntry{
			Time:   now,
			TaskID: original.ID,
			Kind:   original.Kind,
			Who:    original.What,
			What:   step.What,
		})
	}
}

// EndTask forgets the task.
func (l *EventLog) EndTask(task Task) {
	l.lock.Lock()
	delete(l.tasks, task.ID)
	l.lock.Unlock()
}
