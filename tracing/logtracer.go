package tracing

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/terminalsim/sim"
)

// LogTracer writes every task step to a logger as it happens.
type LogTracer struct {
	timeTeller sim.TimeTeller
	logger     logrus.FieldLogger
	filter     TaskFilter

	lock  sync.Mutex
	tasks map[string]Task
}

// NewLogTracer creates a LogTracer. A nil filter accepts every task.
func NewLogTracer(
	timeTeller sim.TimeTeller,
	logger logrus.FieldLogger,
	filter TaskFilter,
) *LogTracer {
	return &LogTracer{
		timeTeller: timeTeller,
		logger:     logger,
		filter:     filter,
		tasks:      make(map[string]Task),
	}
}

// StartTask remembers the task.
func (t *LogTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.tasks[task.ID] = task
	t.lock.Unlock()
}

// StepTask logs the step.
func (t *LogTracer) StepTask(task Task) {
	t.lock.Lock()
	original, ok := t.tasks[task.ID]
	t.lock.Unlock()

	if !ok {
		return
	}

	now := t.timeTeller.CurrentTime()
	for _, step := range task.Steps {
		t.logger.WithFields(logrus.Fields{
			"kind": original.Kind,
			"task": original.ID,
		}).Infof("%s %s at %.4f", original.What, step.What, now)
	}
}

// EndTask forgets the task.
func (t *LogTracer) EndTask(task Task) {
	t.lock.Lock()
	delete(t.tasks, task.ID)
	t.lock.Unlock()
}
