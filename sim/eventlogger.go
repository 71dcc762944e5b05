package sim

import (
	"reflect"

	"github.com/sirupsen/logrus"
)

// EventLogger is an hook that prints the event information
type EventLogger struct {
	LogHookBase
}

// NewEventLogger returns a new LogEventHook which will write in to the logger
func NewEventLogger(logger logrus.FieldLogger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger

	return h
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(ScheduledEvent)
	if !ok {
		return
	}

	entry := h.Logger.WithFields(logrus.Fields{
		"time": float64(evt.Time()),
		"seq":  evt.Seq,
		"type": reflect.TypeOf(evt.Event).String(),
	})

	if named, ok := evt.Handler().(interface{ Name() string }); ok {
		entry = entry.WithField("handler", named.Name())
	}

	entry.Trace("event")
}

// ResourceLogger is a hook that prints the occupancy of a pool every time it
// changes.
type ResourceLogger struct {
	LogHookBase
}

// NewResourceLogger creates a ResourceLogger that writes to the logger.
func NewResourceLogger(logger logrus.FieldLogger) *ResourceLogger {
	h := new(ResourceLogger)
	h.Logger = logger

	return h
}

// Func writes the pool usage into the logger.
func (h *ResourceLogger) Func(ctx HookCtx) {
	usage, ok := ctx.Item.(ResourceUsage)
	if !ok {
		return
	}

	h.Logger.WithFields(logrus.Fields{
		"time":     float64(usage.Time),
		"pool":     usage.Pool,
		"process":  usage.Process,
		"in_use":   usage.InUse,
		"capacity": usage.Capacity,
		"queue":    usage.QueueLen,
	}).Debug(ctx.Pos.Name)
}
