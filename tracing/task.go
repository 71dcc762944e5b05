package tracing

import "github.com/sarchlab/terminalsim/sim"

// A TaskStep represents a milestone in the processing of task
type TaskStep struct {
	Time sim.VTimeInSec `json:"time"`
	What string         `json:"what"`
}

// A Task is the lifetime of a process as seen by the tracers, for example a
// truck from its arrival at the gate to its departure.
type Task struct {
	ID        string         `json:"id"`
	ParentID  string         `json:"parent_id"`
	Kind      string         `json:"kind"`
	What      string         `json:"what"`
	Where     string         `json:"where"`
	StartTime sim.VTimeInSec `json:"start_time"`
	EndTime   sim.VTimeInSec `json:"end_time"`
	Steps     []TaskStep     `json:"steps"`
	Detail    interface{}    `json:"-"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// KindFilter returns a filter that accepts tasks of the given kinds.
func KindFilter(kinds ...string) TaskFilter {
	return func(t Task) bool {
		for _, k := range kinds {
			if t.Kind == k {
				return true
			}
		}

		return false
	}
}
