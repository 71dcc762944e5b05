package sim

import (
	"container/heap"
	"sync"
)

// A ScheduledEvent is an event together with the sequence number the engine
// assigned when the event was scheduled. Events at the same time are ordered
// by sequence.
type ScheduledEvent struct {
	Event
	Seq uint64
}

// Before tells if the event should be handled before the other one.
func (e ScheduledEvent) Before(other ScheduledEvent) bool {
	if e.Time() != other.Time() {
		return e.Time() < other.Time()
	}

	return e.Seq < other.Seq
}

// EventQueue are a queue of event ordered by the time of events
type EventQueue interface {
	Push(evt ScheduledEvent)
	Pop() ScheduledEvent
	Len() int
	Peek() ScheduledEvent
}

// EventQueueImpl provides a thread safe event queue
type EventQueueImpl struct {
	sync.Mutex
	events eventHeap
}

// NewEventQueue creates and returns a newly created EventQueue
func NewEventQueue() *EventQueueImpl {
	q := new(EventQueueImpl)
	q.events = make([]ScheduledEvent, 0)
	heap.Init(&q.events)

	return q
}

// Push adds an event to the event queue
func (q *EventQueueImpl) Push(evt ScheduledEvent) {
	q.Lock()
	heap.Push(&q.events, evt)
	q.Unlock()
}

// Pop returns the next earliest event
func (q *EventQueueImpl) Pop() ScheduledEvent {
	q.Lock()
	e := heap.Pop(&q.events).(ScheduledEvent)
	q.Unlock()

	return e
}

// Len returns the number of event in the queue
func (q *EventQueueImpl) Len() int {
	q.Lock()
	l := q.events.Len()
	q.Unlock()

	return l
}

// Peek returns the event in front of the queue without removing it from the
// queue
func (q *EventQueueImpl) Peek() ScheduledEvent {
	q.Lock()
	evt := q.events[0]
	q.Unlock()

	return evt
}

type eventHeap []ScheduledEvent

// Len returns the length of the event queue
func (h eventHeap) Len() int {
	return len(h)
}

// Less determines the order between two events. Less returns true if the i-th
// event happens before the j-th event.
func (h eventHeap) Less(i, j int) bool {
	return h[i].Before(h[j])
}

// Swap changes the position of two events in the event queue
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Push adds an event into the event queue
func (h *eventHeap) Push(x interface{}) {
	event := x.(ScheduledEvent)
	*h = append(*h, event)
}

// Pop removes and returns the next event to happen
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	event := old[n-1]
	old[n-1] = ScheduledEvent{}
	*h = old[0 : n-1]

	return event
}
