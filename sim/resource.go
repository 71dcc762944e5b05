package sim

import (
	"sync"
)

// Hook positions triggered by a ResourcePool. The item is a ResourceUsage.
var (
	HookPosResourceRequest = &HookPos{Name: "ResourceRequest"}
	HookPosResourceGrant   = &HookPos{Name: "ResourceGrant"}
	HookPosResourceRelease = &HookPos{Name: "ResourceRelease"}
)

// ResourceUsage is a snapshot of a pool taken when a process requests,
// obtains, or returns a slot.
type ResourceUsage struct {
	Pool     string
	Process  string
	Time     VTimeInSec
	InUse    int
	Capacity int
	QueueLen int
}

// ResourcePoolStats summarizes the state of a pool.
type ResourcePoolStats struct {
	Name        string `json:"name"`
	Capacity    int    `json:"capacity"`
	InUse       int    `json:"in_use"`
	QueueLen    int    `json:"queue_len"`
	MaxQueueLen int    `json:"max_queue_len"`
	Grants      uint64 `json:"grants"`
	Releases    uint64 `json:"releases"`
}

// A ResourcePool is a group of identical slots that processes hold
// exclusively. When all the slots are taken, requesters wait in first-come,
// first-served order.
//
// Pool state is only mutated from process bodies, which never run at the
// same time. The lock only protects readers on other goroutines, such as the
// monitor.
type ResourcePool struct {
	HookableBase

	engine   *SerialEngine
	name     string
	capacity int

	lock        sync.RWMutex
	inUse       int
	holders     map[*Process]struct{}
	waiting     map[*Process]struct{}
	waitQueue   []*Process
	maxQueueLen int
	grants      uint64
	releases    uint64
}

// NewResourcePool creates a pool with capacity slots.
func NewResourcePool(
	engine *SerialEngine,
	name string,
	capacity int,
) (*ResourcePool, error) {
	if capacity <= 0 {
		return nil, &ConfigurationError{
			Field:  name,
			Reason: "capacity must be positive",
		}
	}

	r := &ResourcePool{
		engine:   engine,
		name:     name,
		capacity: capacity,
		holders:  make(map[*Process]struct{}),
		waiting:  make(map[*Process]struct{}),
	}

	return r, nil
}

// Name returns the name of the pool.
func (r *ResourcePool) Name() string {
	return r.name
}

// Capacity returns the number of slots.
func (r *ResourcePool) Capacity() int {
	return r.capacity
}

// InUse returns the number of slots currently held.
func (r *ResourcePool) InUse() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.inUse
}

// QueueLen returns the number of processes waiting for a slot.
func (r *ResourcePool) QueueLen() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return len(r.waitQueue)
}

// Holds tells if the process holds a slot of the pool.
func (r *ResourcePool) Holds(p *Process) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	_, ok := r.holders[p]

	return ok
}

// Stats returns a summary of the pool.
func (r *ResourcePool) Stats() ResourcePoolStats {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return ResourcePoolStats{
		Name:        r.name,
		Capacity:    r.capacity,
		InUse:       r.inUse,
		QueueLen:    len(r.waitQueue),
		MaxQueueLen: r.maxQueueLen,
		Grants:      r.grants,
		Releases:    r.releases,
	}
}

// Acquire obtains a slot for the process. If no slot is free, the process
// joins the end of the wait queue and suspends until Release hands it a slot.
func (r *ResourcePool) Acquire(p *Process) error {
	if p.abandoned {
		return ErrProcessAbandoned
	}

	r.lock.Lock()

	_, holding := r.holders[p]
	_, waiting := r.waiting[p]
	if holding || waiting {
		r.lock.Unlock()
		return &ReentrantAcquireError{Pool: r.name, Process: p.name}
	}

	request := r.usage(p)

	if r.inUse < r.capacity {
		r.grant(p)
		grant := r.usage(p)
		r.lock.Unlock()

		r.invokeHook(HookPosResourceRequest, request)
		r.invokeHook(HookPosResourceGrant, grant)

		return nil
	}

	r.waitQueue = append(r.waitQueue, p)
	r.waiting[p] = struct{}{}
	if len(r.waitQueue) > r.maxQueueLen {
		r.maxQueueLen = len(r.waitQueue)
	}
	request.QueueLen = len(r.waitQueue)
	r.lock.Unlock()

	r.invokeHook(HookPosResourceRequest, request)

	return p.suspend()
}

// Release returns the slot held by the process. If there are waiters, the
// oldest one gets the slot and resumes at the current time.
//
// Releasing on behalf of an abandoned process does nothing, so that the
// state of the pool at the end of a run stays as the run left it.
func (r *ResourcePool) Release(p *Process) error {
	if p.abandoned {
		return nil
	}

	r.lock.Lock()

	if _, ok := r.holders[p]; !ok {
		r.lock.Unlock()
		return &InvalidReleaseError{Pool: r.name, Process: p.name}
	}

	delete(r.holders, p)
	r.inUse--
	r.releases++
	release := r.usage(p)

	var next *Process
	var grant ResourceUsage
	if len(r.waitQueue) > 0 {
		next = r.waitQueue[0]
		r.waitQueue[0] = nil
		r.waitQueue = r.waitQueue[1:]
		delete(r.waiting, next)

		r.grant(next)
		grant = r.usage(next)
	}

	r.lock.Unlock()

	r.invokeHook(HookPosResourceRelease, release)

	if next != nil {
		r.invokeHook(HookPosResourceGrant, grant)
		next.scheduleResume(r.engine.CurrentTime())
	}

	return nil
}

// Use acquires a slot, runs fn, and releases the slot on every path out of
// fn. Nested Use calls release in the reverse order of acquisition.
func (r *ResourcePool) Use(p *Process, fn func() error) (err error) {
	err = r.Acquire(p)
	if err != nil {
		return err
	}

	defer func() {
		releaseErr := r.Release(p)
		if err == nil {
			err = releaseErr
		}
	}()

	return fn()
}

func (r *ResourcePool) grant(p *Process) {
	r.inUse++
	r.grants++
	r.holders[p] = struct{}{}
}

func (r *ResourcePool) usage(p *Process) ResourceUsage {
	return ResourceUsage{
		Pool:     r.name,
		Process:  p.name,
		Time:     r.engine.CurrentTime(),
		InUse:    r.inUse,
		Capacity: r.capacity,
		QueueLen: len(r.waitQueue),
	}
}

func (r *ResourcePool) invokeHook(pos *HookPos, usage ResourceUsage) {
	if r.NumHooks() == 0 {
		return
	}

	r.InvokeHook(HookCtx{
		Domain: r,
		Now:    usage.Time,
		Pos:    pos,
		Item:   usage,
	})
}
