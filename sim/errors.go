package sim

import (
	"errors"
	"fmt"
)

// ErrProcessAbandoned is returned from a suspension point when the engine
// tears down a process that was still waiting at the end of the run.
var ErrProcessAbandoned = errors.New("process abandoned")

// A CausalityError reports an event that would run before the current time.
// It always indicates a bug in the engine or in code that schedules events
// directly.
type CausalityError struct {
	EventTime VTimeInSec
	Now       VTimeInSec
	What      string
}

func (e *CausalityError) Error() string {
	return fmt.Sprintf(
		"causality violated: %s @ %.10f, now %.10f",
		e.What, e.EventTime, e.Now)
}

// An InvalidReleaseError reports a process releasing a slot that it does not
// hold.
type InvalidReleaseError struct {
	Pool    string
	Process string
}

func (e *InvalidReleaseError) Error() string {
	return fmt.Sprintf(
		"process %s releases pool %s without holding a slot",
		e.Process, e.Pool)
}

// A ReentrantAcquireError reports a process acquiring a pool that it already
// holds or is already waiting on.
type ReentrantAcquireError struct {
	Pool    string
	Process string
}

func (e *ReentrantAcquireError) Error() string {
	return fmt.Sprintf(
		"process %s acquires pool %s while already holding it",
		e.Process, e.Pool)
}

// A ConfigurationError reports an invalid parameter detected before the
// simulation starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// A ProcessError wraps the error that made a process body fail.
type ProcessError struct {
	Process string
	Time    VTimeInSec
	Err     error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf(
		"process %s failed @ %.10f: %v", e.Process, e.Time, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
