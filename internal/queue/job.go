// Package queue provides the job model and the consumer contract shared by
// every queue backend.
//
// Architecture:
//
//	Producer → MessageQueue.Push → waiting / delayed
//	Consumer → MessageQueue.Pop → Job.Handle → Ack / Retry / Fail
//
// A logical queue is split into five channels (see Channels). Pop performs
// the time based promotions (delayed → waiting, reserved → timeout) so no
// separate sweeper process is needed. Operators move failed and timed out
// entries back into circulation with Reload.
package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is a unit of work. Implementations must be JSON serializable; the
// exported fields are the job payload.
type Job interface {
	// Type is the name the job is registered under in a Registry.
	Type() string

	// MaxHandleTimes bounds retries. Zero means a failure is final.
	MaxHandleTimes() int

	// Handle performs the work. A returned error (or a panic) marks the
	// attempt as failed.
	Handle(ctx context.Context) error
}

// Message wraps a job with its retry bookkeeping.
type Message struct {
	// ID is assigned at push time and survives retries
	ID string

	Job Job

	// HandleTimes counts consumed handles (see ShouldHandleAgain)
	HandleTimes int
}

// NewMessage wraps job in a fresh message with a new ID.
func NewMessage(job Job) *Message {
	return &Message{
		ID:  uuid.NewString(),
		Job: job,
	}
}

// Advance records one execution of the job.
func (m *Message) Advance() {
	m.HandleTimes++
}

// ShouldHandleAgain reports whether the job may be retried. The comparison
// uses the counter as it was before the call, and every call consumes one
// handle. Together with Advance this means a failed attempt advances the
// counter twice.
func (m *Message) ShouldHandleAgain() bool {
	again := m.Job.MaxHandleTimes() > m.HandleTimes
	m.HandleTimes++
	return again
}

// Status is the outcome of one job execution.
type Status string

const (
	// StatusSuccess indicates the job completed and can be acknowledged
	StatusSuccess Status = "success"

	// StatusFailure indicates the job returned an error or panicked
	StatusFailure Status = "failure"
)

// Result contains the outcome of one job execution.
type Result struct {
	Status   Status
	Err      error
	Duration time.Duration
}

// Failed reports whether the execution failed.
func (r Result) Failed() bool {
	return r.Status != StatusSuccess
}
