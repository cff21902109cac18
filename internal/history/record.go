// Package history keeps a local SQLite log of handled queue messages.
package history

import "time"

// Record captures the outcome of one handled message attempt.
type Record struct {
	// Database ID (set after insert)
	ID int64

	// Message identification
	MessageID string
	JobType   string
	Queue     string

	// Outcome
	Status       string // "acked", "retried", "failed"
	HandleTimes  int
	ErrorMessage string

	// Timing
	StartedAt   time.Time
	CompletedAt time.Time
	DurationMs  int64

	// WorkerID is the consumer that handled the attempt
	WorkerID string
}
