package queue

import (
	"context"
	"time"
)

// MessageQueue is the contract every queue backend implements.
// The raw string handed out by Pop is the exact stored form of the message;
// Ack, Remove and Fail locate the reservation by it.
type MessageQueue interface {
	// Name returns the logical queue name.
	Name() string

	// Push enqueues job. A positive delay schedules it into the delayed
	// channel instead of waiting. Returns the new message ID.
	Push(ctx context.Context, job Job, delay time.Duration) (string, error)

	// Delete removes not yet reserved delayed entries of job that were never
	// handled. Reports whether anything was removed.
	Delete(ctx context.Context, job Job) (bool, error)

	// Pop promotes due entries, then blocks for the next waiting message.
	// A nil message (and nil error) means nothing was available.
	Pop(ctx context.Context) (string, *Message, error)

	// Ack drops the reservation of a successfully handled message.
	Ack(ctx context.Context, raw string) error

	// Remove drops the reservation and reports whether it still existed.
	Remove(ctx context.Context, raw string) (bool, error)

	// Retry schedules msg back into the delayed channel.
	Retry(ctx context.Context, msg *Message) error

	// Fail moves a reserved message to the failed channel. A reservation
	// that is already gone is not duplicated into failed.
	Fail(ctx context.Context, raw string) error

	// Reload moves every entry of the source channel into waiting and
	// returns how many were moved. An empty channel means failed.
	Reload(ctx context.Context, channel string) (int64, error)

	// Flush deletes a whole channel. An empty channel means failed.
	Flush(ctx context.Context, channel string) (bool, error)
}
