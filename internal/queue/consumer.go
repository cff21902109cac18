package queue

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/zhang-bin/ludo-framework-sub000/internal/coroutine"
	"github.com/zhang-bin/ludo-framework-sub000/internal/history"
)

// Outcomes recorded for a handled message.
const (
	OutcomeAcked   = "acked"
	OutcomeRetried = "retried"
	OutcomeFailed  = "failed"
)

// Unit storage keys set for every handled message.
const (
	KeyMessageID = "message_id"
	KeyJobType   = "job_type"

	// KeyLogFn holds a func(level, msg string) logging through the consumer
	KeyLogFn = "log_fn"
)

// ConsumerConfig holds configuration for a Consumer.
type ConsumerConfig struct {
	// WorkerID identifies this consumer process in logs and history
	WorkerID string

	// RateLimit caps popped messages per second (0 = unlimited)
	RateLimit float64

	// Burst is the rate limiter burst size (default: 1)
	Burst int

	// LogFn is an optional callback for logging (if nil, prints to stdout)
	LogFn func(level, msg string)

	// RecordFn is called after every handled message (for job history)
	RecordFn func(record history.Record)

	// Now overrides the clock used for durations
	Now func() time.Time
}

// Consumer drives the pop → handle → ack/retry/fail loop for one queue.
// It handles one message at a time; scale out by running more consumers.
type Consumer struct {
	queue   MessageQueue
	config  ConsumerConfig
	limiter *rate.Limiter
	now     func() time.Time
}

// NewConsumer creates a consumer for q.
func NewConsumer(q MessageQueue, cfg ConsumerConfig) *Consumer {
	c := &Consumer{
		queue:  q,
		config: cfg,
		now:    cfg.Now,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// log outputs a message - uses LogFn callback if set, otherwise prints to stdout.
// Inside a handling unit the message ID and job type are prefixed.
func (c *Consumer) log(ctx context.Context, level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if id, ok := coroutine.Get(ctx, KeyMessageID); ok {
		jobType, _ := coroutine.Get(ctx, KeyJobType)
		msg = fmt.Sprintf("[%v %v] %s", jobType, id, msg)
	}
	if c.config.LogFn != nil {
		c.config.LogFn(level, msg)
	} else {
		fmt.Printf("%s\n", msg)
	}
}

// Consume runs until ctx is cancelled. Store errors are logged and retried
// with exponential backoff; job failures never stop the loop.
func (c *Consumer) Consume(ctx context.Context) error {
	c.log(ctx, "info", "Consumer %s listening on %s", c.config.WorkerID, c.queue.Name())

	backoff := time.Second
	const maxBackoff = 30 * time.Second

consumeLoop:
	for {
		select {
		case <-ctx.Done():
			break consumeLoop
		default:
		}

		if _, err := c.Next(ctx); err != nil {
			if ctx.Err() != nil {
				break consumeLoop
			}
			c.log(ctx, "warning", "Error consuming %s: %v (retry in %s)", c.queue.Name(), err, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				break consumeLoop
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		backoff = time.Second
	}

	c.log(ctx, "info", "Consumer %s stopped", c.config.WorkerID)
	return nil
}

// Next pops at most one message and handles it inside its own unit,
// blocking until the message is settled. It reports whether a message was
// handled.
func (c *Consumer) Next(ctx context.Context) (bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return false, err
		}
	}

	raw, msg, err := c.queue.Pop(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to pop message: %w", err)
	}
	if msg == nil {
		return false, nil
	}

	errs := coroutine.Run(ctx, func(ctx context.Context) error {
		return c.handle(ctx, raw, msg)
	})
	return true, errs[0]
}

// handle executes the job and settles the message.
func (c *Consumer) handle(ctx context.Context, raw string, msg *Message) error {
	coroutine.Set(ctx, KeyMessageID, msg.ID)
	coroutine.Set(ctx, KeyJobType, msg.Job.Type())
	coroutine.Set(ctx, KeyLogFn, func(level, line string) {
		c.log(ctx, level, "%s", line)
	})
	c.log(ctx, "info", "Handling job (handled %d times so far)", msg.HandleTimes)

	started := c.now()
	msg.Advance()
	result := execute(ctx, msg.Job)
	completed := c.now()
	result.Duration = completed.Sub(started)

	// A job that finished during shutdown is still settled
	outcome, err := c.settle(context.WithoutCancel(ctx), raw, msg, result)
	if err != nil {
		return err
	}

	if c.config.RecordFn != nil {
		c.config.RecordFn(buildRecord(c.queue.Name(), c.config.WorkerID, msg, outcome, started, completed, result.Err))
	}
	return nil
}

// execute runs the job, turning errors and panics into a failed Result.
func execute(ctx context.Context, job Job) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Status: StatusFailure, Err: fmt.Errorf("job panicked: %v", r)}
		}
	}()

	if err := job.Handle(ctx); err != nil {
		return Result{Status: StatusFailure, Err: err}
	}
	return Result{Status: StatusSuccess}
}

// settle acks, retries or fails the message according to result.
func (c *Consumer) settle(ctx context.Context, raw string, msg *Message, result Result) (string, error) {
	if !result.Failed() {
		if err := c.queue.Ack(ctx, raw); err != nil {
			return "", fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
		}
		c.log(ctx, "success", "Job completed (%v)", result.Duration)
		return OutcomeAcked, nil
	}

	c.log(ctx, "error", "Job failed (%v): %v", result.Duration, result.Err)

	if msg.ShouldHandleAgain() {
		removed, err := c.queue.Remove(ctx, raw)
		if err != nil {
			return "", fmt.Errorf("failed to remove reservation of %s: %w", msg.ID, err)
		}
		if removed {
			if err := c.queue.Retry(ctx, msg); err != nil {
				return "", fmt.Errorf("failed to retry message %s: %w", msg.ID, err)
			}
			c.log(ctx, "warning", "Job scheduled for retry (handled %d/%d)", msg.HandleTimes, msg.Job.MaxHandleTimes())
			return OutcomeRetried, nil
		}
	}

	if err := c.queue.Fail(ctx, raw); err != nil {
		return "", fmt.Errorf("failed to fail message %s: %w", msg.ID, err)
	}
	c.log(ctx, "warning", "Job moved to failed channel")
	return OutcomeFailed, nil
}

// buildRecord constructs a history Record for a settled message.
func buildRecord(queueName, workerID string, msg *Message, outcome string, started, completed time.Time, err error) history.Record {
	r := history.Record{
		MessageID:   msg.ID,
		JobType:     msg.Job.Type(),
		Queue:       queueName,
		Status:      outcome,
		HandleTimes: msg.HandleTimes,
		StartedAt:   started,
		CompletedAt: completed,
		DurationMs:  completed.Sub(started).Milliseconds(),
		WorkerID:    workerID,
	}

	if err != nil {
		errMsg := err.Error()
		if len(errMsg) > 1024 {
			errMsg = errMsg[:1024]
		}
		r.ErrorMessage = errMsg
	}

	return r
}
