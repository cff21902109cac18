package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zhang-bin/ludo-framework-sub000/internal/queue"
)

// promoteBatch caps how many entries one Pop moves per channel.
const promoteBatch = 100

// promoteScript moves one member out of a sorted set and pushes it onto a
// list with the command in ARGV[2]. Only the caller whose ZREM succeeds
// pushes, so racing consumers never duplicate an entry.
var promoteScript = redis.NewScript(`
if redis.call("ZREM", KEYS[1], ARGV[1]) == 1 then
	redis.call(ARGV[2], KEYS[2], ARGV[1])
	return 1
end
return 0
`)

// Queue is a Redis-backed queue.MessageQueue.
type Queue struct {
	client   *redis.Client
	codec    queue.Codec
	channels queue.Channels

	pollTimeout   time.Duration
	retryDelay    time.Duration
	handleTimeout time.Duration

	now   func() time.Time
	logFn func(level, msg string)
}

// QueueConfig holds configuration for a Queue.
type QueueConfig struct {
	// Name is the logical queue name the channel keys derive from
	Name string

	// PollTimeout is how long Pop blocks on an empty queue (default: 5s)
	PollTimeout time.Duration

	// RetryDelay is how long a failed message waits before it is retried (default: 60s)
	RetryDelay time.Duration

	// HandleTimeout is the reservation deadline of a popped message (default: 60s)
	HandleTimeout time.Duration

	// Now overrides the clock used for scores
	Now func() time.Time

	// LogFn is an optional callback for logging (if nil, prints to stdout)
	LogFn func(level, msg string)
}

// NewQueue creates a queue on an already connected client.
func NewQueue(client *redis.Client, codec queue.Codec, cfg QueueConfig) (*Queue, error) {
	channels, err := queue.NewChannels(cfg.Name)
	if err != nil {
		return nil, err
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 60 * time.Second
	}
	if cfg.HandleTimeout <= 0 {
		cfg.HandleTimeout = 60 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Queue{
		client:        client,
		codec:         codec,
		channels:      channels,
		pollTimeout:   cfg.PollTimeout,
		retryDelay:    cfg.RetryDelay,
		handleTimeout: cfg.HandleTimeout,
		now:           cfg.Now,
		logFn:         cfg.LogFn,
	}, nil
}

// log outputs a message - uses LogFn callback if set, otherwise prints to stdout.
func (q *Queue) log(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if q.logFn != nil {
		q.logFn(level, msg)
	} else {
		fmt.Printf("%s\n", msg)
	}
}

// Name returns the logical queue name.
func (q *Queue) Name() string {
	return q.channels.Base()
}

// Channels returns the channel names of this queue.
func (q *Queue) Channels() queue.Channels {
	return q.channels
}

// score converts a point in time into a sorted set score.
func score(t time.Time) float64 {
	return float64(t.Unix())
}

// Push enqueues job into waiting, or into delayed when delay is positive.
func (q *Queue) Push(ctx context.Context, job queue.Job, delay time.Duration) (string, error) {
	msg := queue.NewMessage(job)
	data, err := q.codec.Encode(msg)
	if err != nil {
		return "", err
	}

	if delay > 0 {
		err = q.client.ZAdd(ctx, q.channels.MustName(queue.ChannelDelayed), redis.Z{
			Score:  score(q.now().Add(delay)),
			Member: string(data),
		}).Err()
	} else {
		err = q.client.LPush(ctx, q.channels.MustName(queue.ChannelWaiting), string(data)).Err()
	}
	if err != nil {
		return "", fmt.Errorf("failed to push %s job: %w", job.Type(), err)
	}
	return msg.ID, nil
}

// Delete removes delayed entries equal to a freshly pushed message of job,
// ignoring the message ID. Entries that were already retried carry a
// non-zero handle count and never match.
func (q *Queue) Delete(ctx context.Context, job queue.Job) (bool, error) {
	data, err := q.codec.Encode(&queue.Message{Job: job})
	if err != nil {
		return false, err
	}
	want, err := q.codec.StripID(data)
	if err != nil {
		return false, err
	}

	delayed := q.channels.MustName(queue.ChannelDelayed)
	members, err := q.client.ZRange(ctx, delayed, 0, -1).Result()
	if err != nil {
		return false, fmt.Errorf("failed to scan %s: %w", delayed, err)
	}

	var removed int64
	for _, member := range members {
		got, err := q.codec.StripID([]byte(member))
		if err != nil || !bytes.Equal(got, want) {
			continue
		}
		n, err := q.client.ZRem(ctx, delayed, member).Result()
		if err != nil {
			return removed > 0, fmt.Errorf("failed to delete from %s: %w", delayed, err)
		}
		removed += n
	}
	return removed > 0, nil
}

// Pop promotes due delayed entries and lapsed reservations, then blocks
// for up to the poll timeout on waiting. The popped message is reserved
// until now + handle timeout.
func (q *Queue) Pop(ctx context.Context) (string, *queue.Message, error) {
	if _, err := q.promote(ctx, queue.ChannelDelayed, queue.ChannelWaiting, "RPUSH"); err != nil {
		return "", nil, err
	}
	if _, err := q.promote(ctx, queue.ChannelReserved, queue.ChannelTimeout, "LPUSH"); err != nil {
		return "", nil, err
	}

	waiting := q.channels.MustName(queue.ChannelWaiting)
	res, err := q.client.BRPop(ctx, q.pollTimeout, waiting).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil, nil // No message available
		}
		return "", nil, fmt.Errorf("failed to pop from %s: %w", waiting, err)
	}
	if len(res) < 2 {
		return "", nil, nil
	}
	raw := res[1]

	msg, err := q.codec.Decode([]byte(raw))
	if err != nil {
		q.log("warning", "Dropping undecodable message from %s: %v", waiting, err)
		return "", nil, nil
	}

	reserved := q.channels.MustName(queue.ChannelReserved)
	if err := q.client.ZAdd(ctx, reserved, redis.Z{
		Score:  score(q.now().Add(q.handleTimeout)),
		Member: raw,
	}).Err(); err != nil {
		return "", nil, fmt.Errorf("failed to reserve message %s: %w", msg.ID, err)
	}

	return raw, msg, nil
}

// promote moves up to promoteBatch entries of the from sorted set whose
// score is due onto the to list, returning how many were moved.
func (q *Queue) promote(ctx context.Context, from, to, pushCmd string) (int, error) {
	fromKey := q.channels.MustName(from)
	toKey := q.channels.MustName(to)

	members, err := q.client.ZRevRangeByScore(ctx, fromKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(q.now().Unix(), 10),
		Count: promoteBatch,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", fromKey, err)
	}

	moved := 0
	for _, member := range members {
		n, err := promoteScript.Run(ctx, q.client, []string{fromKey, toKey}, member, pushCmd).Int()
		if err != nil {
			return moved, fmt.Errorf("failed to move entry from %s to %s: %w", fromKey, toKey, err)
		}
		moved += n
	}
	return moved, nil
}

// Ack drops the reservation of raw. Acking twice is harmless.
func (q *Queue) Ack(ctx context.Context, raw string) error {
	_, err := q.Remove(ctx, raw)
	return err
}

// Remove drops the reservation of raw and reports whether it existed.
func (q *Queue) Remove(ctx context.Context, raw string) (bool, error) {
	reserved := q.channels.MustName(queue.ChannelReserved)
	n, err := q.client.ZRem(ctx, reserved, raw).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remove from %s: %w", reserved, err)
	}
	return n > 0, nil
}

// Retry re-serializes msg, keeping its ID and handle count, and schedules
// it retry delay from now.
func (q *Queue) Retry(ctx context.Context, msg *queue.Message) error {
	data, err := q.codec.Encode(msg)
	if err != nil {
		return err
	}

	delayed := q.channels.MustName(queue.ChannelDelayed)
	if err := q.client.ZAdd(ctx, delayed, redis.Z{
		Score:  score(q.now().Add(q.retryDelay)),
		Member: string(data),
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to %s: %w", delayed, err)
	}
	return nil
}

// Fail moves the reservation of raw to the failed channel. If the
// reservation is already gone (timed out or acked) nothing is pushed.
func (q *Queue) Fail(ctx context.Context, raw string) error {
	removed, err := q.Remove(ctx, raw)
	if err != nil || !removed {
		return err
	}

	failed := q.channels.MustName(queue.ChannelFailed)
	if err := q.client.LPush(ctx, failed, raw).Err(); err != nil {
		return fmt.Errorf("failed to push to %s: %w", failed, err)
	}
	return nil
}

// Reload moves entries of channel (failed when empty; otherwise timeout or
// waiting) into waiting one at a time and returns the count moved.
// Reloading waiting rotates each entry it held at the start exactly once.
func (q *Queue) Reload(ctx context.Context, channel string) (int64, error) {
	channel, err := queue.ReloadSource(channel)
	if err != nil {
		return 0, err
	}

	source := q.channels.MustName(channel)
	waiting := q.channels.MustName(queue.ChannelWaiting)

	limit := int64(-1)
	if source == waiting {
		n, err := q.client.LLen(ctx, waiting).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to measure %s: %w", waiting, err)
		}
		limit = n
	}

	var moved int64
	for limit < 0 || moved < limit {
		err := q.client.RPopLPush(ctx, source, waiting).Err()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, fmt.Errorf("failed to move entry from %s: %w", source, err)
		}
		moved++
	}

	if moved > 0 {
		q.log("info", "Reloaded %d message(s) from %s into %s", moved, source, waiting)
	}
	return moved, nil
}

// Flush deletes channel (failed when empty) and reports whether a key was removed.
func (q *Queue) Flush(ctx context.Context, channel string) (bool, error) {
	if channel == "" {
		channel = queue.ChannelFailed
	}
	key, err := q.channels.Name(channel)
	if err != nil {
		return false, err
	}

	n, err := q.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return n > 0, nil
}

// Stats returns the number of entries in every channel, keyed by role.
func (q *Queue) Stats(ctx context.Context) (map[string]int64, error) {
	stats := make(map[string]int64, 5)
	for _, role := range queue.Roles() {
		key := q.channels.MustName(role)

		var n int64
		var err error
		switch role {
		case queue.ChannelReserved, queue.ChannelDelayed:
			n, err = q.client.ZCard(ctx, key).Result()
		default:
			n, err = q.client.LLen(ctx, key).Result()
		}
		if err != nil {
			return nil, fmt.Errorf("failed to measure %s: %w", key, err)
		}
		stats[role] = n
	}
	return stats, nil
}

// Ensure Queue implements MessageQueue
var _ queue.MessageQueue = (*Queue)(nil)
