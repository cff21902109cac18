package queue

import "errors"

var (
	// ErrUnknownChannel is returned for a channel role outside the five known roles.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrUnsupportedChannel is returned when a channel cannot be used as a reload source.
	ErrUnsupportedChannel = errors.New("unsupported channel")

	// ErrUnknownJobType is returned when decoding a job type that was never registered.
	ErrUnknownJobType = errors.New("unknown job type")

	// ErrEmptyQueueName is returned when a queue is configured without a base name.
	ErrEmptyQueueName = errors.New("queue name is required")
)
