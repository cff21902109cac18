package jobs

import (
	"context"
	"errors"
)

// EchoJob logs its message. With Fail set it always fails, which is
// useful to exercise the retry and failed channels.
type EchoJob struct {
	Message string `json:"message"`
	Fail    bool   `json:"fail,omitempty"`
	Tries   int    `json:"tries,omitempty"`
}

func (j *EchoJob) Type() string        { return TypeEcho }
func (j *EchoJob) MaxHandleTimes() int { return j.Tries }

func (j *EchoJob) Handle(ctx context.Context) error {
	Log(ctx, "info", "echo: %s", j.Message)
	if j.Fail {
		return errors.New("echo job asked to fail")
	}
	return nil
}
