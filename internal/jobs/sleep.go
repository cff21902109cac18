package jobs

import (
	"context"
	"time"
)

// SleepJob waits for Seconds. It stands in for slow handlers when testing
// reservation timeouts.
type SleepJob struct {
	Seconds int `json:"seconds"`
	Tries   int `json:"tries,omitempty"`
}

func (j *SleepJob) Type() string        { return TypeSleep }
func (j *SleepJob) MaxHandleTimes() int { return j.Tries }

func (j *SleepJob) Handle(ctx context.Context) error {
	Log(ctx, "info", "Sleeping %ds", j.Seconds)
	select {
	case <-time.After(time.Duration(j.Seconds) * time.Second):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
