// Package jobs contains the built-in job types shipped with the queue CLI.
package jobs

import (
	"context"
	"fmt"

	"github.com/zhang-bin/ludo-framework-sub000/internal/coroutine"
	"github.com/zhang-bin/ludo-framework-sub000/internal/queue"
)

// Built-in job types
const (
	TypeEcho         = "echo"
	TypeShellCommand = "shell"
	TypeSleep        = "sleep"
)

// Register adds every built-in job type to registry.
func Register(registry *queue.Registry) {
	registry.Register(TypeEcho, func() queue.Job { return &EchoJob{} })
	registry.Register(TypeShellCommand, func() queue.Job { return &ShellCommandJob{} })
	registry.Register(TypeSleep, func() queue.Job { return &SleepJob{} })
}

// Log outputs a message - uses the consumer's logger when ctx belongs to a
// handling unit, otherwise prints to stdout.
func Log(ctx context.Context, level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if v, ok := coroutine.Get(ctx, queue.KeyLogFn); ok {
		if logFn, ok := v.(func(level, msg string)); ok {
			logFn(level, msg)
			return
		}
	}
	fmt.Printf("%s\n", msg)
}
