package jobs

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ShellCommandJob runs a command line, split on whitespace (no shell).
type ShellCommandJob struct {
	Command string `json:"command"`

	// Timeout in seconds (0 = no timeout)
	Timeout int `json:"timeout,omitempty"`

	Tries int `json:"tries,omitempty"`
}

func (j *ShellCommandJob) Type() string        { return TypeShellCommand }
func (j *ShellCommandJob) MaxHandleTimes() int { return j.Tries }

func (j *ShellCommandJob) Handle(ctx context.Context) error {
	parts := strings.Fields(j.Command)
	if len(parts) == 0 {
		return fmt.Errorf("job payload missing 'command' field")
	}

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(j.Timeout)*time.Second)
		defer cancel()
	}

	Log(ctx, "info", "Running shell command: '%s'", j.Command)
	output, err := exec.CommandContext(ctx, parts[0], parts[1:]...).CombinedOutput()
	if len(output) > 0 {
		Log(ctx, "info", "%s", strings.TrimRight(string(output), "\n"))
	}
	if err != nil {
		return fmt.Errorf("command %q failed: %w", parts[0], err)
	}
	return nil
}
