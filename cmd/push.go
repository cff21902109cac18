// cmd/push.go
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pushDelay time.Duration

var pushCmd = &cobra.Command{
	Use:   "push <type> [payload-json]",
	Short: "Push a job onto the queue",
	Long: `Pushes one job. The payload is the JSON form of the job type.

Built-in types:
  echo   {"message": "hi", "fail": false, "tries": 2}
  shell  {"command": "date -u", "timeout": 10, "tries": 0}
  sleep  {"seconds": 30}`,
	Example: `  # Run now
  ludo push echo '{"message":"hello"}'

  # Run in five minutes
  ludo push shell '{"command":"backup.sh"}' --delay=5m`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		job, err := newRegistry().New(args[0])
		if err != nil {
			return err
		}
		if len(args) > 1 {
			if err := json.Unmarshal([]byte(args[1]), job); err != nil {
				return fmt.Errorf("invalid %s payload: %w", args[0], err)
			}
		}

		ctx := context.Background()
		client, q, err := openQueue(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		id, err := q.Push(ctx, job, pushDelay)
		if err != nil {
			return err
		}

		if pushDelay > 0 {
			successColor.Printf("✓ Scheduled %s job %s in %s\n", job.Type(), id, pushDelay)
		} else {
			successColor.Printf("✓ Pushed %s job %s\n", job.Type(), id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().DurationVar(&pushDelay, "delay", 0, "Delay before the job becomes ready (e.g. 30s, 5m)")
}
