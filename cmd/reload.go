// cmd/reload.go
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/zhang-bin/ludo-framework-sub000/internal/queue"
)

var reloadCron string

var reloadCmd = &cobra.Command{
	Use:   "reload [timeout|waiting]",
	Short: "Move failed (or timed out) jobs back into waiting",
	Long: `Moves every entry of a channel into waiting, one at a time, and prints
how many were moved. Without an argument the failed channel is reloaded;
otherwise only timeout and waiting are accepted.

With --cron the reload is repeated on a schedule until interrupted.`,
	Example: `  # Re-dispatch jobs that exhausted their retries
  ludo reload

  # Re-dispatch timed out reservations every five minutes
  ludo reload timeout --cron="*/5 * * * *"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		channel := channelArg(args)
		if _, err := queue.ReloadSource(channel); err != nil {
			return err
		}
		if reloadCron != "" {
			if _, err := cron.ParseStandard(reloadCron); err != nil {
				return fmt.Errorf("invalid cron expression %q: %w", reloadCron, err)
			}
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		client, q, err := openQueue(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		if reloadCron == "" {
			return reloadOnce(ctx, q, channel)
		}

		scheduler := cron.New()
		if _, err := scheduler.AddFunc(reloadCron, func() {
			if err := reloadOnce(ctx, q, channel); err != nil {
				printLog("error", fmt.Sprintf("Reload failed: %v", err))
			}
		}); err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", reloadCron, err)
		}

		printLog("info", fmt.Sprintf("Reloading %s on schedule %q", describeChannel(channel), reloadCron))
		scheduler.Start()
		<-ctx.Done()
		<-scheduler.Stop().Done()
		return nil
	},
}

func reloadOnce(ctx context.Context, q queue.MessageQueue, channel string) error {
	moved, err := q.Reload(ctx, channel)
	if err != nil {
		return err
	}
	successColor.Printf("✓ Reloaded %d job(s) from %s into waiting\n", moved, describeChannel(channel))
	return nil
}

// describeChannel names the default channel for messages.
func describeChannel(channel string) string {
	if channel == "" {
		return queue.ChannelFailed
	}
	return channel
}

func init() {
	rootCmd.AddCommand(reloadCmd)
	reloadCmd.Flags().StringVar(&reloadCron, "cron", "", "Repeat the reload on this cron schedule (5 fields)")
}
