// cmd/flush.go
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var flushCmd = &cobra.Command{
	Use:   "flush [waiting|reserved|delayed|failed|timeout]",
	Short: "Delete every entry of a channel",
	Long: `Deletes a whole channel regardless of its content. Without an argument
the failed channel is flushed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		channel := channelArg(args)

		ctx := context.Background()
		client, q, err := openQueue(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		deleted, err := q.Flush(ctx, channel)
		if err != nil {
			return err
		}
		if deleted {
			successColor.Printf("✓ Flushed %s\n", describeChannel(channel))
		} else {
			warnColor.Printf("! %s was already empty\n", describeChannel(channel))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flushCmd)
}
