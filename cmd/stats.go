// cmd/stats.go
package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zhang-bin/ludo-framework-sub000/internal/queue"
	"github.com/zhang-bin/ludo-framework-sub000/internal/tui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number of entries in each channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, q, err := openQueue(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		counts, err := q.Stats(ctx)
		if err != nil {
			return err
		}

		fmt.Println(renderStats(q.Name(), counts, !tui.IsTTY()))
		return nil
	},
}

func renderStats(name string, counts map[string]int64, plain bool) string {
	panel := tui.KeyValuePanel{
		Title: "Queue " + name,
		Plain: plain,
	}
	for _, role := range queue.Roles() {
		panel.Items = append(panel.Items, tui.KeyValue{
			Key:   role,
			Value: strconv.FormatInt(counts[role], 10),
			Style: statsStyle(role, counts[role]),
		})
	}
	return panel.Render()
}

// statsStyle highlights channels that need an operator.
func statsStyle(role string, n int64) lipgloss.Style {
	switch {
	case n == 0:
		return tui.MutedStyle
	case role == queue.ChannelFailed:
		return tui.ErrorStyle
	case role == queue.ChannelTimeout:
		return tui.WarningStyle
	default:
		return tui.ValueStyle
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
