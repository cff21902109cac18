// cmd/history.go
package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhang-bin/ludo-framework-sub000/internal/history"
	"github.com/zhang-bin/ludo-framework-sub000/internal/tui"
)

var (
	historyLimit     int
	historyMessageID string
	historyPrune     time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show jobs handled by workers started with --history",
	Example: `  ludo history --history=./ludo-history.db --limit=50
  ludo history --history=./ludo-history.db --message=<message-id>
  ludo history --history=./ludo-history.db --prune=168h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if workHistoryPath != "" {
			cfg.History.Path = workHistoryPath
		}
		if cfg.History.Path == "" {
			return fmt.Errorf("no history database configured (use --history or LUDO_HISTORY_PATH)")
		}

		store, err := history.OpenStore(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		if historyPrune > 0 {
			n, err := store.Prune(time.Now().Add(-historyPrune))
			if err != nil {
				return err
			}
			successColor.Printf("✓ Pruned %d record(s) older than %s\n", n, historyPrune)
			return nil
		}

		var records []history.Record
		if historyMessageID != "" {
			records, err = store.ForMessage(historyMessageID)
		} else {
			records, err = store.Recent(historyLimit)
		}
		if err != nil {
			return err
		}

		plain := !tui.IsTTY()
		if len(records) == 0 {
			fmt.Println("No records.")
		}
		for _, r := range records {
			fmt.Println(formatRecord(r, plain))
		}

		counts, err := store.CountByStatus()
		if err != nil {
			return err
		}
		fmt.Println(renderCounts(counts, plain))
		return nil
	},
}

func formatRecord(r history.Record, plain bool) string {
	status := r.Status
	if !plain {
		status = tui.StatusStyle(r.Status).Render(fmt.Sprintf("%-8s", r.Status))
	} else {
		status = fmt.Sprintf("%-8s", status)
	}
	line := fmt.Sprintf("%s  %s  %-8s %s  try=%d  %dms",
		r.CompletedAt.Local().Format("2006-01-02 15:04:05"),
		status, r.JobType, r.MessageID, r.HandleTimes, r.DurationMs)
	if r.ErrorMessage != "" {
		line += "  " + r.ErrorMessage
	}
	return line
}

func renderCounts(counts map[string]int64, plain bool) string {
	statuses := make([]string, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	panel := tui.KeyValuePanel{Title: "Totals", Plain: plain}
	for _, status := range statuses {
		panel.Items = append(panel.Items, tui.KeyValue{
			Key:   status,
			Value: strconv.FormatInt(counts[status], 10),
			Style: tui.StatusStyle(status),
		})
	}
	return panel.Render()
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of recent records to show")
	historyCmd.Flags().StringVar(&historyMessageID, "message", "", "Show every attempt of one message")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "Delete records older than this age instead of listing")
	historyCmd.Flags().StringVar(&workHistoryPath, "history", "", "SQLite history file (or set LUDO_HISTORY_PATH env)")
}
