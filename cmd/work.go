// cmd/work.go
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zhang-bin/ludo-framework-sub000/internal/history"
	"github.com/zhang-bin/ludo-framework-sub000/internal/queue"
	"github.com/zhang-bin/ludo-framework-sub000/internal/redis"
)

var (
	workWorkerID    string
	workPollSeconds int
	workRateLimit   float64
	workBurst       int
	workHistoryPath string
)

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Consume jobs from the queue",
	Long: `Runs the consumer loop: pop a job, handle it, then ack, retry or fail it.

Every pop first promotes due delayed jobs into waiting and moves lapsed
reservations into the timeout channel. One job is handled at a time; run
more processes to scale out.

Examples:
  # Consume the default queue
  ludo work --redis-url=redis://localhost:6379

  # Consume at most 5 jobs per second and keep a local history
  ludo work --queue=mail --rate=5 --history=./ludo-history.db`,
	RunE: runWork,
}

func runWork(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("poll") {
		cfg.Queue.PollTimeout = workPollSeconds
	}
	if cmd.Flags().Changed("rate") {
		cfg.Worker.RateLimit = workRateLimit
	}
	if cmd.Flags().Changed("burst") {
		cfg.Worker.Burst = workBurst
	}
	if workHistoryPath != "" {
		cfg.History.Path = workHistoryPath
	}
	if workWorkerID != "" {
		cfg.Worker.ID = workWorkerID
	}
	if cfg.Worker.ID == "" {
		cfg.Worker.ID = fmt.Sprintf("ludo-%s", uuid.New().String()[:8])
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, q, err := openQueue(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Println("--- Starting ludo worker ---")
	fmt.Printf("   - Redis: %s\n", redis.MaskURL(cfg.Redis.Address()))
	fmt.Printf("   - Worker ID: %s\n", cfg.Worker.ID)
	fmt.Printf("   - Queue: %s\n", q.Name())
	fmt.Printf("   - Job types: %v\n", newRegistry().Types())

	consumerCfg := queue.ConsumerConfig{
		WorkerID:  cfg.Worker.ID,
		RateLimit: cfg.Worker.RateLimit,
		Burst:     cfg.Worker.Burst,
		LogFn:     printLog,
	}

	if cfg.History.Path != "" {
		store, err := history.OpenStore(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		fmt.Printf("   - History: %s\n", cfg.History.Path)
		consumerCfg.RecordFn = func(record history.Record) {
			if err := store.Insert(record); err != nil {
				printLog("warning", fmt.Sprintf("Failed to record history: %v", err))
			}
		}
	}

	consumer := queue.NewConsumer(q, consumerCfg)
	return consumer.Consume(ctx)
}

func init() {
	rootCmd.AddCommand(workCmd)

	workCmd.Flags().StringVar(&workWorkerID, "worker-id", "", "Worker identifier (default: random ludo-xxxxxxxx)")
	workCmd.Flags().IntVar(&workPollSeconds, "poll", 5, "Blocking pop timeout in seconds")
	workCmd.Flags().Float64Var(&workRateLimit, "rate", 0, "Maximum jobs per second (0 = unlimited)")
	workCmd.Flags().IntVar(&workBurst, "burst", 1, "Rate limiter burst size")
	workCmd.Flags().StringVar(&workHistoryPath, "history", "", "SQLite file recording handled jobs (or set LUDO_HISTORY_PATH env)")
}
