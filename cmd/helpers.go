// cmd/helpers.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	goredis "github.com/redis/go-redis/v9"

	"github.com/zhang-bin/ludo-framework-sub000/internal/config"
	"github.com/zhang-bin/ludo-framework-sub000/internal/jobs"
	"github.com/zhang-bin/ludo-framework-sub000/internal/queue"
	"github.com/zhang-bin/ludo-framework-sub000/internal/redis"
)

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	debugColor   = color.New(color.Faint)
)

// printLog is the LogFn handed to queue components.
func printLog(level, msg string) {
	timestamp := time.Now().Format("15:04:05")

	switch level {
	case "error":
		errorColor.Fprintf(os.Stderr, "%s ✗ %s\n", timestamp, msg)
	case "warning":
		warnColor.Fprintf(os.Stderr, "%s ! %s\n", timestamp, msg)
	case "success":
		successColor.Printf("%s ✓ %s\n", timestamp, msg)
	case "debug":
		if debugMode {
			debugColor.Printf("%s · %s\n", timestamp, msg)
		}
	default:
		infoColor.Printf("%s - %s\n", timestamp, msg)
	}

	Debug("[%s] %s", level, msg)
}

// loadConfig loads the config file and applies persistent flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cfg, err
	}
	if redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if queueName != "" {
		cfg.Queue.Name = queueName
	}
	Debug("config: redis=%s queue=%s", redis.MaskURL(cfg.Redis.Address()), cfg.Queue.Name)
	return cfg, nil
}

// newRegistry returns a registry with every built-in job type.
func newRegistry() *queue.Registry {
	registry := queue.NewRegistry()
	jobs.Register(registry)
	return registry
}

// openQueue connects to Redis and builds the queue described by cfg.
// The caller closes the returned client.
func openQueue(ctx context.Context, cfg config.Config) (*goredis.Client, *redis.Queue, error) {
	client, err := redis.Connect(ctx, cfg.Redis.Address(), cfg.Redis.Password)
	if err != nil {
		return nil, nil, err
	}

	q, err := redis.NewQueue(client, queue.NewJSONCodec(newRegistry()), redis.QueueConfig{
		Name:          cfg.Queue.Name,
		PollTimeout:   cfg.Queue.PollTimeoutDuration(),
		RetryDelay:    cfg.Queue.RetryDelayDuration(),
		HandleTimeout: cfg.Queue.HandleTimeoutDuration(),
		LogFn:         printLog,
	})
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to create queue: %w", err)
	}
	return client, q, nil
}

// channelArg returns the optional channel role argument.
func channelArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
