// Package redis implements the queue.MessageQueue contract on Redis lists
// and sorted sets.
//
// Each logical queue uses five keys:
//
//   - {name}_waiting  LIST  ready messages (LPUSH in, BRPOP out)
//   - {name}_reserved ZSET  claimed messages scored by reservation deadline
//   - {name}_delayed  ZSET  scheduled messages scored by execute-after
//   - {name}_timeout  LIST  reservations whose deadline lapsed
//   - {name}_failed   LIST  messages that exhausted their retries
//
// Scores are Unix seconds. The stored value in every structure is the
// serialized message, so reservations are acked and failed by exact value.
package redis

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Connect parses redisURL, applies password (if set) and verifies the connection.
func Connect(ctx context.Context, redisURL, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if password != "" {
		opts.Password = password
	}

	client := redis.NewClient(opts)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// MaskURL masks the password in a Redis URL for safe logging.
// redis://:password@host:port -> redis://:***@host:port
func MaskURL(redisURL string) string {
	u, err := url.Parse(redisURL)
	if err != nil {
		// If parsing fails, just show the scheme and a placeholder
		if strings.HasPrefix(redisURL, "redis://") {
			return "redis://***"
		}
		return "***"
	}
	if u.User != nil {
		if _, hasPass := u.User.Password(); hasPass {
			u.User = url.UserPassword(u.User.Username(), "***")
			// url escapes the mask in userinfo
			return strings.Replace(u.String(), ":%2A%2A%2A@", ":***@", 1)
		}
	}
	return u.String()
}
