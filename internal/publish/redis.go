// Package publish mirrors the generated payload into Redis so other services
// can read current prices without the file. Redis is optional: without a URL,
// or when it cannot be reached, publishing is disabled.
package publish

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"
)

// dial builds a client for PRICING_REDIS_URL. Accepted forms:
//
//	redis://[user:pass@]host:6379/0        single node (rediss:// for TLS)
//	redis-cluster://[user:pass@]a:6379,b:6379  cluster (rediss-cluster:// for TLS)
//
// The second result names the backend for logs.
func dial(redisURL string) (redis.UniversalClient, string, error) {
	scheme, _, ok := strings.Cut(redisURL, "://")
	if !ok {
		return nil, "", fmt.Errorf("redis url has no scheme")
	}
	switch scheme {
	case "redis", "rediss":
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, "", fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), "single", nil
	case "redis-cluster", "rediss-cluster":
		u, err := url.Parse(redisURL)
		if err != nil {
			return nil, "", fmt.Errorf("parse redis url: %w", err)
		}
		var addrs []string
		for _, a := range strings.Split(u.Host, ",") {
			if a = strings.TrimSpace(a); a != "" {
				addrs = append(addrs, a)
			}
		}
		if len(addrs) == 0 {
			return nil, "", fmt.Errorf("redis cluster url lists no nodes")
		}
		opt := &redis.ClusterOptions{Addrs: addrs, Username: u.User.Username()}
		opt.Password, _ = u.User.Password()
		if scheme == "rediss-cluster" {
			opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		return redis.NewClusterClient(opt), "cluster", nil
	}
	return nil, "", fmt.Errorf("unsupported redis url scheme %q", scheme)
}

// redact hides the password of a Redis URL for logging.
func redact(redisURL string) string {
	u, err := url.Parse(redisURL)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}

// ping checks a new client before it is used.
var ping = func(ctx context.Context, c redis.UniversalClient) error {
	return c.Ping(ctx).Err()
}
