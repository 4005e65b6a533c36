package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/redis/go-redis/v9"

	"dialect-runner-server/models"
)

const (
	OutcomeKeyPrefix = "outcome:"
	DefaultCacheTTL  = 10 * time.Minute
)

// CacheService stores normalized execution outcomes in Redis, keyed by a
// digest of the source text.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(host string, port int, ttl time.Duration) *CacheService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", host, port),
	})
	return &CacheService{client: client, ttl: ttl}
}

func outcomeKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return OutcomeKeyPrefix + hex.EncodeToString(sum[:])
}

// GetOutcome returns the cached outcome for a source text, or nil on a miss.
func (c *CacheService) GetOutcome(ctx context.Context, source string) (*models.Outcome, error) {
	var outcome *models.Outcome
	var finalErr error

	xray.Capture(ctx, "Redis.Get", func(ctx1 context.Context) error {
		key := outcomeKey(source)
		jsonData, err := c.client.Get(ctx, key).Result()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			finalErr = err
			return err
		}

		var o models.Outcome
		if err := json.Unmarshal([]byte(jsonData), &o); err != nil {
			finalErr = err
			return err
		}
		outcome = &o

		// Add metadata to subsegment
		if seg := xray.GetSegment(ctx1); seg != nil {
			seg.AddMetadata("redis.key", key)
			seg.AddMetadata("redis.operation", "GET")
		}

		return nil
	})

	return outcome, finalErr
}

// SetOutcome caches an outcome for a source text with the configured TTL.
func (c *CacheService) SetOutcome(ctx context.Context, source string, outcome models.Outcome) error {
	var finalErr error

	xray.Capture(ctx, "Redis.Set", func(ctx1 context.Context) error {
		jsonData, err := json.Marshal(outcome)
		if err != nil {
			finalErr = err
			return err
		}

		key := outcomeKey(source)
		finalErr = c.client.Set(ctx, key, jsonData, c.ttl).Err()

		// Add metadata to subsegment
		if seg := xray.GetSegment(ctx1); seg != nil {
			seg.AddMetadata("redis.key", key)
			seg.AddMetadata("redis.operation", "SET")
		}

		return finalErr
	})

	return finalErr
}

// Ping checks the Redis connection.
func (c *CacheService) Ping(ctx context.Context) error {
	var err error
	xray.Capture(ctx, "Redis.Ping", func(ctx1 context.Context) error {
		err = c.client.Ping(ctx).Err()

		if seg := xray.GetSegment(ctx1); seg != nil {
			seg.AddMetadata("redis.operation", "PING")
		}

		return err
	})
	return err
}
