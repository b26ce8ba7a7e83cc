// File: /services/submission_guard.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"convoy-api/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSubmissionInFlight = errors.New("a registration for this email and event is already being submitted")

// SubmissionGuard stops the same registration from being submitted twice
// while the first attempt is still running.
type SubmissionGuard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// SubmissionKey identifies a registration attempt by registrant and event.
func SubmissionKey(email, eventID string) string {
	return strings.ToLower(strings.TrimSpace(email)) + ":" + eventID
}

const submissionKeyPrefix = "cfc:submission:"

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisSubmissionGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSubmissionGuard holds each lock for at most ttl so a crashed
// request cannot block a registrant forever.
func NewRedisSubmissionGuard(client *redis.Client, ttl time.Duration) *RedisSubmissionGuard {
	return &RedisSubmissionGuard{client: client, ttl: ttl}
}

func (g *RedisSubmissionGuard) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := submissionKeyPrefix + key
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, redisKey, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire submission lock: %w", err)
	}
	if !ok {
		return nil, ErrSubmissionInFlight
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, g.client, []string{redisKey}, token).Err(); err != nil {
			utils.Logger.Warn("failed to release submission lock", "key", redisKey, "error", err)
		}
	}
	return release, nil
}

// MemorySubmissionGuard is the single-process fallback when Redis is not configured.
type MemorySubmissionGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewMemorySubmissionGuard() *MemorySubmissionGuard {
	return &MemorySubmissionGuard{inFlight: make(map[string]struct{})}
}

func (g *MemorySubmissionGuard) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[key]; busy {
		return nil, ErrSubmissionInFlight
	}
	g.inFlight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, key)
			g.mu.Unlock()
		})
	}, nil
}
