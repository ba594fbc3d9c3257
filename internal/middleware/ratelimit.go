package middleware

import (
	"context"
	"hash/fnv"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sysocial/sysocial-backend/internal/config"
	"github.com/sysocial/sysocial-backend/internal/response"
)

// Limiter decides whether the client identified by key may make another
// request. retryAfter is meaningful only when allowed is false.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

const limiterShards = 32

// SlidingWindowLimiter keeps a log of request times per client and allows at
// most limit requests in any window-long interval. State is striped over
// mutex-guarded shards so unrelated clients rarely contend.
type SlidingWindowLimiter struct {
	limit  int
	window time.Duration
	shards [limiterShards]limiterShard
	now    func() time.Time
}

type limiterShard struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

// NewSlidingWindowLimiter creates a limiter allowing limit requests per window.
func NewSlidingWindowLimiter(limit int, window time.Duration) *SlidingWindowLimiter {
	l := &SlidingWindowLimiter{limit: limit, window: window, now: time.Now}
	for i := range l.shards {
		l.shards[i].hits = make(map[string][]time.Time)
	}
	return l
}

func (l *SlidingWindowLimiter) shard(key string) *limiterShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &l.shards[h.Sum32()%limiterShards]
}

// Allow records the request when it fits in the window.
func (l *SlidingWindowLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := l.now()
	s := l.shard(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	hits := prune(s.hits[key], now.Add(-l.window))
	if len(hits) >= l.limit {
		s.hits[key] = hits
		return false, hits[0].Add(l.window).Sub(now), nil
	}
	s.hits[key] = append(hits, now)
	return true, 0, nil
}

// prune drops timestamps at or before cutoff. hits is ordered oldest first.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// Sweep forgets clients with no request inside the window.
func (l *SlidingWindowLimiter) Sweep() {
	cutoff := l.now().Add(-l.window)
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		for key, hits := range s.hits {
			if len(prune(hits, cutoff)) == 0 {
				delete(s.hits, key)
			}
		}
		s.mu.Unlock()
	}
}

// Run sweeps stale clients every window until ctx is done.
func (l *SlidingWindowLimiter) Run(ctx context.Context) {
	if l.window <= 0 {
		return
	}
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// RedisLimiter counts requests per client in fixed windows shared by every
// gateway replica. Redis errors fall back to the in-memory limiter.
type RedisLimiter struct {
	rdb      *redis.Client
	limit    int
	window   time.Duration
	fallback Limiter
	log      zerolog.Logger
	now      func() time.Time
}

// NewRedisLimiter creates a RedisLimiter.
func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration, fallback Limiter, log zerolog.Logger) *RedisLimiter {
	return &RedisLimiter{
		rdb:      rdb,
		limit:    limit,
		window:   window,
		fallback: fallback,
		log:      log.With().Str("component", "rate_limiter").Logger(),
		now:      time.Now,
	}
}

// Allow increments the client's counter for the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := l.now()
	rk := config.CacheKey.RateLimitKey(key, l.window, now)

	ctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, rk)
		pipe.Expire(ctx, rk, l.window+time.Second)
		return nil
	})
	if err != nil {
		l.log.Warn().Err(err).Msg("Redis unavailable, using in-memory limiter")
		return l.fallback.Allow(ctx, key)
	}

	if int(incr.Val()) > l.limit {
		secs := int64(l.window / time.Second)
		if secs < 1 {
			secs = 1
		}
		return false, time.Duration(secs-now.Unix()%secs) * time.Second, nil
	}
	return true, 0, nil
}

// RateLimit rejects clients over their limit with 429 and Retry-After.
// Limiter errors let the request through.
func RateLimit(l Limiter, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "rate_limiter").Logger()

	return func(c *gin.Context) {
		allowed, retryAfter, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Error().Err(err).Msg("Rate limiter failed")
			c.Next()
			return
		}
		if !allowed {
			secs := int(retryAfter.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}
