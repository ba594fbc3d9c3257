package config

import (
	"fmt"
	"time"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RateLimitKey returns the counter key for a client within the fixed window
// that contains now.
func (r *CacheKeyStruct) RateLimitKey(client string, window time.Duration, now time.Time) string {
	secs := int64(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("rl:ip:%s:%d", client, now.Unix()/secs)
}

var CacheKey = NewCacheKeyStruct()
