package utils

import (
	"context"
	"time"

	"github.com/mojocn/base64Captcha"
)

// redisCaptchaStore implements base64Captcha.Store backed by Redis so captcha
// state survives behind load balancers. Every operation falls back to the
// in-process memory store when Redis is unreachable.
type redisCaptchaStore struct {
	ttl      time.Duration
	fallback base64Captcha.Store
}

// NewRedisCaptchaStore builds the Redis-first captcha store.
func NewRedisCaptchaStore(ttl time.Duration) base64Captcha.Store {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisCaptchaStore{ttl: ttl, fallback: base64Captcha.DefaultMemStore}
}

func (s *redisCaptchaStore) key(id string) string {
	return "captcha:" + id
}

// Set stores the captcha answer with TTL.
func (s *redisCaptchaStore) Set(id string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := GetRedis().Set(ctx, s.key(id), value, s.ttl).Err(); err != nil {
		return s.fallback.Set(id, value)
	}
	return nil
}

// Get retrieves the answer and optionally clears it.
func (s *redisCaptchaStore) Get(id string, clear bool) string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rc := GetRedis()
	key := s.key(id)

	if clear {
		if v, err := rc.GetDel(ctx, key).Result(); err == nil {
			return v
		}
		// GETDEL needs Redis >= 6.2; fall back to atomic GET+DEL
		script := `local v=redis.call('GET', KEYS[1]); if v then redis.call('DEL', KEYS[1]); end; return v`
		if res, err := rc.Eval(ctx, script, []string{key}).Result(); err == nil {
			if str, ok := res.(string); ok {
				return str
			}
			return ""
		}
		return s.fallback.Get(id, clear)
	}

	v, err := rc.Get(ctx, key).Result()
	if err != nil {
		return s.fallback.Get(id, clear)
	}
	return v
}

// Verify compares the answer and optionally clears it.
func (s *redisCaptchaStore) Verify(id, answer string, clear bool) bool {
	v := s.Get(id, clear)
	return v != "" && v == answer
}
