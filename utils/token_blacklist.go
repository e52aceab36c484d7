package utils

import (
	"context"
	"sync"
	"time"
)

const blacklistKeyPrefix = "jwt:blacklist:"

var (
	blacklistMu  sync.RWMutex
	blacklistMem = map[string]time.Time{}
)

// BlacklistToken revokes a token until its natural expiry. Redis is the
// shared store; when a command fails the token is kept in process memory so
// logout still takes effect on this instance.
func BlacklistToken(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}

	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if rc.Set(ctx, blacklistKeyPrefix+token, "1", ttl).Err() == nil {
			return
		}
	}

	blacklistMu.Lock()
	blacklistMem[token] = expiresAt
	blacklistMu.Unlock()
}

// IsTokenBlacklisted reports whether a token was revoked before expiry.
// A Redis error counts as not blacklisted, so an outage cannot lock every
// user out; the in-memory fallback still catches local logouts.
func IsTokenBlacklisted(token string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if n, err := rc.Exists(ctx, blacklistKeyPrefix+token).Result(); err == nil && n > 0 {
			return true
		}
	}

	blacklistMu.RLock()
	expiresAt, ok := blacklistMem[token]
	blacklistMu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		blacklistMu.Lock()
		delete(blacklistMem, token)
		blacklistMu.Unlock()
		return false
	}
	return true
}
