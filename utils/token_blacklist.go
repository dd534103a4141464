package utils

import (
	"context"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

const blacklistPrefix = "jwt:blacklist:"

// revoked holds logged out tokens when Redis is disabled.
var revoked = cmap.New[time.Time]()

// BlacklistToken revokes a token until its natural expiry.
func BlacklistToken(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := rc.Set(ctx, blacklistPrefix+token, "1", ttl).Err()
		if err == nil {
			return
		}
		Sugar.Warnf("redis blacklist failed, keeping token in memory: %v", err)
	}
	revoked.Set(token, expiresAt)
}

// IsTokenBlacklisted reports whether a token was revoked before expiring.
func IsTokenBlacklisted(token string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if n, err := rc.Exists(ctx, blacklistPrefix+token).Result(); err == nil && n > 0 {
			return true
		}
	}
	expiresAt, ok := revoked.Get(token)
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		revoked.Remove(token)
		return false
	}
	return true
}
