package redis

import "strings"

// Keyspace names every redis key the admin services write. Parts are joined
// with ":" under the namespace and empty parts are dropped.
type Keyspace string

// DefaultKeyspace prefixes all production keys.
const DefaultKeyspace Keyspace = "gogo-admin"

func (k Keyspace) key(parts ...string) string {
	out := []string{string(k)}
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, ":")
}

// IdempotencyKey holds the stored response of one Idempotency-Key.
func (k Keyspace) IdempotencyKey(scope, id string) string {
	return k.key("idem", scope, id)
}

// LoginLimitKey holds the hit counter of one login throttling scope.
func (k Keyspace) LoginLimitKey(scope string) string {
	return k.key("login-limit", scope)
}

// AccessSessionKey holds the refresh session bound to an access token id.
func (k Keyspace) AccessSessionKey(accessID string) string {
	return k.key("admin-session", accessID)
}

// ProductSyncLockKey guards billing sync of one product.
func (k Keyspace) ProductSyncLockKey(productID string) string {
	return k.key("lock", "product-sync", productID)
}

// CronLockKey guards one cron job across replicas.
func (k Keyspace) CronLockKey(job string) string {
	return k.key("lock", "cron", job)
}
