// Package redis provides Redis connectivity for Campus Core.
//
// Redis is optional: when enabled it backs the session store with native
// key expiry, which mirrors a document database's TTL index. When disabled
// the session store falls back to SQLite with a background reaper.
//
// Usage:
//
//	client, err := redis.Connect(cfg.Redis)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package redis
