package apiclient

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// responseCache holds raw GET response bodies for a short TTL.
// Any mutating request flushes it, so a refresh after a mutation always
// reaches the server.
type responseCache struct {
	c *cache.Cache
}

func newResponseCache(ttl time.Duration) *responseCache {
	if ttl <= 0 {
		return nil
	}
	return &responseCache{c: cache.New(ttl, 2*ttl)}
}

func cacheKey(url, token string) string {
	return url + "\x00" + token
}

func (r *responseCache) get(key string) ([]byte, bool) {
	if r == nil {
		return nil, false
	}
	if v, found := r.c.Get(key); found {
		return v.([]byte), true
	}
	return nil, false
}

func (r *responseCache) set(key string, body []byte) {
	if r == nil {
		return
	}
	r.c.SetDefault(key, body)
}

func (r *responseCache) flush() {
	if r == nil {
		return
	}
	r.c.Flush()
}

func (r *responseCache) len() int {
	if r == nil {
		return 0
	}
	return r.c.ItemCount()
}
