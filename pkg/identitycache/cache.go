// Package identitycache implements a fixed-width, open-addressed TTL
// cache mapping a numeric id (uid or gid) to its resolved name. Each
// bucket holds exactly one entry; a colliding insert evicts whatever was
// there before. There is no chaining.
package identitycache

import (
	"sync"
	"time"
)

// Result is the outcome of a Get call.
type Result int

const (
	// OK means the bucket held key and it has not expired.
	OK Result = iota
	// NotFound means the bucket's occupant key does not match.
	NotFound
	// Expired means the bucket's occupant key matches but its entry aged out.
	Expired
)

func (r Result) String() string {
	switch r {
	case OK:
		return "OK"
	case NotFound:
		return "NOT_FOUND"
	case Expired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

type bucket struct {
	key    uint64
	value  string
	expiry time.Time
	used   bool
}

// Cache is a fixed-size, single-slot-per-bucket TTL table. The zero value
// is not usable; construct with New.
type Cache struct {
	mu      sync.RWMutex
	buckets []bucket
	ttl     time.Duration
}

// New returns a Cache with size buckets, each entry valid for ttl after
// it is Set. size must be positive.
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 1
	}
	return &Cache{
		buckets: make([]bucket, size),
		ttl:     ttl,
	}
}

// hash is a reversible integer mix function (splitmix-style), chosen so
// that the slot a key lands on is well distributed across the table.
func hash(x uint64) uint64 {
	x = ((x >> 16) ^ x) * 0x45d9f3b
	x = ((x >> 16) ^ x) * 0x45d9f3b
	x = (x >> 16) ^ x
	return x
}

func (c *Cache) slot(key uint64) int {
	return int(hash(key) % uint64(len(c.buckets)))
}

// Get looks up key. On OK, value holds the cached name.
func (c *Cache) Get(key uint64) (value string, result Result) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b := &c.buckets[c.slot(key)]
	if !b.used || b.key != key {
		return "", NotFound
	}
	if time.Now().After(b.expiry) {
		return "", Expired
	}
	return b.value, OK
}

// Set stores value under key, evicting whatever previously occupied the
// same bucket. Set always succeeds.
func (c *Cache) Set(key uint64, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := &c.buckets[c.slot(key)]
	b.key = key
	b.value = value
	b.used = true
	b.expiry = time.Now().Add(c.ttl)
}
