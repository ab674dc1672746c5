package cache

import "time"

// BytesCache stores opaque byte payloads with a TTL. The market-data client
// keeps serialized bar series behind this so the in-process and Redis
// variants are interchangeable.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
