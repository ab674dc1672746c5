package cache

import "fmt"

// GenerateKey joins a prefix and id into a cache key.
func GenerateKey(prefix string, id string) string {
	return prefix + ":" + id
}

// GenerateKeyWithParams builds a cache key from a prefix and parameters,
// e.g. alert:cooldown:STOP_REVISED:AAPL.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key = fmt.Sprintf("%s:%v", key, param)
	}
	return key
}
