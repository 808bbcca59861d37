package cache

import (
	"strconv"
	"sync"
	"time"

	"github.com/coocood/freecache"
)

// Store is the ephemeral key-value collaborator used by the calendar
// consensus flow: per-key expiry, atomic increment, existence checks.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	// Increment adds one to the counter at key and returns the new value.
	// A missing or expired key starts from zero; ttl applies the sliding
	// expiry for the updated entry.
	Increment(key string, ttl time.Duration) (int64, error)
	Exists(key string) bool
	// TTL reports the remaining lifetime of key, or false if absent.
	TTL(key string) (time.Duration, bool)
}

type freecacheStore struct {
	cache *freecache.Cache

	// freecache has no native counter op; the mutex makes the
	// read-modify-write in Increment atomic within this process.
	mu sync.Mutex
}

// minSizeMB keeps the cache large enough for the serialized contest
// calendar: freecache caps a single entry at 1/1024 of the cache size,
// and the canonical entry runs to several kilobytes.
const minSizeMB = 16

// New builds a Store with the given capacity in megabytes. Sizes below
// minSizeMB are raised to it.
func New(sizeMB int) Store {
	if sizeMB < minSizeMB {
		sizeMB = minSizeMB
	}
	return &freecacheStore{cache: freecache.NewCache(sizeMB * 1024 * 1024)}
}

func (s *freecacheStore) Get(key string) ([]byte, bool) {
	val, err := s.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (s *freecacheStore) Set(key string, value []byte, ttl time.Duration) error {
	return s.cache.Set([]byte(key), value, ttlSeconds(ttl))
}

func (s *freecacheStore) Increment(key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	if val, err := s.cache.Get([]byte(key)); err == nil {
		count, _ = strconv.ParseInt(string(val), 10, 64)
	}
	count++

	if err := s.cache.Set([]byte(key), []byte(strconv.FormatInt(count, 10)), ttlSeconds(ttl)); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *freecacheStore) Exists(key string) bool {
	_, err := s.cache.Get([]byte(key))
	return err == nil
}

func (s *freecacheStore) TTL(key string) (time.Duration, bool) {
	ttl, err := s.cache.TTL([]byte(key))
	if err != nil {
		return 0, false
	}
	return time.Duration(ttl) * time.Second, true
}

func ttlSeconds(ttl time.Duration) int {
	if ttl <= 0 {
		return 0 // no expiry
	}
	secs := int(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
