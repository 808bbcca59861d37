package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	s := New(1)

	require.NoError(t, s.Set("key", []byte("value"), time.Minute))

	val, ok := s.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), val)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestIncrement(t *testing.T) {
	s := New(1)

	for want := int64(1); want <= 5; want++ {
		got, err := s.Increment("counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestIncrementStartsFromZeroAfterExpiry(t *testing.T) {
	s := New(1)

	_, err := s.Increment("counter", time.Second)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	got, err := s.Increment("counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestSmallSizesStillHoldLargeEntries(t *testing.T) {
	s := New(1) // raised to the minimum internally

	// Roughly the size of a serialized full-year calendar; freecache
	// rejects entries above 1/1024 of the cache size, so an undersized
	// cache would refuse this write.
	large := make([]byte, 8*1024)
	require.NoError(t, s.Set("calendar", large, time.Minute))

	val, ok := s.Get("calendar")
	require.True(t, ok)
	assert.Len(t, val, 8*1024)
}

func TestExists(t *testing.T) {
	s := New(1)

	assert.False(t, s.Exists("key"))
	require.NoError(t, s.Set("key", []byte("1"), time.Minute))
	assert.True(t, s.Exists("key"))
}

func TestTTL(t *testing.T) {
	s := New(1)

	require.NoError(t, s.Set("key", []byte("1"), time.Hour))

	ttl, ok := s.TTL("key")
	require.True(t, ok)
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 2)

	_, ok = s.TTL("missing")
	assert.False(t, ok)
}
