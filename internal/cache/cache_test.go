package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *DiskCache {
	t.Helper()
	return New(t.TempDir())
}

func TestKey_Deterministic(t *testing.T) {
	url := "https://api.example.com/complaints?make=HONDA&model=CIVIC&modelYear=2016"
	assert.Equal(t, Key(url), Key(url))
	assert.Len(t, Key(url), 64) // hex sha-256
}

func TestKey_CanonicalizesParameterOrder(t *testing.T) {
	a := "https://api.example.com/complaints?make=HONDA&model=CIVIC&modelYear=2016"
	b := "https://api.example.com/complaints?modelYear=2016&make=HONDA&model=CIVIC"
	assert.Equal(t, Key(a), Key(b))
}

func TestKey_DistinctRequestsDiffer(t *testing.T) {
	a := "https://api.example.com/complaints?make=HONDA"
	b := "https://api.example.com/complaints?make=TOYOTA"
	assert.NotEqual(t, Key(a), Key(b))
}

func TestCanonicalURL_NonURLInputUnchanged(t *testing.T) {
	assert.Equal(t, "not a url", CanonicalURL("not a url"))
}

func TestGetPut_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	key := Key("https://api.example.com/recalls?make=HONDA")
	payload := json.RawMessage(`{"results":[{"Component":"BRAKES"}]}`)

	require.NoError(t, c.Put(key, payload))

	got, ok := c.Get(key, 0)
	require.True(t, ok)
	assert.JSONEq(t, string(payload), string(got))
}

func TestGet_MissingKey(t *testing.T) {
	c := newTestCache(t)
	_, ok := c.Get(Key("https://api.example.com/never-stored"), 0)
	assert.False(t, ok)
}

func TestGet_CorruptEntryIsMiss(t *testing.T) {
	c := newTestCache(t)
	key := Key("https://api.example.com/recalls")
	require.NoError(t, c.Put(key, json.RawMessage(`{"ok":true}`)))

	// Truncate the file to simulate a partial write.
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), key+".json"), []byte(`{"fetched_at": 17`), 0o644))

	_, ok := c.Get(key, 0)
	assert.False(t, ok)
}

func TestGet_ExpiredEntryIsMiss(t *testing.T) {
	c := newTestCache(t)
	key := Key("https://api.example.com/recalls")
	require.NoError(t, c.Put(key, json.RawMessage(`{"ok":true}`)))

	// Freshly written: visible under a short TTL.
	_, ok := c.Get(key, time.Hour)
	require.True(t, ok)

	// Move the clock forward past the TTL.
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, ok = c.Get(key, time.Hour)
	assert.False(t, ok)

	// A non-positive TTL disables expiry.
	_, ok = c.Get(key, 0)
	assert.True(t, ok)
}

func TestPut_OverwriteSameKey(t *testing.T) {
	c := newTestCache(t)
	key := Key("https://api.example.com/recalls")
	require.NoError(t, c.Put(key, json.RawMessage(`{"v":1}`)))
	require.NoError(t, c.Put(key, json.RawMessage(`{"v":2}`)))

	got, ok := c.Get(key, 0)
	require.True(t, ok)
	assert.JSONEq(t, `{"v":2}`, string(got))
	assert.Equal(t, 1, c.Len())
}

func TestPut_ConcurrentDistinctKeys(t *testing.T) {
	c := newTestCache(t)
	urls := []string{
		"https://api.example.com/a",
		"https://api.example.com/b",
		"https://api.example.com/c",
		"https://api.example.com/d",
	}

	done := make(chan error, len(urls))
	for _, u := range urls {
		go func(u string) {
			done <- c.Put(Key(u), json.RawMessage(`{"url":"`+u+`"}`))
		}(u)
	}
	for range urls {
		require.NoError(t, <-done)
	}

	for _, u := range urls {
		got, ok := c.Get(Key(u), 0)
		require.True(t, ok, "missing entry for %s", u)
		assert.JSONEq(t, `{"url":"`+u+`"}`, string(got))
	}
}

func TestClear_RemovesAllEntries(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Put(Key("https://api.example.com/a"), json.RawMessage(`1`)))
	require.NoError(t, c.Put(Key("https://api.example.com/b"), json.RawMessage(`2`)))
	require.Equal(t, 2, c.Len())

	require.NoError(t, c.Clear())
	assert.Equal(t, 0, c.Len())
}

func TestNew_EnvFallback(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvCacheDir, dir)
	c := New("")
	assert.Equal(t, dir, c.Dir())
}
