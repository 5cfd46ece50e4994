// Package cache implements a content-addressable JSON cache on the local
// filesystem. Keys are a digest of the canonical request URL, so logically
// identical requests always resolve to the same entry, and one file is written
// per key.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// EnvCacheDir names the environment variable that overrides the cache
// directory location.
const EnvCacheDir = "DEFECTWATCH_CACHE_DIR"

// DefaultDir is the cache directory used when EnvCacheDir is unset.
const DefaultDir = ".defectwatch-cache"

// entry is the on-disk envelope around a cached payload.
type entry struct {
	FetchedAt int64           `json:"fetched_at"` // unix seconds
	Data      json.RawMessage `json:"data"`
}

// DiskCache stores JSON payloads keyed by request identity, one file per key.
// A zero TTL on Get means "never expires". Corrupt or partially written
// entries behave as misses so a bad file can never break a caller.
type DiskCache struct {
	dir string
	now func() time.Time
}

// New returns a cache rooted at dir. When dir is empty the EnvCacheDir
// environment variable is consulted, falling back to DefaultDir. The directory
// is created lazily on first write.
func New(dir string) *DiskCache {
	if dir == "" {
		dir = os.Getenv(EnvCacheDir)
	}
	if dir == "" {
		dir = DefaultDir
	}
	return &DiskCache{dir: dir, now: time.Now}
}

// Dir returns the cache root directory.
func (c *DiskCache) Dir() string { return c.dir }

// Key derives the content-addressable key for a request identifier. The URL's
// query parameters are sorted by name before hashing so that logically
// identical requests hash identically regardless of parameter order.
func Key(requestID string) string {
	sum := sha256.Sum256([]byte(CanonicalURL(requestID)))
	return hex.EncodeToString(sum[:])
}

// CanonicalURL rewrites a URL with its query parameters in sorted order.
// Inputs that do not parse as URLs are returned unchanged.
func CanonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	q := u.Query()
	if len(q) == 0 {
		return u.String()
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		vals := q[k]
		sort.Strings(vals)
		for _, v := range vals {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(k))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(v))
		}
	}
	u.RawQuery = sb.String()
	return u.String()
}

// Get returns the cached payload for key if present and fresh. A ttl <= 0
// disables expiry. Unreadable or malformed entries are reported as misses.
func (c *DiskCache) Get(key string, ttl time.Duration) (json.RawMessage, bool) {
	raw, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || e.Data == nil {
		return nil, false
	}
	if ttl > 0 {
		age := c.now().Sub(time.Unix(e.FetchedAt, 0))
		if age > ttl {
			return nil, false
		}
	}
	return e.Data, true
}

// Put durably stores payload under key. The entry is written to a temporary
// file and renamed into place so concurrent writers to distinct keys cannot
// cross-corrupt, and a reader never observes a partial entry under the final
// name.
func (c *DiskCache) Put(key string, payload json.RawMessage) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir %s: %w", c.dir, err)
	}
	raw, err := json.Marshal(entry{FetchedAt: c.now().Unix(), Data: payload})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create cache temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close cache temp file: %w", err)
	}
	if err := os.Rename(tmpName, c.pathFor(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to commit cache entry: %w", err)
	}
	return nil
}

// Len counts the entries currently on disk.
func (c *DiskCache) Len() int {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0
	}
	return len(matches)
}

// Clear removes every entry. Individual unlink failures are skipped so a
// clear never half-fails on a file held open elsewhere.
func (c *DiskCache) Clear() error {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		_ = os.Remove(m)
	}
	return nil
}

func (c *DiskCache) pathFor(key string) string {
	return filepath.Join(c.dir, key+".json")
}
