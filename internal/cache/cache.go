package cache

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	entryExt = ".msgpack"
	// memEntries bounds the in-process front of the cache.
	memEntries = 256
)

// Entry is one cached model reply.
type Entry struct {
	Key       string    `msgpack:"key"`
	Response  string    `msgpack:"response"`
	CreatedAt time.Time `msgpack:"created_at"`
	TTL       int       `msgpack:"ttl"`
}

// Cache stores model replies on disk, one msgpack file per key, with a
// bounded in-memory LRU in front.
type Cache struct {
	dir        string
	ttlSeconds int
	enabled    bool
	mem        *lru.Cache[string, Entry]
	now        func() time.Time
}

// New creates a Cache. If dir is empty the default cache directory is used.
// A disabled cache never touches the filesystem.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false, now: time.Now}, nil
	}
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	mem, err := lru.New[string, Entry](memEntries)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}
	return &Cache{
		dir:        dir,
		ttlSeconds: ttlSeconds,
		enabled:    true,
		mem:        mem,
		now:        time.Now,
	}, nil
}

// Get returns the cached reply for key. Returns ("", false) on miss or when
// the entry has expired.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	hashed := HashKey(key)
	if e, ok := c.mem.Get(hashed); ok {
		if !c.expired(e) {
			return e.Response, true
		}
		c.mem.Remove(hashed)
	}

	path := c.entryPath(hashed)
	e, err := readEntry(path)
	if err != nil {
		return "", false
	}
	if c.expired(e) {
		_ = os.Remove(path)
		return "", false
	}
	c.mem.Add(hashed, e)
	return e.Response, true
}

// Put stores a reply. The file is written to a temporary name and renamed so
// concurrent readers never see a partial entry.
func (c *Cache) Put(key, response string) error {
	if !c.enabled {
		return nil
	}
	hashed := HashKey(key)
	e := Entry{
		Key:       hashed,
		Response:  response,
		CreatedAt: c.now(),
		TTL:       c.ttlSeconds,
	}
	data, err := msgpack.Marshal(&e)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, hashed+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.entryPath(hashed)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storing cache entry: %w", err)
	}
	c.mem.Add(hashed, e)
	return nil
}

// Clear removes all cache entries and returns how many were deleted.
func (c *Cache) Clear() (int, error) {
	if !c.enabled || c.dir == "" {
		return 0, nil
	}
	c.mem.Purge()
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	var removed int
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) != entryExt && !strings.HasSuffix(name, ".tmp") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, name)); err == nil && filepath.Ext(name) == entryExt {
			removed++
		}
	}
	return removed, nil
}

// Stats describes the on-disk cache.
type Stats struct {
	Dir        string `json:"dir" yaml:"dir"`
	Entries    int    `json:"entries" yaml:"entries"`
	TotalBytes int64  `json:"totalBytes" yaml:"totalBytes"`
	Expired    int    `json:"expired" yaml:"expired"`
}

// GetStats scans the cache directory.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	if !c.enabled || c.dir == "" {
		return stats, nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}
	for _, de := range entries {
		if filepath.Ext(de.Name()) != entryExt {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()

		e, err := readEntry(filepath.Join(c.dir, de.Name()))
		if err != nil {
			continue
		}
		if c.expired(e) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

// BuildCacheKey derives the key for one model call from its provider, model
// and rendered prompt.
func BuildCacheKey(provider, model, prompt string) string {
	return HashKey(fmt.Sprintf("%s:%s:%s", provider, model, prompt))
}

func (c *Cache) expired(e Entry) bool {
	return c.ttlSeconds > 0 && c.now().Sub(e.CreatedAt) > time.Duration(c.ttlSeconds)*time.Second
}

func (c *Cache) entryPath(hashed string) string {
	return filepath.Join(c.dir, hashed+entryExt)
}

func readEntry(path string) (Entry, error) {
	var e Entry
	data, err := os.ReadFile(path)
	if err != nil {
		return e, err
	}
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return e, err
	}
	return e, nil
}

// DefaultDir returns $XDG_CACHE_HOME/bugbench or the OS equivalent.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "bugbench"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "bugbench"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "bugbench", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "bugbench", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "bugbench"), nil
	}
}
