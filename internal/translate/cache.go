package translate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"
	"time"
)

// CacheEntry is one cached translation
type CacheEntry struct {
	Hash        string    `json:"hash"`
	Original    string    `json:"original"`
	Translation string    `json:"translation"`
	CreatedAt   time.Time `json:"created_at"`
}

// cacheFile is the on-disk cache format
type cacheFile struct {
	Version string       `json:"version"`
	Entries []CacheEntry `json:"entries"`
}

// Cache is a persistent translation cache keyed by a hash of the language
// pair and source text. An empty path disables persistence.
type Cache struct {
	path    string
	entries map[string]CacheEntry
	mu      sync.RWMutex
}

// NewCache creates a Cache backed by the given file path
func NewCache(path string) *Cache {
	return &Cache{
		path:    path,
		entries: make(map[string]CacheEntry),
	}
}

// Key hashes the language pair and source text. Different language pairs
// never collide on the same source text.
func Key(sourceLang, targetLang, text string) string {
	h := sha256.Sum256([]byte(sourceLang + "|" + targetLang + "|" + text))
	return hex.EncodeToString(h[:])
}

// Get returns the cached translation for the given key
func (c *Cache) Get(sourceLang, targetLang, text string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[Key(sourceLang, targetLang, text)]
	if !ok {
		return "", false
	}
	return entry.Translation, true
}

// Set stores a translation
func (c *Cache) Set(sourceLang, targetLang, text, translation string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(sourceLang, targetLang, text)
	c.entries[key] = CacheEntry{
		Hash:        key,
		Original:    text,
		Translation: translation,
		CreatedAt:   time.Now(),
	}
}

// Size returns the number of cached entries
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Load reads the cache file. A missing file leaves the cache empty.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.path == "" {
		return nil
	}
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return NewCacheError("failed to read cache file", err)
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return NewCacheError("failed to parse cache file", err)
	}

	c.entries = make(map[string]CacheEntry, len(cf.Entries))
	for _, entry := range cf.Entries {
		c.entries[entry.Hash] = entry
	}
	return nil
}

// Save writes the cache file
func (c *Cache) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.path == "" {
		return nil
	}

	entries := make([]CacheEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}

	data, err := json.MarshalIndent(cacheFile{Version: "1.0", Entries: entries}, "", "  ")
	if err != nil {
		return NewCacheError("failed to marshal cache", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return NewCacheError("failed to write cache file", err)
	}
	return nil
}
