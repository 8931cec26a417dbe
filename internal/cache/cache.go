package cache

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const indexFile = ".cache_index.json"

// Cache keeps downloaded images on disk, evicting least recently used
// entries once the total size exceeds the limit
type Cache struct {
	fs      afero.Fs
	dir     string
	maxSize int64
	index   map[string]*Entry
	mutex   sync.RWMutex
}

// Entry describes one cached file
type Entry struct {
	Key        string
	FilePath   string
	Size       int64
	AccessTime time.Time
	CreateTime time.Time
	Checksum   string
}

// Stats summarizes cache usage
type Stats struct {
	TotalFiles   int
	TotalSize    int64
	MaxSize      int64
	UsagePercent float64
}

// String renders the stats for humans
func (s Stats) String() string {
	return fmt.Sprintf("%d files, %s of %s (%.1f%%)",
		s.TotalFiles, humanize.IBytes(uint64(s.TotalSize)), humanize.IBytes(uint64(s.MaxSize)), s.UsagePercent)
}

type index struct {
	Entries     map[string]*Entry
	TotalSize   int64
	LastCleanup time.Time
}

// New opens the cache rooted at dir on fs, loading any existing index.
// A nil fs uses the OS filesystem.
func New(fs afero.Fs, dir string, maxSize int64) (*Cache, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, &CacheError{Operation: "init", Path: dir, Err: err}
	}

	c := &Cache{
		fs:      fs,
		dir:     dir,
		maxSize: maxSize,
		index:   make(map[string]*Entry),
	}

	if err := c.loadIndex(); err != nil {
		logrus.WithError(err).WithField("dir", dir).Warn("discarding unreadable cache index")
		c.index = make(map[string]*Entry)
	}

	return c, nil
}

// Get returns the local path for key
func (c *Cache) Get(key string) (string, bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.index[key]
	if !exists {
		return "", false, nil
	}

	if _, err := c.fs.Stat(entry.FilePath); os.IsNotExist(err) {
		delete(c.index, key)
		return "", false, nil
	}

	entry.AccessTime = time.Now()
	return entry.FilePath, true, nil
}

// Open returns a reader over the cached content of key
func (c *Cache) Open(key string) (io.ReadCloser, bool, error) {
	path, hit, err := c.Get(key)
	if err != nil || !hit {
		return nil, hit, err
	}
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, false, &CacheError{Operation: "open", Path: path, Err: err}
	}
	return f, true, nil
}

// Put stores the content of r under key and returns its local path
func (c *Cache) Put(key string, r io.Reader) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	hash := md5.Sum([]byte(key))
	cachePath := filepath.Join(c.dir, fmt.Sprintf("%x%s", hash, filepath.Ext(key)))

	cacheFile, err := c.fs.Create(cachePath)
	if err != nil {
		return "", &CacheError{Operation: "put", Path: cachePath, Err: err}
	}

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(cacheFile, hasher), r)
	closeErr := cacheFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		c.fs.Remove(cachePath)
		return "", &CacheError{Operation: "put", Path: cachePath, Err: err}
	}

	now := time.Now()
	c.index[key] = &Entry{
		Key:        key,
		FilePath:   cachePath,
		Size:       size,
		AccessTime: now,
		CreateTime: now,
		Checksum:   fmt.Sprintf("%x", hasher.Sum(nil)),
	}

	if total := c.totalSize(); total > c.maxSize {
		c.evict(total - c.maxSize)
	}

	if err := c.saveIndex(); err != nil {
		logrus.WithError(err).Warn("failed to save cache index")
	}

	logrus.WithFields(logrus.Fields{
		"key":  key,
		"size": humanize.IBytes(uint64(size)),
	}).Debug("cached")

	return cachePath, nil
}

// Delete removes key from the cache
func (c *Cache) Delete(key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.index[key]
	if !exists {
		return nil
	}

	delete(c.index, key)
	if err := c.fs.Remove(entry.FilePath); err != nil && !os.IsNotExist(err) {
		return &CacheError{Operation: "delete", Path: entry.FilePath, Err: err}
	}
	return c.saveIndex()
}

// Keys returns the cached keys in sorted order
func (c *Cache) Keys() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	keys := make([]string, 0, len(c.index))
	for key := range c.index {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Size returns the total size of cached files
func (c *Cache) Size() int64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.totalSize()
}

// Cleanup evicts entries until the cache fits its limit
func (c *Cache) Cleanup() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	total := c.totalSize()
	if total <= c.maxSize {
		return nil
	}
	c.evict(total - c.maxSize)
	return c.saveIndex()
}

// Verify reports whether the cached content of key still matches its checksum
func (c *Cache) Verify(key string) (bool, error) {
	c.mutex.RLock()
	entry, exists := c.index[key]
	c.mutex.RUnlock()

	if !exists {
		return false, fmt.Errorf("cache entry not found for key: %s", key)
	}

	file, err := c.fs.Open(entry.FilePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return false, err
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)) == entry.Checksum, nil
}

// Stats returns current usage
func (c *Cache) Stats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	total := c.totalSize()
	stats := Stats{
		TotalFiles: len(c.index),
		TotalSize:  total,
		MaxSize:    c.maxSize,
	}
	if c.maxSize > 0 {
		stats.UsagePercent = float64(total) / float64(c.maxSize) * 100
	}
	return stats
}

// evict removes least recently used entries until at least need bytes are freed
func (c *Cache) evict(need int64) {
	entries := make([]*Entry, 0, len(c.index))
	for _, entry := range c.index {
		entries = append(entries, entry)
	}

	// Oldest access first
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AccessTime.Before(entries[j].AccessTime)
	})

	var freed int64
	for _, entry := range entries {
		if freed >= need {
			break
		}
		if err := c.fs.Remove(entry.FilePath); err == nil || os.IsNotExist(err) {
			freed += entry.Size
			delete(c.index, entry.Key)
		}
	}

	logrus.WithFields(logrus.Fields{
		"freed":   humanize.IBytes(uint64(freed)),
		"entries": len(c.index),
	}).Debug("cache evicted")
}

func (c *Cache) totalSize() int64 {
	var total int64
	for _, entry := range c.index {
		total += entry.Size
	}
	return total
}

func (c *Cache) saveIndex() error {
	data, err := json.MarshalIndent(&index{
		Entries:     c.index,
		TotalSize:   c.totalSize(),
		LastCleanup: time.Now(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(c.fs, filepath.Join(c.dir, indexFile), data, 0644)
}

func (c *Cache) loadIndex() error {
	data, err := afero.ReadFile(c.fs, filepath.Join(c.dir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		return err
	}

	if idx.Entries != nil {
		c.index = idx.Entries
	}

	// Drop entries whose files are gone
	for key, entry := range c.index {
		if _, err := c.fs.Stat(entry.FilePath); err != nil {
			delete(c.index, key)
		}
	}
	return nil
}
