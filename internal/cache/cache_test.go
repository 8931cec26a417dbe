package cache

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, maxSize int64) (*Cache, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	c, err := New(fs, "/cache", maxSize)
	require.NoError(t, err)
	return c, fs
}

func TestNew(t *testing.T) {
	c, fs := newTestCache(t, 1024)

	assert.Equal(t, "/cache", c.dir)
	assert.Equal(t, int64(1024), c.maxSize)
	assert.NotNil(t, c.index)

	ok, err := afero.DirExists(fs, "/cache")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCache_PutAndGet(t *testing.T) {
	c, fs := newTestCache(t, 1024)

	path, err := c.Put("images/a.png", strings.NewReader("image content"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".png"))

	got, hit, err := c.Get("images/a.png")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, path, got)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "image content", string(data))
}

func TestCache_GetMissing(t *testing.T) {
	c, _ := newTestCache(t, 1024)

	path, hit, err := c.Get("missing")
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, path)
}

func TestCache_GetDropsVanishedFile(t *testing.T) {
	c, fs := newTestCache(t, 1024)

	path, err := c.Put("a.png", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, fs.Remove(path))

	_, hit, err := c.Get("a.png")
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NotContains(t, c.index, "a.png")
}

func TestCache_Open(t *testing.T) {
	c, _ := newTestCache(t, 1024)

	_, err := c.Put("a.png", strings.NewReader("pixels"))
	require.NoError(t, err)

	rc, hit, err := c.Open("a.png")
	require.NoError(t, err)
	require.True(t, hit)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	rc, hit, err = c.Open("b.png")
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, rc)
}

func TestCache_Delete(t *testing.T) {
	c, fs := newTestCache(t, 1024)

	path, err := c.Put("a.png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, c.Delete("a.png"))
	_, hit, _ := c.Get("a.png")
	assert.False(t, hit)

	exists, err := afero.Exists(fs, path)
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting twice is fine
	assert.NoError(t, c.Delete("a.png"))
}

func TestCache_Keys(t *testing.T) {
	c, _ := newTestCache(t, 1024)
	assert.Empty(t, c.Keys())

	for _, key := range []string{"b.png", "a.png", "c.png"} {
		_, err := c.Put(key, strings.NewReader(key))
		require.NoError(t, err)
	}
	require.NoError(t, c.Delete("c.png"))

	assert.Equal(t, []string{"a.png", "b.png"}, c.Keys())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(t, 10)

	_, err := c.Put("a.png", strings.NewReader("aaaa"))
	require.NoError(t, err)
	_, err = c.Put("b.png", strings.NewReader("bbbb"))
	require.NoError(t, err)

	now := time.Now()
	c.index["a.png"].AccessTime = now.Add(-time.Hour)
	c.index["b.png"].AccessTime = now.Add(-time.Minute)

	_, err = c.Put("c.png", strings.NewReader("cccc"))
	require.NoError(t, err)

	assert.NotContains(t, c.index, "a.png")
	assert.Contains(t, c.index, "b.png")
	assert.Contains(t, c.index, "c.png")
	assert.Equal(t, int64(8), c.Size())
}

func TestCache_Cleanup(t *testing.T) {
	c, _ := newTestCache(t, 100)

	_, err := c.Put("a.png", strings.NewReader("aaaa"))
	require.NoError(t, err)
	_, err = c.Put("b.png", strings.NewReader("bbbb"))
	require.NoError(t, err)
	c.index["a.png"].AccessTime = time.Now().Add(-time.Hour)

	require.NoError(t, c.Cleanup())
	assert.Equal(t, int64(8), c.Size(), "within limit, nothing evicted")

	c.maxSize = 5
	require.NoError(t, c.Cleanup())
	assert.Equal(t, int64(4), c.Size())
	assert.Contains(t, c.index, "b.png")
}

func TestCache_IndexPersists(t *testing.T) {
	c, fs := newTestCache(t, 1024)

	_, err := c.Put("a.png", strings.NewReader("persisted"))
	require.NoError(t, err)

	reopened, err := New(fs, "/cache", 1024)
	require.NoError(t, err)

	rc, hit, err := reopened.Open("a.png")
	require.NoError(t, err)
	require.True(t, hit)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(data))
}

func TestCache_CorruptIndexIsDiscarded(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cache/"+indexFile, []byte("{not json"), 0644))

	c, err := New(fs, "/cache", 1024)
	require.NoError(t, err)
	assert.Empty(t, c.index)
}

func TestCache_Verify(t *testing.T) {
	c, fs := newTestCache(t, 1024)

	path, err := c.Put("a.png", strings.NewReader("original"))
	require.NoError(t, err)

	ok, err := c.Verify("a.png")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, afero.WriteFile(fs, path, []byte("tampered"), 0644))
	ok, err = c.Verify("a.png")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Verify("missing")
	assert.Error(t, err)
}

func TestCache_Stats(t *testing.T) {
	c, _ := newTestCache(t, 1000)

	_, err := c.Put("a.png", strings.NewReader(strings.Repeat("x", 250)))
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, 1, stats.TotalFiles)
	assert.Equal(t, int64(250), stats.TotalSize)
	assert.InDelta(t, 25.0, stats.UsagePercent, 0.001)
	assert.Contains(t, stats.String(), "1 files")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestCache_PutReadError(t *testing.T) {
	c, _ := newTestCache(t, 1024)

	_, err := c.Put("a.png", failingReader{})
	require.Error(t, err)

	var cacheErr *CacheError
	require.True(t, errors.As(err, &cacheErr))
	assert.Equal(t, "put", cacheErr.Operation)
	assert.NotContains(t, c.index, "a.png")
}
