package image

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/ndview/internal/resolver"
)

// solidPNG encodes twoTone as PNG
func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, twoTone(w, h)))
	return buf.Bytes()
}

func newTestManager(t *testing.T) (*Manager, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/img/plot.png", solidPNG(t, 40, 20), 0644))
	require.NoError(t, afero.WriteFile(fs, "/img/notes.txt", []byte("just some text"), 0644))
	return NewManager(resolver.NewLocalStore(fs), NewRenderer("text")), fs
}

func TestManager_Load(t *testing.T) {
	m, _ := newTestManager(t)

	p, err := m.Load("/img/plot.png", 20, 5)
	require.NoError(t, err)
	assert.Equal(t, "/img/plot.png", p.Path)
	assert.Equal(t, ImageSize{Width: 40, Height: 20}, p.OriginalSize)
	assert.Equal(t, 20, p.Cols)
	assert.Equal(t, 5, p.Rows)
	assert.False(t, p.CacheHit)
	assert.Contains(t, p.Rendered, "▀")
	assert.LessOrEqual(t, strings.Count(p.Rendered, "\n")+1, 5)
}

func TestManager_LoadMemoizes(t *testing.T) {
	m, fs := newTestManager(t)

	_, err := m.Load("/img/plot.png", 20, 5)
	require.NoError(t, err)

	// rendered output is reused even though the file is gone
	require.NoError(t, fs.Remove("/img/plot.png"))
	p, err := m.Load("/img/plot.png", 20, 5)
	require.NoError(t, err)
	assert.True(t, p.CacheHit)

	// a different cell size renders again
	_, err = m.Load("/img/plot.png", 10, 5)
	assert.Error(t, err)

	m.Invalidate()
	_, err = m.Load("/img/plot.png", 20, 5)
	assert.Error(t, err)

	stats := m.GetStats()
	assert.Equal(t, int64(4), stats.TotalPreviews)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(3), stats.CacheMisses)
	assert.Equal(t, float64(25), stats.CacheHitRate)
	assert.False(t, stats.Graphics)
}

func TestManager_DecodeRejectsNonImages(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Decode("/img/notes.txt")
	require.Error(t, err)

	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, "/img/notes.txt", formatErr.FilePath)
	assert.Contains(t, formatErr.Format, "text/plain")
}

func TestManager_DecodeCorruptImage(t *testing.T) {
	m, fs := newTestManager(t)
	require.NoError(t, afero.WriteFile(fs, "/img/broken.png", solidPNG(t, 4, 4)[:20], 0644))

	_, err := m.Decode("/img/broken.png")
	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, "image/png", formatErr.Format)
}

func TestManager_DecodeMissing(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Decode("/img/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open image")
}

func TestNewManager_DefaultsToText(t *testing.T) {
	m := NewManager(resolver.NewLocalStore(afero.NewMemMapFs()), nil)
	assert.Equal(t, ProtocolNone, m.Renderer().Protocol)
}
