package image

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/ndview/internal/utils"
)

// maxPreviews bounds the rendered preview memo
const maxPreviews = 256

// Opener reads image content by path
type Opener interface {
	Open(path string) (io.ReadCloser, error)
}

type previewKey struct {
	path string
	cols int
	rows int
}

// Manager loads, decodes and renders grid images, remembering rendered
// output per path and cell size until invalidated
type Manager struct {
	opener   Opener
	renderer *Renderer

	mutex    sync.Mutex
	previews map[previewKey]*Preview

	previewCount   int64
	cacheHitCount  int64
	cacheMissCount int64
}

// Stats reports preview counters
type Stats struct {
	TotalPreviews int64
	CacheHits     int64
	CacheMisses   int64
	CacheHitRate  float64
	RendererType  string
	Graphics      bool
}

// NewManager creates a manager reading through opener
func NewManager(opener Opener, renderer *Renderer) *Manager {
	if renderer == nil {
		renderer = NewRenderer("text")
	}
	return &Manager{
		opener:   opener,
		renderer: renderer,
		previews: make(map[previewKey]*Preview),
	}
}

// Renderer returns the renderer in use
func (m *Manager) Renderer() *Renderer {
	return m.renderer
}

// Load returns path rendered into cols x rows cells
func (m *Manager) Load(path string, cols, rows int) (*Preview, error) {
	key := previewKey{path: path, cols: cols, rows: rows}

	m.mutex.Lock()
	m.previewCount++
	if p, ok := m.previews[key]; ok {
		m.cacheHitCount++
		m.mutex.Unlock()
		hit := *p
		hit.CacheHit = true
		return &hit, nil
	}
	m.cacheMissCount++
	m.mutex.Unlock()

	start := time.Now()
	img, err := m.Decode(path)
	if err != nil {
		return nil, err
	}

	rendered, err := m.renderer.Render(img, cols, rows)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	preview := &Preview{
		Path:         path,
		OriginalSize: ImageSize{Width: bounds.Dx(), Height: bounds.Dy()},
		Rendered:     rendered,
		Cols:         cols,
		Rows:         rows,
		LoadTime:     time.Since(start),
	}

	m.mutex.Lock()
	if len(m.previews) >= maxPreviews {
		m.previews = make(map[previewKey]*Preview)
	}
	m.previews[key] = preview
	m.mutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"path":    path,
		"cols":    cols,
		"rows":    rows,
		"load_ms": preview.LoadTime.Milliseconds(),
	}).Debug("image preview generated")

	return preview, nil
}

// Decode opens path and decodes it, rejecting content that is not an image
func (m *Manager) Decode(path string) (image.Image, error) {
	rc, err := m.opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	contentType := utils.DetectContentType(path, data)
	if !utils.IsImageType(contentType) {
		return nil, &FormatError{
			Format:   contentType,
			FilePath: path,
			Reason:   "unsupported image format",
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &FormatError{
			Format:   contentType,
			FilePath: path,
			Reason:   err.Error(),
		}
	}
	return img, nil
}

// Invalidate forgets every rendered preview
func (m *Manager) Invalidate() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.previews = make(map[previewKey]*Preview)
}

// GetStats returns preview counters
func (m *Manager) GetStats() Stats {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	hitRate := float64(0)
	if m.previewCount > 0 {
		hitRate = float64(m.cacheHitCount) / float64(m.previewCount) * 100
	}

	return Stats{
		TotalPreviews: m.previewCount,
		CacheHits:     m.cacheHitCount,
		CacheMisses:   m.cacheMissCount,
		CacheHitRate:  hitRate,
		RendererType:  string(m.renderer.TerminalType),
		Graphics:      m.renderer.IsGraphics(),
	}
}
