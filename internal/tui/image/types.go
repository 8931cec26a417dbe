package image

import (
	"fmt"
	"time"
)

// ImageSize holds pixel dimensions
type ImageSize struct {
	Width  int
	Height int
}

// Preview is one image rendered for a block of terminal cells
type Preview struct {
	Path         string
	OriginalSize ImageSize
	Rendered     string
	Cols         int
	Rows         int
	CacheHit     bool
	LoadTime     time.Duration
}

// RenderError reports a failure to encode an image for the terminal
type RenderError struct {
	Terminal string
	Protocol string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error on %s terminal with %s protocol: %v", e.Terminal, e.Protocol, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// FormatError reports content that is not a decodable image
type FormatError struct {
	Format   string
	FilePath string
	Reason   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error for %s file %s: %s", e.Format, e.FilePath, e.Reason)
}
