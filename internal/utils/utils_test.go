package utils

import (
	"errors"
	"testing"

	"github.com/atotto/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		head     []byte
		expected string
	}{
		{"sniffed png", "plot.dat", pngHeader, "image/png"},
		{"content wins over extension", "plot.jpg", pngHeader, "image/png"},
		{"extension fallback", "plot.webp", nil, "image/webp"},
		{"tif fallback", "plot.tif", []byte{0x00, 0x01}, "image/tiff"},
		{"unknown", "plot.unknownext", []byte{0x00, 0x01}, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectContentType(tt.path, tt.head))
		})
	}
}

func TestIsImageType(t *testing.T) {
	assert.True(t, IsImageType("image/png"))
	assert.True(t, IsImageType("image/jpeg; charset=binary"))
	assert.False(t, IsImageType("text/plain; charset=utf-8"))
	assert.False(t, IsImageType(""))
}

func TestCopyToClipboard(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("no clipboard utility")
	}
	original := clipboardWrite
	defer func() { clipboardWrite = original }()

	var got string
	clipboardWrite = func(s string) error {
		got = s
		return nil
	}
	require.NoError(t, CopyToClipboard("/data/images/a.png"))
	assert.Equal(t, "/data/images/a.png", got)

	clipboardWrite = func(string) error { return errors.New("exit status 1") }
	err := CopyToClipboard("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to copy to clipboard")
}
