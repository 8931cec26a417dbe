package utils

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// DetectContentType detects the MIME type of content, sniffing the bytes
// first and falling back to the file extension
func DetectContentType(filePath string, head []byte) string {
	if len(head) > 512 {
		head = head[:512]
	}
	if len(head) > 0 {
		if contentType := http.DetectContentType(head); contentType != "application/octet-stream" {
			return contentType
		}
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return contentType
	}

	// Common image mappings for systems without a mime database
	commonTypes := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".bmp":  "image/bmp",
		".tiff": "image/tiff",
		".tif":  "image/tiff",
	}

	if contentType, ok := commonTypes[ext]; ok {
		return contentType
	}

	return "application/octet-stream"
}

// IsImageType checks if the content type represents an image
func IsImageType(contentType string) bool {
	mainType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mainType, "image/")
}
