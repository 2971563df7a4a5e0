// Package contenttype picks the Content-Type sent with an uploaded file.
package contenttype

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
)

// Default is used when neither content sniffing nor the extension yields a type.
const Default = "application/octet-stream"

// sniffLen is how much of the file is read for detection.
const sniffLen = 512

// Detect determines the content type of the file at path using mimetype where
// possible, falling back to extension-based lookup.
func Detect(fs billy.Basic, path string) string {
	file, err := fs.Open(path)
	if err != nil {
		return FromExtension(path)
	}
	defer file.Close()

	buf := make([]byte, sniffLen)
	n, _ := file.Read(buf)
	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil && mt.String() != Default {
			return mt.String()
		}
	}

	return FromExtension(path)
}

// FromExtension detects content type from file extension.
func FromExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	return Default
}
