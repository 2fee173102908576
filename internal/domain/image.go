package domain

import (
	"path/filepath"
	"strings"
)

// ImageExtensions lists the file extensions served as images.
var ImageExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

// ImageMIMETypes lists the content types accepted for uploads.
var ImageMIMETypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// IsImageName reports whether name carries an allow-listed extension.
// The comparison is case-insensitive.
func IsImageName(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, allowed := range ImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// SanitizeImageName rejects names that could resolve outside the image
// directory.
func SanitizeImageName(name string) (string, error) {
	if name == "" || name == "." || name == ".." {
		return "", ValidationError{Reason: "Invalid filename"}
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", ValidationError{Reason: "Invalid filename"}
	}
	if filepath.Base(name) != name {
		return "", ValidationError{Reason: "Invalid filename"}
	}
	return name, nil
}
