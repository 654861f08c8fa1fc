package models

import (
	"strings"
	"unicode/utf8"
)

const (
	// PhotoPrefixLen is the number of leading bytes of the captured image
	// value kept in the placeholder.
	PhotoPrefixLen = 100

	// PhotoTruncationMarker terminates every placeholder.
	PhotoTruncationMarker = "...[truncated]"
)

// PhotoPlaceholder is the lossy transform applied to images before
// encryption: a bounded prefix of the captured value plus the truncation
// marker. The image cannot be recovered from it; reports only need
// to know that a photo was taken. Nil and empty inputs yield nil, and a value
// that already is a placeholder is returned unchanged.
func PhotoPlaceholder(photo *string) *string {
	if photo == nil || *photo == "" {
		return nil
	}
	p := *photo
	if IsPhotoPlaceholder(p) {
		return &p
	}

	cut := len(p)
	if cut > PhotoPrefixLen {
		cut = PhotoPrefixLen
		// never split a multi-byte rune
		for cut > 0 && !utf8.RuneStart(p[cut]) {
			cut--
		}
	}

	out := p[:cut] + PhotoTruncationMarker
	return &out
}

// IsPhotoPlaceholder reports whether s has the shape PhotoPlaceholder produces.
func IsPhotoPlaceholder(s string) bool {
	return strings.HasSuffix(s, PhotoTruncationMarker) &&
		len(s) <= PhotoPrefixLen+len(PhotoTruncationMarker)
}
