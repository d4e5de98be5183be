// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Supported MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// productImageExtensions maps accepted product image MIME types to the
// file extension used for their storage key.
var productImageExtensions = map[string]string{
	MimeTypeJPEG: ".jpg",
	MimeTypePNG:  ".png",
	MimeTypeGIF:  ".gif",
}

// IsProductImageMimeType reports whether mimeType is accepted for product images.
func IsProductImageMimeType(mimeType string) bool {
	_, ok := productImageExtensions[mimeType]
	return ok
}

// ProductImageExtension returns the storage extension for an accepted MIME type.
func ProductImageExtension(mimeType string) (string, bool) {
	ext, ok := productImageExtensions[mimeType]
	return ext, ok
}
