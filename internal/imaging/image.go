// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging inspects uploaded product images and renders placeholder
// images for catalog entries whose file is missing.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/olegiv/minishop-go/internal/model"
)

// Errors returned by Inspect.
var (
	ErrEmpty             = errors.New("image is empty")
	ErrTooLarge          = errors.New("image exceeds maximum size")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrCorrupt           = errors.New("image could not be decoded")
	ErrDimensions        = errors.New("image dimensions exceed the limit")
)

// MaxPixels caps width*height of an accepted image. Decoding allocates
// memory for every pixel, so a small file declaring a huge canvas is
// rejected from its header alone.
const MaxPixels = 40_000_000

// Info describes an accepted image.
type Info struct {
	MimeType  string
	Extension string
	Width     int
	Height    int
	Size      int
}

// Inspect checks that data is a decodable JPEG, PNG or GIF no larger than
// maxBytes and at most MaxPixels, and reports its format and dimensions.
// The data is not modified.
func Inspect(data []byte, maxBytes int) (*Info, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), maxBytes)
	}

	mimeType := DetectMimeType(data)
	ext, ok := model.ProductImageExtension(mimeType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	bounds := img.Bounds()
	return &Info{
		MimeType:  mimeType,
		Extension: ext,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Size:      len(data),
	}, nil
}

// DetectMimeType sniffs the MIME type of data from its leading bytes.
// TIFF is reported as application/octet-stream (CVE-2023-36308 in
// disintegration/imaging).
func DetectMimeType(data []byte) string {
	contentType := http.DetectContentType(data)
	// http.DetectContentType returns types like "text/plain; charset=utf-8"
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	if strings.Contains(contentType, "tiff") {
		return "application/octet-stream"
	}
	return contentType
}

// Placeholder default dimensions.
const (
	PlaceholderWidth  = 640
	PlaceholderHeight = 480
)

// Placeholder renders a JPEG placeholder for the given storage key. The
// colors are derived from the key, so the same key always yields the same
// image.
func Placeholder(key string, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid placeholder size %dx%d", width, height)
	}

	base := keyColor(key)
	bg := imaging.New(width, height, base)

	panel := imaging.New(width/2, height/2, lighten(base, 0.45))
	img := imaging.Overlay(bg, panel, image.Pt(width/4, height/4), 0.8)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encoding placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

func keyColor(key string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	sum := h.Sum32()

	// Keep channels in the mid range so the lighter panel stays visible.
	return color.NRGBA{
		R: uint8(64 + sum%128),
		G: uint8(64 + (sum>>8)%128),
		B: uint8(64 + (sum>>16)%128),
		A: 255,
	}
}

func lighten(c color.NRGBA, amount float64) color.NRGBA {
	mix := func(v uint8) uint8 {
		return uint8(float64(v) + (255-float64(v))*amount)
	}
	return color.NRGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}
