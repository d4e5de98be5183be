// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small helpers shared across packages: slug
// generation, path containment checks and sql.Null* conversions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// slugSpaces matches runs of whitespace and separator punctuation
	slugSpaces = regexp.MustCompile(`[\s_./]+`)
)

// Slugify converts a string to a URL-friendly slug.
// Non-Latin scripts are transliterated to ASCII first, then accents are
// stripped, the result is lowercased and anything other than letters,
// digits and single hyphens is removed.
func Slugify(s string) string {
	// Strip combining marks before transliteration so "é" stays "e"
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = unidecode.Unidecode(result)
	result = strings.ToLower(result)
	result = slugSpaces.ReplaceAllString(result, "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// SlugifyMax is Slugify limited to maxLen bytes, cut on a hyphen boundary
// when one is available.
func SlugifyMax(s string, maxLen int) string {
	slug := Slugify(s)
	if maxLen <= 0 || len(slug) <= maxLen {
		return slug
	}

	slug = slug[:maxLen]
	if i := strings.LastIndexByte(slug, '-'); i > 0 {
		slug = slug[:i]
	}
	return strings.Trim(slug, "-")
}
