// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/olegiv/minishop-go/internal/store"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	sanitize = bluemonday.UGCPolicy()
)

// Markdown converts a product description to sanitized HTML. Plain text
// descriptions come out as a single paragraph.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		slog.Warn("markdown conversion failed", "error", err)
		return template.HTML("<p>" + template.HTMLEscapeString(src) + "</p>")
	}
	return template.HTML(sanitize.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized by bluemonday
}

// Truncate shortens s to at most limit runes, trimming trailing spaces and
// appending "..." when anything was cut.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:limit]), " \t\r\n") + "..."
}

// PageURL returns base with the page query parameter set. Page 1 drops the
// parameter; other query parameters on base are kept.
func PageURL(base string, page int) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// TemplateFuncs returns custom template functions.
func (r *Renderer) TemplateFuncs() template.FuncMap {
	storageURL := r.storageURL
	if storageURL == nil {
		storageURL = func(key string) string { return "/storage/" + key }
	}

	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"truncate": Truncate,
		"markdown": Markdown,
		"storageURL": func(key string) string {
			if key == "" {
				return ""
			}
			return storageURL(key)
		},
		"productImage": func(p store.Product) string {
			if !p.HasImage() {
				return ""
			}
			return storageURL(p.ImageKey())
		},
		"isAdmin": func(u *store.User) bool {
			return u != nil && u.IsAdmin()
		},
		"pageURL": PageURL,
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},
		"levelClass": func(level string) string {
			switch level {
			case "error":
				return "badge-danger"
			case "warning":
				return "badge-warning"
			default:
				return "badge-info"
			}
		},
		"prettyJSON": func(s string) string {
			if s == "" || s == "{}" {
				return ""
			}
			var v any
			if err := json.Unmarshal([]byte(s), &v); err != nil {
				return s
			}
			out, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return s
			}
			return string(out)
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"seq": func(start, end int) []int {
			var result []int
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},
	}
}
