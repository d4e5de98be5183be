// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the HTML templates and renders pages with the
// shared layout data: current user, flash message and year.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/minishop-go/internal/middleware"
	"github.com/olegiv/minishop-go/internal/store"
)

// Session keys for flash messages.
const (
	sessionKeyFlash     = "flash"
	sessionKeyFlashType = "flash_type"
)

// Flash types understood by the layout.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	storageURL     func(key string) string
	isDev          bool
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	// StorageURL maps a storage key to its public URL.
	StorageURL func(key string) string
	IsDev      bool
}

// layoutGroups maps a template directory to the layouts its pages extend.
var layoutGroups = []struct {
	dir     string
	layouts []string
}{
	{"shop", []string{"layouts/base.html"}},
	{"auth", []string{"layouts/base.html"}},
	{"errors", []string{"layouts/base.html"}},
	{"admin", []string{"layouts/base.html", "layouts/admin.html"}},
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		storageURL:     cfg.StorageURL,
		isDev:          cfg.IsDev,
	}
	if r.storageURL == nil {
		r.storageURL = func(key string) string { return "/storage/" + key }
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses every page template together with its layouts and
// the shared partials. Page names are their paths without the extension,
// e.g. "admin/products/edit".
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := templateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	for _, group := range layoutGroups {
		pages, err := templateFiles(templatesFS, group.dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", group.dir, err)
		}

		for _, page := range pages {
			name := strings.TrimSuffix(page, ".html")

			files := append([]string{}, group.layouts...)
			files = append(files, partials...)
			files = append(files, page)

			tmpl, err := template.New("").Funcs(r.TemplateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}

	return nil
}

// templateFiles returns all .html files below dir. A missing directory
// yields no files.
func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	var files []string
	err := fs.WalkDir(templatesFS, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() && path.Ext(p) == ".html" {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

// Has reports whether a page template with the given name exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Data        any
	User        *store.User
	Flash       string
	FlashType   string
	CurrentPath string
	CurrentYear int
	IsDev       bool
}

// Render renders a page with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a page with the given status code. The page is
// executed into a buffer first so a template error never produces a
// half-written response.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	data.CurrentPath = req.URL.Path
	data.IsDev = r.isDev
	if data.User == nil {
		data.User = middleware.GetUser(req)
	}
	if data.Flash == "" {
		data.Flash, data.FlashType = r.PopFlash(req)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("writing response failed", "template", name, "error", err)
	}
	return nil
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager == nil {
		return
	}
	r.sessionManager.Put(req.Context(), sessionKeyFlash, message)
	r.sessionManager.Put(req.Context(), sessionKeyFlashType, flashType)
}

// PopFlash removes and returns the pending flash message and its type.
// The type defaults to FlashInfo.
func (r *Renderer) PopFlash(req *http.Request) (message, flashType string) {
	if r.sessionManager == nil {
		return "", ""
	}
	message = r.sessionManager.PopString(req.Context(), sessionKeyFlash)
	flashType = r.sessionManager.PopString(req.Context(), sessionKeyFlashType)
	if message == "" {
		return "", ""
	}
	if flashType == "" {
		flashType = FlashInfo
	}
	return message, flashType
}
