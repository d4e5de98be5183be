// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/minishop-go/internal/middleware"
	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/store"
)

func testTemplates() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": {Data: []byte(
			`{{define "base"}}<title>{{.Title}}</title>` +
				`{{with .User}}<span class="user">{{.Name}}</span>{{end}}` +
				`{{if .Flash}}<div class="flash flash-{{.FlashType}}">{{.Flash}}</div>{{end}}` +
				`{{block "layout" .}}{{template "content" .}}{{end}}{{end}}`)},
		"layouts/admin.html": {Data: []byte(
			`{{define "layout"}}<nav>admin</nav>{{template "content" .}}{{end}}`)},
		"partials/price.html": {Data: []byte(
			`{{define "price"}}<b>{{.FormattedPrice}}</b>{{end}}`)},
		"shop/index.html": {Data: []byte(
			`{{define "content"}}{{range .Data}}{{template "price" .}}{{end}}{{end}}`)},
		"admin/products/index.html": {Data: []byte(
			`{{define "content"}}<p>{{truncate .Data 10}}</p>{{end}}`)},
		"auth/login.html": {Data: []byte(
			`{{define "content"}}<form></form>{{end}}`)},
	}
}

func newTestRenderer(t *testing.T, sm *scs.SessionManager) *Renderer {
	t.Helper()
	r, err := New(Config{TemplatesFS: testTemplates(), SessionManager: sm})
	require.NoError(t, err)
	return r
}

func TestNew_ParsesNestedTemplates(t *testing.T) {
	r := newTestRenderer(t, nil)

	for _, name := range []string{"shop/index", "admin/products/index", "auth/login"} {
		assert.True(t, r.Has(name), "missing template %s", name)
	}
	assert.False(t, r.Has("errors/404"))
}

func TestNew_InvalidTemplate(t *testing.T) {
	fsys := testTemplates()
	fsys["shop/broken.html"] = &fstest.MapFile{Data: []byte(`{{define "content"}}{{.Title`)}

	_, err := New(Config{TemplatesFS: fsys})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shop/broken")
}

func TestRender(t *testing.T) {
	r := newTestRenderer(t, nil)

	products := []store.Product{
		{Name: "Mug", Price: mustDecimal(t, "9.99")},
		{Name: "Chair", Price: mustDecimal(t, "1299.5")},
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, r.Render(rr, req, "shop/index", TemplateData{Title: "Shop", Data: products}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "<title>Shop</title><b>$9.99</b><b>$1,299.50</b>", rr.Body.String())
}

func TestRenderStatus_AdminLayoutAndUser(t *testing.T) {
	r := newTestRenderer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), store.User{ID: 1, Name: "Admin User", Role: model.RoleAdmin}))

	rr := httptest.NewRecorder()
	err := r.RenderStatus(rr, req, http.StatusUnprocessableEntity, "admin/products/index", TemplateData{
		Title: "Products",
		Data:  "A rather long description",
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `<span class="user">Admin User</span>`)
	assert.Contains(t, body, "<nav>admin</nav>")
	assert.Contains(t, body, "<p>A rather l...</p>")
}

func TestRender_UnknownTemplate(t *testing.T) {
	r := newTestRenderer(t, nil)

	rr := httptest.NewRecorder()
	err := r.Render(rr, httptest.NewRequest(http.MethodGet, "/", nil), "shop/missing", TemplateData{})
	require.Error(t, err)
	assert.Equal(t, 0, rr.Body.Len())
}

func TestFlash(t *testing.T) {
	sm := scs.New()
	r := newTestRenderer(t, sm)

	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	r.SetFlash(req, "Product created successfully!", FlashSuccess)

	rr := httptest.NewRecorder()
	require.NoError(t, r.Render(rr, req, "auth/login", TemplateData{Title: "Login"}))
	assert.True(t, strings.Contains(rr.Body.String(), `<div class="flash flash-success">Product created successfully!</div>`), rr.Body.String())

	msg, typ := r.PopFlash(req)
	assert.Empty(t, msg, "flash must be shown only once")
	assert.Empty(t, typ)
}

func TestPopFlash_DefaultType(t *testing.T) {
	sm := scs.New()
	r := &Renderer{sessionManager: sm}

	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	sm.Put(ctx, "flash", "Welcome back")
	msg, typ := r.PopFlash(req)
	assert.Equal(t, "Welcome back", msg)
	assert.Equal(t, FlashInfo, typ)
}

func TestFlash_NoSessionManager(t *testing.T) {
	r := &Renderer{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	r.SetFlash(req, "ignored", FlashError)
	msg, typ := r.PopFlash(req)
	assert.Empty(t, msg)
	assert.Empty(t, typ)
}
