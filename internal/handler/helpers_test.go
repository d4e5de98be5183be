// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/minishop-go/internal/middleware"
	"github.com/olegiv/minishop-go/internal/render"
	"github.com/olegiv/minishop-go/internal/service"
	"github.com/olegiv/minishop-go/internal/storage"
	"github.com/olegiv/minishop-go/internal/store"
	"github.com/olegiv/minishop-go/internal/testutil"
	"github.com/olegiv/minishop-go/web"
)

// testEnv is a seeded database, a temporary image store and a router wired
// the way the server wires it, minus CSRF and rate limits.
type testEnv struct {
	db       *sql.DB
	files    *storage.Local
	sm       *scs.SessionManager
	renderer *render.Renderer
	router   http.Handler
	admin    store.User
	customer store.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, cleanup := testutil.SeededDB(t)
	t.Cleanup(cleanup)

	files := testutil.TestStorage(t)

	sm := scs.New()
	sm.Lifetime = 24 * time.Hour

	templates, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)

	renderer, err := render.New(render.Config{
		TemplatesFS:    templates,
		SessionManager: sm,
		StorageURL:     files.URL,
	})
	require.NoError(t, err)

	queries := store.New(db)
	admin, err := queries.GetUserByEmail(context.Background(), store.SeedAdminEmail)
	require.NoError(t, err)
	customer, err := queries.GetUserByEmail(context.Background(), store.SeedCustomerEmail)
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		files:    files,
		sm:       sm,
		renderer: renderer,
		admin:    admin,
		customer: customer,
	}
	env.router = env.routes()
	return env
}

func (e *testEnv) routes() http.Handler {
	shop := NewShopHandler(e.db, e.renderer)
	products := NewProductsHandler(e.db, e.files, e.renderer)
	events := NewEventsHandler(e.db, e.renderer)
	authHandler := NewAuthHandler(e.db, e.renderer, e.sm, nil)
	eventService := service.NewEventService(e.db)

	r := chi.NewRouter()
	r.Use(e.sm.LoadAndSave)
	r.Use(middleware.RequestPath)
	r.Use(middleware.LoadUser(e.sm, e.db))

	r.Get(RouteRoot, shop.Index)
	r.Get(RouteProductsID, shop.Show)

	r.Get(RouteLogin, authHandler.LoginForm)
	r.Post(RouteLogin, authHandler.Login)
	r.Post(RouteLogout, authHandler.Logout)
	r.Get(RouteRegister, authHandler.RegisterForm)
	r.Post(RouteRegister, authHandler.Register)

	r.Route(RouteAdmin, func(r chi.Router) {
		r.Use(middleware.RequireAdmin(e.renderer, eventService))

		r.Get(RouteRoot, products.Dashboard)
		r.Get(RouteAdminProducts, products.List)
		r.Get(RouteAdminProducts+RouteSuffixCreate, products.NewForm)
		r.Post(RouteAdminProducts, products.Create)
		r.Get(RouteAdminProductsID, products.View)
		r.Get(RouteAdminProductsID+RouteSuffixEdit, products.EditForm)
		r.Put(RouteAdminProductsID, products.Update)
		r.Patch(RouteAdminProductsID, products.Update)
		r.Post(RouteAdminProductsID, products.Update)
		r.Delete(RouteAdminProductsID, products.Delete)
		r.Post(RouteAdminProductsID+RouteSuffixDelete, products.Delete)
		r.Get(RouteAdminEvents, events.List)
	})

	return r
}

// sessionFor commits a session signed in as userID and returns its cookie.
// A zero userID yields an anonymous session.
func (e *testEnv) sessionFor(t *testing.T, userID int64) *http.Cookie {
	t.Helper()

	ctx, err := e.sm.Load(context.Background(), "")
	require.NoError(t, err)
	e.sm.Put(ctx, "init", true)
	if userID > 0 {
		e.sm.Put(ctx, middleware.SessionKeyUserID, userID)
	}

	token, expiry, err := e.sm.Commit(ctx)
	require.NoError(t, err)
	return &http.Cookie{Name: e.sm.Cookie.Name, Value: token, Expires: expiry}
}

// do serves req with the optional session cookie attached.
func (e *testEnv) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), cookie)
}

func (e *testEnv) postForm(path string, values url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	return e.do(req, cookie)
}

// postFormTo posts values straight to h without the test router.
func (e *testEnv) postFormTo(h http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// sessionValue reads a string stored in the session behind cookie.
func (e *testEnv) sessionValue(t *testing.T, cookie *http.Cookie, key string) string {
	t.Helper()

	ctx, err := e.sm.Load(context.Background(), cookie.Value)
	require.NoError(t, err)
	return e.sm.GetString(ctx, key)
}

// flash returns the pending flash message of the session behind cookie.
func (e *testEnv) flash(t *testing.T, cookie *http.Cookie) string {
	t.Helper()
	return e.sessionValue(t, cookie, "flash")
}

// responseCookie returns the session cookie set by rr, falling back to prev
// when the response did not issue a new one.
func (e *testEnv) responseCookie(rr *httptest.ResponseRecorder, prev *http.Cookie) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == e.sm.Cookie.Name && c.Value != "" {
			return c
		}
	}
	return prev
}

func (e *testEnv) product(t *testing.T, id int64) store.Product {
	t.Helper()
	p, err := store.New(e.db).GetProductByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (e *testEnv) productByName(t *testing.T, name string) store.Product {
	t.Helper()
	p, err := store.New(e.db).GetProductByName(context.Background(), name)
	require.NoError(t, err)
	return p
}

func (e *testEnv) productCount(t *testing.T) int64 {
	t.Helper()
	n, err := store.New(e.db).CountProducts(context.Background())
	require.NoError(t, err)
	return n
}

// multipartForm builds a multipart body with the given fields and an
// optional "image" file part.
func multipartForm(t *testing.T, fields url.Values, filename string, image []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	if filename != "" {
		part, err := mw.CreateFormFile(service.FieldImage, filename)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func productValues(name, price, description string, available bool) url.Values {
	v := url.Values{
		service.FieldName:        {name},
		service.FieldPrice:       {price},
		service.FieldDescription: {description},
	}
	if available {
		v.Set(service.FieldAvailable, "1")
	}
	return v
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
