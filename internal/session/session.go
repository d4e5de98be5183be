// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the cookie session manager backed by the
// application's SQLite database.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session cookie names. Browsers only accept the __Host- prefix on secure
// cookies scoped to "/", so development falls back to a plain name.
const (
	CookieName       = "minishop_session"
	SecureCookieName = "__Host-session"
)

// Default timings.
const (
	DefaultLifetime        = 24 * time.Hour
	DefaultCleanupInterval = 30 * time.Minute
)

// Options tunes the session manager. Zero values select the defaults.
type Options struct {
	Lifetime        time.Duration
	IdleTimeout     time.Duration
	CleanupInterval time.Duration
}

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, isDev bool, opts ...Options) *scs.SessionManager {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Lifetime <= 0 {
		o.Lifetime = DefaultLifetime
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = DefaultCleanupInterval
	}

	sm := scs.New()
	sm.Store = sqlite3store.NewWithCleanupInterval(db, o.CleanupInterval)
	sm.Lifetime = o.Lifetime
	sm.IdleTimeout = o.IdleTimeout

	sm.Cookie.Name = CookieName
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = SecureCookieName
	}

	return sm
}
