// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/mileusna/useragent"

	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/service"
	"github.com/olegiv/minishop-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request-scoped data.
const (
	ContextKeyUser        ContextKey = "user"
	ContextKeyRequestPath ContextKey = "request_path"
)

// SessionKeyUserID is the session key holding the authenticated user's ID.
const SessionKeyUserID = "user_id"

// AccessDeniedMessage is flashed when a request fails the admin gate.
const AccessDeniedMessage = "Access denied. Admin privileges required."

// Flasher stores a one-time notice for the next rendered page.
type Flasher interface {
	SetFlash(r *http.Request, message, flashType string)
}

// LoadUser creates middleware that loads the current user into the request
// context when the session carries a user ID. A session pointing at a user
// that no longer exists is cleared and the request continues anonymously.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					sm.Remove(r.Context(), SessionKeyUserID)
				} else {
					slog.Error("failed to load session user", "error", err, "user_id", userID)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user store.User) context.Context {
	return context.WithValue(ctx, ContextKeyUser, user)
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *store.User {
	user, ok := r.Context().Value(ContextKeyUser).(store.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the current user's ID from context, or 0 if not found.
// Safe to use in logging where a zero-value is acceptable.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}

// GetUserIDPtr returns a pointer to the current user's ID from context, or nil if not found.
// Useful for optional user ID parameters in event logging.
func GetUserIDPtr(r *http.Request) *int64 {
	if user := GetUser(r); user != nil {
		id := user.ID
		return &id
	}
	return nil
}

// RequestPath creates middleware that stores the request path in the context.
// This is used by the logging handler to include the URL in error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}

// RequireAdmin creates the admin gate. Requests without an authenticated
// admin in context are redirected to the public catalog with
// AccessDeniedMessage flashed; the wrapped handler is never called for them.
// Denials are logged and, when eventService is set, recorded as auth events.
func RequireAdmin(flash Flasher, eventService *service.EventService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user != nil && user.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			denyAdmin(w, r, user, flash, eventService)
		})
	}
}

func denyAdmin(w http.ResponseWriter, r *http.Request, user *store.User, flash Flasher, eventService *service.EventService) {
	ip := GetClientIP(r)
	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", ip,
	}

	var userID *int64
	role := "guest"
	if user != nil {
		id := user.ID
		userID = &id
		role = user.Role.String()
		attrs = append(attrs, "user_id", user.ID)
	}
	attrs = append(attrs, "user_role", role)

	slog.Info("admin access denied", attrs...)

	if eventService != nil {
		metadata := map[string]any{
			"method":    r.Method,
			"user_role": role,
		}
		for k, v := range userAgentMetadata(r.UserAgent()) {
			metadata[k] = v
		}
		_ = eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Access denied: admin privileges required", userID, ip, r.URL.Path, metadata)
	}

	if flash != nil {
		flash.SetFlash(r, AccessDeniedMessage, "error")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// userAgentMetadata summarizes a User-Agent header for audit events.
func userAgentMetadata(header string) map[string]any {
	if header == "" {
		return map[string]any{}
	}

	ua := useragent.Parse(header)
	device := "desktop"
	switch {
	case ua.Bot:
		device = "bot"
	case ua.Tablet:
		device = "tablet"
	case ua.Mobile:
		device = "mobile"
	}

	meta := map[string]any{"device": device}
	if ua.Name != "" {
		meta["browser"] = ua.Name
	}
	if ua.OS != "" {
		meta["os"] = ua.OS
	}
	return meta
}
