// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a custom slog handler that integrates with the Event Log system.
// It forwards logs at WARN level and above to the database-backed Event Log for auditing.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/olegiv/minishop-go/internal/middleware"
	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/store"
)

// Attribute keys with special meaning for the Event Log.
const (
	attrCategory = "category"
	attrUserID   = "user_id"
	attrIP       = "remote_addr"
)

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level logs to the Event Log database.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level // Minimum level to forward to Event Log (default: WARN)
	attrs   []slog.Attr
	group   string
}

// NewEventLogHandler creates a new EventLogHandler that wraps the given handler.
// Logs at WARN level and above will be written to both the wrapped handler and the Event Log.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level) || level >= h.level
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	var innerErr error
	if h.inner.Enabled(ctx, r.Level) {
		innerErr = h.inner.Handle(ctx, r)
	}

	if r.Level >= h.level {
		h.writeToEventLog(ctx, r)
	}

	return innerErr
}

// WithAttrs implements slog.Handler. The attributes are also kept for the
// Event Log so a logger built with With("category", ...) is categorized.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.inner = h.inner.WithAttrs(attrs)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, h.qualify(a))
	}
	return clone
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.inner = h.inner.WithGroup(name)
	clone.group = h.qualifyKey(name)
	return clone
}

func (h *EventLogHandler) clone() *EventLogHandler {
	return &EventLogHandler{
		inner:   h.inner,
		queries: h.queries,
		level:   h.level,
		attrs:   append([]slog.Attr(nil), h.attrs...),
		group:   h.group,
	}
}

func (h *EventLogHandler) qualifyKey(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func (h *EventLogHandler) qualify(a slog.Attr) slog.Attr {
	return slog.Attr{Key: h.qualifyKey(a.Key), Value: a.Value}
}

// writeToEventLog writes a log record to the Event Log database.
func (h *EventLogHandler) writeToEventLog(ctx context.Context, r slog.Record) {
	attrs := append([]slog.Attr(nil), h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.qualify(a))
		return true
	})

	var (
		category string
		userID   sql.NullInt64
		ip       string
	)
	meta := make(map[string]any, len(attrs))
	for _, a := range attrs {
		v := a.Value.Resolve()
		switch a.Key {
		case attrCategory:
			category = v.String()
			continue
		case attrUserID:
			if v.Kind() == slog.KindInt64 {
				userID = sql.NullInt64{Int64: v.Int64(), Valid: v.Int64() > 0}
			}
		case attrIP:
			ip = v.String()
		}
		meta[a.Key] = attrValue(v)
	}
	if category == "" {
		category = inferCategory(r.Message)
	}

	metadata := "{}"
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			metadata = string(b)
		}
	}

	params := store.CreateEventParams{
		Level:      slogLevelToEventLevel(r.Level),
		Category:   category,
		Message:    r.Message,
		UserID:     userID,
		Metadata:   metadata,
		IpAddress:  ip,
		RequestUrl: middleware.GetRequestPath(ctx),
		CreatedAt:  r.Time,
	}

	// The request context may already be canceled; the event is still wanted.
	ctx = context.WithoutCancel(ctx)
	if _, err := h.queries.CreateEvent(ctx, params); err != nil && params.UserID.Valid {
		// user_id references users(id); keep the event when the user is gone.
		params.UserID = sql.NullInt64{}
		_, _ = h.queries.CreateEvent(ctx, params)
	}
}

// attrValue converts a resolved slog value to something json.Marshal renders
// naturally.
func attrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindGroup:
		group := make(map[string]any)
		for _, a := range v.Group() {
			group[a.Key] = attrValue(a.Value.Resolve())
		}
		return group
	default:
		return v.String()
	}
}

// slogLevelToEventLevel converts a slog.Level to an Event Log level.
func slogLevelToEventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// inferCategory guesses an event category from a log message.
func inferCategory(message string) string {
	msg := strings.ToLower(message)
	switch {
	case containsAny(msg, "auth", "login", "logout", "account", "csrf", "access denied", "rate limit"):
		return model.EventCategoryAuth
	case containsAny(msg, "image", "storage", "file", "upload"):
		return model.EventCategoryStorage
	case strings.Contains(msg, "product"):
		return model.EventCategoryProduct
	case strings.Contains(msg, "user"):
		return model.EventCategoryUser
	case containsAny(msg, "config", "setting"):
		return model.EventCategoryConfig
	default:
		return model.EventCategorySystem
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
