// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the catalog business logic: the public shop, the
// admin product workflow with its image lifecycle, and the audit event log.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/store"
)

// EventService provides event logging functionality.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
	}
}

// LogEvent creates a new event log entry.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, ipAddress, requestURL string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		jsonBytes, err := json.Marshal(metadata)
		if err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:      level,
		Category:   category,
		Message:    message,
		UserID:     nullUserID,
		Metadata:   metadataJSON,
		IpAddress:  ipAddress,
		RequestUrl: requestURL,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		slog.Error("failed to log event", "error", err, "category", category, "message", message)
		return err
	}

	return nil
}

// LogInfo logs an info-level event.
func (s *EventService) LogInfo(ctx context.Context, category, message string, userID *int64, ipAddress, requestURL string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelInfo, category, message, userID, ipAddress, requestURL, metadata)
}

// LogWarning logs a warning-level event.
func (s *EventService) LogWarning(ctx context.Context, category, message string, userID *int64, ipAddress, requestURL string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelWarning, category, message, userID, ipAddress, requestURL, metadata)
}

// LogError logs an error-level event.
func (s *EventService) LogError(ctx context.Context, category, message string, userID *int64, ipAddress, requestURL string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelError, category, message, userID, ipAddress, requestURL, metadata)
}

// LogAuthEvent logs an authentication-related event.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message string, userID *int64, ipAddress, requestURL string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAuth, message, userID, ipAddress, requestURL, metadata)
}

// LogProductEvent logs a catalog change.
func (s *EventService) LogProductEvent(ctx context.Context, level, message string, userID *int64, ipAddress, requestURL string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryProduct, message, userID, ipAddress, requestURL, metadata)
}

// LogUserEvent logs a user-related event.
func (s *EventService) LogUserEvent(ctx context.Context, level, message string, userID *int64, ipAddress, requestURL string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryUser, message, userID, ipAddress, requestURL, metadata)
}

// LogStorageEvent logs an image storage event.
func (s *EventService) LogStorageEvent(ctx context.Context, level, message string, userID *int64, ipAddress, requestURL string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryStorage, message, userID, ipAddress, requestURL, metadata)
}

// LogSystemEvent logs a system-related event.
func (s *EventService) LogSystemEvent(ctx context.Context, level, message string, userID *int64, ipAddress, requestURL string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategorySystem, message, userID, ipAddress, requestURL, metadata)
}

// ListEvents returns a page of events, newest first. An empty category
// lists all categories.
func (s *EventService) ListEvents(ctx context.Context, category string, page, perPage int) (Page[store.Event], error) {
	var total int64
	var err error
	if category == "" {
		total, err = s.queries.CountEvents(ctx)
	} else {
		total, err = s.queries.CountEventsByCategory(ctx, category)
	}
	if err != nil {
		return Page[store.Event]{}, storageErr("counting events", err)
	}

	p := NewPage[store.Event](page, perPage, total)

	var events []store.Event
	if category == "" {
		events, err = s.queries.ListEvents(ctx, store.ListEventsParams{
			Limit:  int64(p.PerPage),
			Offset: p.Offset(),
		})
	} else {
		events, err = s.queries.ListEventsByCategory(ctx, store.ListEventsByCategoryParams{
			Category: category,
			Limit:    int64(p.PerPage),
			Offset:   p.Offset(),
		})
	}
	if err != nil {
		return Page[store.Event]{}, storageErr("listing events", err)
	}

	p.Items = events
	return p, nil
}

// DeleteOldEvents removes events older than the specified duration.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	return s.queries.DeleteOldEvents(ctx, cutoff)
}
