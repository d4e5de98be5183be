// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/render"
	"github.com/olegiv/minishop-go/internal/service"
)

// EventsHandler serves the admin audit log.
type EventsHandler struct {
	events   *service.EventService
	renderer *render.Renderer
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(db *sql.DB, renderer *render.Renderer) *EventsHandler {
	return &EventsHandler{
		events:   service.NewEventService(db),
		renderer: renderer,
	}
}

// EventRow is an event prepared for display.
type EventRow struct {
	ID          int64
	Level       string
	Category    string
	Message     string
	Details     string
	DetailsLong bool
	UserID      int64
	IPAddress   string
	RequestURL  string
	CreatedAt   string
}

// EventsListData holds data for the events list template.
type EventsListData struct {
	Events     []EventRow
	Total      int64
	Category   string
	Categories []string
	Pagination Pagination
}

// detailsLengthThreshold is the max chars before details are collapsible.
const detailsLengthThreshold = 80

// eventCategories are the filter choices shown above the log.
var eventCategories = []string{
	model.EventCategoryAuth,
	model.EventCategoryProduct,
	model.EventCategoryUser,
	model.EventCategoryStorage,
	model.EventCategoryConfig,
	model.EventCategorySystem,
}

// List handles GET /admin/events. An unknown ?category= shows every event.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if !slices.Contains(eventCategories, category) {
		category = ""
	}

	page, err := h.events.ListEvents(r.Context(), category, pageParam(r), service.EventsPerPage)
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}

	rows := make([]EventRow, len(page.Items))
	for i, e := range page.Items {
		details := formatMetadata(e.Metadata)
		rows[i] = EventRow{
			ID:          e.ID,
			Level:       e.Level,
			Category:    e.Category,
			Message:     e.Message,
			Details:     details,
			DetailsLong: len(details) > detailsLengthThreshold,
			UserID:      e.UserID.Int64,
			IPAddress:   e.IpAddress,
			RequestURL:  e.RequestUrl,
			CreatedAt:   e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	renderPage(w, r, h.renderer, http.StatusOK, "admin/events/index", render.TemplateData{
		Title: "Event Log",
		Data: EventsListData{
			Events:     rows,
			Total:      page.Total,
			Category:   category,
			Categories: eventCategories,
			Pagination: buildPagination(page, redirectAdminEvents, r.URL.Query()),
		},
	})
}

// formatMetadata converts JSON metadata to readable text.
// Example: {"path":"/admin/products","error":"not found"} -> "error: not found, path: /admin/products"
func formatMetadata(metadata string) string {
	if metadata == "" || metadata == "{}" {
		return ""
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(metadata), &data); err != nil {
		return metadata
	}
	if len(data) == 0 {
		return ""
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		var strValue string
		switch v := data[key].(type) {
		case string:
			strValue = v
		case float64:
			strValue = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			strValue = strconv.FormatBool(v)
		case nil:
			strValue = "null"
		default:
			if b, err := json.Marshal(v); err == nil {
				strValue = string(b)
			}
		}
		parts = append(parts, key+": "+strValue)
	}

	return strings.Join(parts, ", ")
}
