// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAndHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		statusCode int
		logMsg     string
	}{
		{"bad request", "Bad Request", http.StatusBadRequest, "validation failed"},
		{"not found", "Not Found", http.StatusNotFound, "resource missing"},
		{"internal error", "Internal Server Error", http.StatusInternalServerError, "database error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			logAndHTTPError(w, tt.message, tt.statusCode, tt.logMsg)

			if w.Code != tt.statusCode {
				t.Errorf("status code = %d, want %d", w.Code, tt.statusCode)
			}

			body := w.Body.String()
			if body == "" {
				t.Error("body should not be empty")
			}
		})
	}
}

func TestLogAndInternalError(t *testing.T) {
	w := httptest.NewRecorder()
	logAndInternalError(w, "database connection failed", "error", errors.New("connection refused"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestParseIDParam(t *testing.T) {
	tests := []struct {
		raw    string
		wantID int64
		wantOK bool
	}{
		{"42", 42, true},
		{"1", 1, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			r := requestWithURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": tt.raw})
			id, ok := parseIDParam(r)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestParseFormOrRedirect(t *testing.T) {
	env := newTestEnv(t)

	t.Run("valid form", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a%40b.c"))
		r.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		require.True(t, parseFormOrRedirect(w, r, env.renderer, redirectLogin))
		assert.Equal(t, "a@b.c", r.PostFormValue("email"))
	})

	t.Run("malformed form", func(t *testing.T) {
		var flashed bool
		h := env.sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flashed = !parseFormOrRedirect(w, r, env.renderer, redirectLogin)
		}))

		r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("%zz"))
		r.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		require.True(t, flashed)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, redirectLogin, w.Header().Get("Location"))

		cookie := env.responseCookie(w, nil)
		require.NotNil(t, cookie)
		assert.Equal(t, MsgInvalidForm, env.flash(t, cookie))
	})
}
