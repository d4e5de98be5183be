// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/minishop-go/internal/middleware"
	"github.com/olegiv/minishop-go/internal/store"
	"github.com/olegiv/minishop-go/internal/version"
)

func healthRequest(user *store.User, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, RouteHealth+query, nil)
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), *user))
	}
	return req
}

func TestHealth_PublicResponse(t *testing.T) {
	env := newTestEnv(t)
	h := NewHealthHandler(env.db, env.files.Root(), version.Info{Version: "1.2.3"})

	for _, user := range []*store.User{nil, &env.customer} {
		rr := httptest.NewRecorder()
		h.Health(rr, healthRequest(user, ""))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get(HeaderContentType))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Len(t, body, 1, "only the status is exposed")
		assert.Contains(t, []any{statusHealthy, statusDegraded}, body["status"])
	}
}

func TestHealth_AdminDetails(t *testing.T) {
	env := newTestEnv(t)
	h := NewHealthHandler(env.db, env.files.Root(), version.Info{Version: "1.2.3"})

	rr := httptest.NewRecorder()
	h.Health(rr, healthRequest(&env.admin, ""))
	require.Equal(t, http.StatusOK, rr.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "1.2.3", status.Version)
	assert.Equal(t, statusHealthy, status.Checks["database"].Status)
	assert.Contains(t, status.Checks, "storage")
	assert.Nil(t, status.System)

	rr = httptest.NewRecorder()
	h.Health(rr, healthRequest(&env.admin, "?verbose=true"))
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	require.NotNil(t, status.System)
	assert.Positive(t, status.System.NumCPU)
}

func TestHealth_MissingStorage(t *testing.T) {
	env := newTestEnv(t)
	h := NewHealthHandler(env.db, filepath.Join(t.TempDir(), "missing"), version.Info{})

	rr := httptest.NewRecorder()
	h.Health(rr, healthRequest(&env.admin, ""))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, statusUnhealthy, status.Status)
	assert.Equal(t, statusUnhealthy, status.Checks["storage"].Status)
	assert.Equal(t, "dev", status.Version)
}

func TestHealth_ClosedDatabase(t *testing.T) {
	env := newTestEnv(t)
	h := NewHealthHandler(env.db, env.files.Root(), version.Info{})
	require.NoError(t, env.db.Close())

	rr := httptest.NewRecorder()
	h.Readiness(rr, healthRequest(nil, "/ready"))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "not_ready")

	rr = httptest.NewRecorder()
	h.Health(rr, healthRequest(nil, ""))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestLivenessAndReadiness(t *testing.T) {
	env := newTestEnv(t)
	h := NewHealthHandler(env.db, env.files.Root(), version.Info{})

	rr := httptest.NewRecorder()
	h.Liveness(rr, healthRequest(nil, "/live"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "alive")

	rr = httptest.NewRecorder()
	h.Readiness(rr, healthRequest(nil, "/ready"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ready")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.bytes))
	}
}
