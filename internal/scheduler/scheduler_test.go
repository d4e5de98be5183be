// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/store"
	"github.com/olegiv/minishop-go/internal/testutil"
)

func TestValidateSpec(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"", false},
		{"@hourly", false},
		{"@daily", false},
		{"@every 30m", false},
		{"*/15 * * * *", false},
		{"0 3 * * *", false},
		{"every hour", true},
		{"* * *", true},
		{"61 * * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			err := ValidateSpec(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSpec(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestScheduler_StartStop(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	s := New(db, testutil.TestStorage(t), testutil.TestLogger(), Config{
		OrphanSweepSpec: "@hourly",
		OrphanGrace:     time.Hour,
		EventPruneSpec:  "@daily",
		EventRetention:  24 * time.Hour,
	})
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()
}

func TestScheduler_StartDisabledJobs(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	s := New(db, testutil.TestStorage(t), testutil.TestLogger(), Config{
		EventPruneSpec: "@daily",
	})
	require.NoError(t, s.Start())
	assert.Empty(t, s.cron.Entries(), "no sweep spec and no retention")
	s.Stop()
}

func TestScheduler_StartInvalidSpec(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	s := New(db, testutil.TestStorage(t), testutil.TestLogger(), Config{OrphanSweepSpec: "bogus"})
	assert.Error(t, s.Start())
}

func TestSweepOrphanImages(t *testing.T) {
	db, cleanup := testutil.SeededDB(t)
	t.Cleanup(cleanup)
	files := testutil.TestStorage(t)
	ctx := context.Background()

	old := time.Now().Add(-2 * time.Hour)
	write := func(key string, modTime time.Time) {
		t.Helper()
		require.NoError(t, files.PutKey(ctx, key, []byte("img")))
		path := filepath.Join(files.Root(), filepath.FromSlash(key))
		require.NoError(t, os.Chtimes(path, modTime, modTime))
	}

	write("products/headphones.jpg", old)
	write("products/orphan-old.jpg", old)
	write("products/orphan-fresh.jpg", time.Now())
	write("other/orphan-old.jpg", old)

	s := New(db, files, testutil.TestLogger(), Config{OrphanGrace: time.Hour})

	deleted, err := s.SweepOrphanImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"products/orphan-old.jpg"}, deleted)

	for key, want := range map[string]bool{
		"products/headphones.jpg":   true,
		"products/orphan-old.jpg":   false,
		"products/orphan-fresh.jpg": true,
		"other/orphan-old.jpg":      true,
	} {
		exists, err := files.Exists(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, exists, key)
	}

	events, err := store.New(db).ListEventsByCategory(ctx, store.ListEventsByCategoryParams{
		Category: model.EventCategoryStorage,
		Limit:    10,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Orphaned images removed", events[0].Message)

	// A second run has nothing left to do and records nothing.
	deleted, err = s.SweepOrphanImages(ctx)
	require.NoError(t, err)
	assert.Empty(t, deleted)

	count, err := store.New(db).CountEventsByCategory(ctx, model.EventCategoryStorage)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSweepOrphanImages_EmptyStore(t *testing.T) {
	db, cleanup := testutil.SeededDB(t)
	t.Cleanup(cleanup)

	s := New(db, testutil.TestStorage(t), testutil.TestLogger(), Config{})
	deleted, err := s.SweepOrphanImages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, deleted)
}

func TestPruneEvents(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()
	queries := store.New(db)

	for _, age := range []time.Duration{48 * time.Hour, time.Hour} {
		_, err := queries.CreateEvent(ctx, store.CreateEventParams{
			Level:     model.EventLevelInfo,
			Category:  model.EventCategorySystem,
			Message:   "aged " + age.String(),
			UserID:    sql.NullInt64{},
			Metadata:  "{}",
			CreatedAt: time.Now().Add(-age),
		})
		require.NoError(t, err)
	}

	disabled := New(db, testutil.TestStorage(t), testutil.TestLogger(), Config{})
	require.NoError(t, disabled.PruneEvents(ctx))
	count, err := queries.CountEvents(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count, "zero retention keeps everything")

	s := New(db, testutil.TestStorage(t), testutil.TestLogger(), Config{EventRetention: 24 * time.Hour})
	require.NoError(t, s.PruneEvents(ctx))

	events, err := queries.ListEvents(ctx, store.ListEventsParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "aged 1h0m0s", events[0].Message)
}
