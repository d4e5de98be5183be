// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer imports users and products from the legacy MiniShop
// MySQL database into the local store.
package transfer

import (
	"context"
	"database/sql"
	"time"
)

// LegacyUser is a row of the legacy users table.
type LegacyUser struct {
	ID              int64
	Name            string
	Email           string
	PasswordHash    string
	Role            string
	EmailVerifiedAt sql.NullTime
	CreatedAt       sql.NullTime
	UpdatedAt       sql.NullTime
}

// LegacyProduct is a row of the legacy products table. Price is kept as the
// database's decimal text.
type LegacyProduct struct {
	ID          int64
	Name        string
	Price       string
	Description sql.NullString
	ImagePath   sql.NullString
	Available   bool
	CreatedAt   sql.NullTime
	UpdatedAt   sql.NullTime
}

// Source yields the legacy rows to import.
type Source interface {
	Users(ctx context.Context) ([]LegacyUser, error)
	Products(ctx context.Context) ([]LegacyProduct, error)
	Close() error
}

// timeOr returns t when it is set, fallback otherwise.
func timeOr(t sql.NullTime, fallback time.Time) time.Time {
	if t.Valid && !t.Time.IsZero() {
		return t.Time
	}
	return fallback
}
