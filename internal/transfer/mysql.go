// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"
)

// tablePrefixPattern allows only safe characters in table prefixes.
var tablePrefixPattern = regexp.MustCompile(`^[a-zA-Z0-9_]{0,20}$`)

// sanitizeTablePrefix validates that a table prefix contains only safe characters.
func sanitizeTablePrefix(prefix string) (string, error) {
	if !tablePrefixPattern.MatchString(prefix) {
		return "", fmt.Errorf("invalid table prefix %q: only letters, digits and underscores allowed (max 20 chars)", prefix)
	}
	return prefix, nil
}

// normalizeDSN parses a go-sql-driver DSN and turns on the options the
// reader depends on: DATETIME columns scanned as time.Time in UTC.
func normalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return cfg.FormatDSN(), nil
}

// MySQLSource reads the legacy tables from a MySQL database.
type MySQLSource struct {
	db     *sql.DB
	prefix string
}

// NewMySQLSource connects to the legacy database. tablePrefix is prepended
// to the table names and may be empty.
func NewMySQLSource(ctx context.Context, dsn, tablePrefix string) (*MySQLSource, error) {
	prefix, err := sanitizeTablePrefix(tablePrefix)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &MySQLSource{db: db, prefix: prefix}, nil
}

// Close closes the database connection.
func (s *MySQLSource) Close() error {
	return s.db.Close()
}

// Users implements Source.
func (s *MySQLSource) Users(ctx context.Context) ([]LegacyUser, error) {
	query := fmt.Sprintf(`SELECT id, name, email, password, role, email_verified_at, created_at, updated_at
		FROM %susers ORDER BY id`, s.prefix)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []LegacyUser
	for rows.Next() {
		var u LegacyUser
		var role sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role,
			&u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Role = role.String
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// Products implements Source.
func (s *MySQLSource) Products(ctx context.Context) ([]LegacyProduct, error) {
	query := fmt.Sprintf(`SELECT id, name, CAST(price AS CHAR), description, image_path, available, created_at, updated_at
		FROM %sproducts ORDER BY id`, s.prefix)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []LegacyProduct
	for rows.Next() {
		var p LegacyProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.ImagePath,
			&p.Available, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}
