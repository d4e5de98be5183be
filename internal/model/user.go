// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain types shared across the store, service and
// handler layers: user roles, product display rules, event and MIME constants.
package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// Role is the closed set of user roles.
type Role string

// User roles.
const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// DefaultRole is assigned when no role is given.
const DefaultRole = RoleCustomer

// ErrUnknownRole is returned when a role string is not one of the known roles.
var ErrUnknownRole = errors.New("unknown role")

// Roles returns all known roles in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleCustomer}
}

// ParseRole converts a string to a Role. An empty string yields DefaultRole.
func ParseRole(s string) (Role, error) {
	switch Role(strings.TrimSpace(s)) {
	case "":
		return DefaultRole, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleCustomer:
		return RoleCustomer, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// IsAdmin reports whether the role grants access to the admin catalog.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// Label returns the human readable role name.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleCustomer:
		return "Customer"
	default:
		return string(r)
	}
}

// Scan implements sql.Scanner. Unknown values stored in the database are rejected.
func (r *Role) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*r = DefaultRole
		return nil
	default:
		return fmt.Errorf("scanning role: unsupported type %T", src)
	}

	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value implements driver.Valuer.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, string(r))
	}
	return string(r), nil
}
