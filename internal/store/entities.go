// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "github.com/olegiv/minishop-go/internal/model"

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role.IsAdmin()
}

// IsEmailVerified reports whether the user's email has been verified.
func (u User) IsEmailVerified() bool {
	return u.EmailVerifiedAt.Valid
}

// FormattedPrice returns the display price, e.g. "$79.99".
func (p Product) FormattedPrice() string {
	return model.FormatPrice(p.Price)
}

// HasImage reports whether the product references a stored image.
func (p Product) HasImage() bool {
	return p.ImagePath.Valid && p.ImagePath.String != ""
}

// ImageKey returns the storage key of the product image, or "" if none.
func (p Product) ImageKey() string {
	if !p.HasImage() {
		return ""
	}
	return p.ImagePath.String
}

// AvailabilityLabel returns the storefront availability label.
func (p Product) AvailabilityLabel() string {
	return model.AvailabilityLabel(p.Available)
}

// AdminAvailabilityLabel returns the admin list status label.
func (p Product) AdminAvailabilityLabel() string {
	return model.AdminAvailabilityLabel(p.Available)
}
