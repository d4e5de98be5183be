// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegiv/minishop-go/internal/auth"
	"github.com/olegiv/minishop-go/internal/model"
)

// Seeded account credentials.
const (
	SeedAdminEmail    = "admin@minishop.com"
	SeedAdminName     = "Admin User"
	SeedCustomerEmail = "client@minishop.com"
	SeedCustomerName  = "Customer User"
	SeedPassword      = "password"
)

// SeedUser describes a fixture account.
type SeedUser struct {
	Name  string
	Email string
	Role  model.Role
}

// SeedProduct describes a fixture product.
type SeedProduct struct {
	Name        string
	Price       string
	Description string
	ImagePath   string
	Available   bool
}

// SeedUsers are the fixture accounts. Both share SeedPassword.
var SeedUsers = []SeedUser{
	{Name: SeedAdminName, Email: SeedAdminEmail, Role: model.RoleAdmin},
	{Name: SeedCustomerName, Email: SeedCustomerEmail, Role: model.RoleCustomer},
}

// SeedProducts is the fixture catalog. Exactly one entry is unavailable.
var SeedProducts = []SeedProduct{
	{
		Name:        "Wireless Bluetooth Headphones",
		Price:       "79.99",
		Description: "Premium wireless headphones with active noise cancellation, 30-hour battery life, and superior sound quality. Perfect for music lovers and professionals.",
		ImagePath:   "products/headphones.jpg",
		Available:   true,
	},
	{
		Name:        "Smart Fitness Watch",
		Price:       "199.99",
		Description: "Track your fitness goals with this advanced smartwatch featuring heart rate monitoring, GPS, sleep tracking, and 50+ sport modes.",
		ImagePath:   "products/fitness-watch.jpg",
		Available:   true,
	},
	{
		Name:        "Portable Power Bank 20000mAh",
		Price:       "45.99",
		Description: "High-capacity power bank with fast charging technology. Charge multiple devices simultaneously with dual USB ports and USB-C output.",
		ImagePath:   "products/power-bank.jpg",
		Available:   true,
	},
	{
		Name:        "Mechanical Gaming Keyboard",
		Price:       "129.99",
		Description: "RGB backlit mechanical keyboard with customizable keys, anti-ghosting technology, and premium build quality for professional gamers.",
		ImagePath:   "products/keyboard.jpg",
		Available:   true,
	},
	{
		Name:        "4K Webcam with Ring Light",
		Price:       "89.99",
		Description: "Professional 4K webcam with built-in ring light, auto-focus, and noise-canceling microphone. Ideal for streaming and video conferences.",
		ImagePath:   "products/webcam.jpg",
		Available:   true,
	},
	{
		Name:        "Ergonomic Office Chair",
		Price:       "299.99",
		Description: "Adjustable ergonomic chair with lumbar support, breathable mesh back, and 360-degree swivel. Designed for all-day comfort.",
		ImagePath:   "products/office-chair.jpg",
		Available:   false,
	},
	{
		Name:        "USB-C Docking Station",
		Price:       "149.99",
		Description: "11-in-1 USB-C hub with dual HDMI, Ethernet, SD card reader, and multiple USB ports. Transform your laptop into a workstation.",
		ImagePath:   "products/docking-station.jpg",
		Available:   true,
	},
	{
		Name:        "Wireless Gaming Mouse",
		Price:       "69.99",
		Description: "Lightweight wireless gaming mouse with 16000 DPI sensor, programmable buttons, and 70-hour battery life.",
		ImagePath:   "products/gaming-mouse.jpg",
		Available:   true,
	},
	{
		Name:        "Laptop Stand with Cooling",
		Price:       "39.99",
		Description: "Adjustable aluminum laptop stand with dual cooling fans. Improves posture and keeps your laptop cool during intensive tasks.",
		ImagePath:   "products/laptop-stand.jpg",
		Available:   true,
	},
	{
		Name:        "Blue Light Blocking Glasses",
		Price:       "24.99",
		Description: "Stylish glasses that filter harmful blue light from screens. Reduce eye strain and improve sleep quality.",
		ImagePath:   "products/glasses.jpg",
		Available:   true,
	},
}

// Seed creates the fixture users and products. It does nothing when any
// user already exists, so it is safe to run on every start.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	count, err := queries.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		slog.Info("users already exist, skipping seed", "users", count)
		return nil
	}

	passwordHash, err := auth.HashPassword(SeedPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	err = WithTx(ctx, db, func(q *Queries) error {
		for _, u := range SeedUsers {
			if _, err := q.CreateUser(ctx, CreateUserParams{
				Name:            u.Name,
				Email:           u.Email,
				PasswordHash:    passwordHash,
				Role:            u.Role,
				EmailVerifiedAt: sql.NullTime{Time: now, Valid: true},
				CreatedAt:       now,
				UpdatedAt:       now,
			}); err != nil {
				return fmt.Errorf("creating user %s: %w", u.Email, err)
			}
		}

		for _, p := range SeedProducts {
			price, err := decimal.NewFromString(p.Price)
			if err != nil {
				return fmt.Errorf("parsing price of %s: %w", p.Name, err)
			}
			if _, err := q.CreateProduct(ctx, CreateProductParams{
				Name:        p.Name,
				Price:       price,
				Description: p.Description,
				ImagePath:   sql.NullString{String: p.ImagePath, Valid: p.ImagePath != ""},
				Available:   p.Available,
				CreatedAt:   now,
				UpdatedAt:   now,
			}); err != nil {
				return fmt.Errorf("creating product %s: %w", p.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("seeded database",
		"users", len(SeedUsers),
		"products", len(SeedProducts),
		"admin_email", SeedAdminEmail,
	)
	return nil
}

// SeedImageKeys returns the storage keys referenced by the fixture catalog.
func SeedImageKeys() []string {
	keys := make([]string, 0, len(SeedProducts))
	for _, p := range SeedProducts {
		if p.ImagePath != "" {
			keys = append(keys, p.ImagePath)
		}
	}
	return keys
}
