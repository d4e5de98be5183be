// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/store"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{"short", "Mug", 50, "Mug"},
		{"exact", "12345", 5, "12345"},
		{"cut", "Premium wireless headphones", 15, "Premium wireles..."},
		{"trailing space trimmed", "Premium wireless headphones", 17, "Premium wireless..."},
		{"multibyte", "Кофейная кружка", 7, "Кофейна..."},
		{"zero limit", "Mug", 0, "Mug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.limit); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.want)
			}
		})
	}
}

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "plain text",
			input:    "Adjustable ergonomic chair.",
			contains: []string{"<p>Adjustable ergonomic chair.</p>"},
		},
		{
			name:     "emphasis and list",
			input:    "**Fast** charging\n\n- USB-C\n- USB-A",
			contains: []string{"<strong>Fast</strong>", "<li>USB-C</li>"},
		},
		{
			name:     "raw html is not rendered",
			input:    "<script>alert(1)</script>Nice",
			excludes: []string{"<script>"},
		},
		{
			name:     "javascript link dropped",
			input:    "[click](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(Markdown(tt.input))
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Markdown(%q) = %q, want it to contain %q", tt.input, got, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Markdown(%q) = %q, must not contain %q", tt.input, got, s)
				}
			}
		})
	}
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		base string
		page int
		want string
	}{
		{"/", 1, "/"},
		{"/", 2, "/?page=2"},
		{"/admin/products", 3, "/admin/products?page=3"},
		{"/admin/events?category=auth", 2, "/admin/events?category=auth&page=2"},
		{"/admin/events?category=auth&page=4", 1, "/admin/events?category=auth"},
	}

	for _, tt := range tests {
		if got := PageURL(tt.base, tt.page); got != tt.want {
			t.Errorf("PageURL(%q, %d) = %q, want %q", tt.base, tt.page, got, tt.want)
		}
	}
}

func TestTemplateFuncs(t *testing.T) {
	r := &Renderer{storageURL: func(key string) string { return "/files/" + key }}
	funcs := r.TemplateFuncs()

	t.Run("formatDate", func(t *testing.T) {
		formatDate := funcs["formatDate"].(func(time.Time) string)
		if got := formatDate(time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)); got != "Mar 15, 2025" {
			t.Errorf("formatDate() = %q, want %q", got, "Mar 15, 2025")
		}
	})

	t.Run("storageURL", func(t *testing.T) {
		storageURL := funcs["storageURL"].(func(string) string)
		if got := storageURL("products/mug.png"); got != "/files/products/mug.png" {
			t.Errorf("storageURL() = %q", got)
		}
		if got := storageURL(""); got != "" {
			t.Errorf("storageURL(empty) = %q, want empty", got)
		}
	})

	t.Run("productImage", func(t *testing.T) {
		productImage := funcs["productImage"].(func(store.Product) string)
		withImage := store.Product{ImagePath: sql.NullString{String: "products/mug.png", Valid: true}}
		if got := productImage(withImage); got != "/files/products/mug.png" {
			t.Errorf("productImage() = %q", got)
		}
		if got := productImage(store.Product{}); got != "" {
			t.Errorf("productImage(no image) = %q, want empty", got)
		}
	})

	t.Run("isAdmin", func(t *testing.T) {
		isAdmin := funcs["isAdmin"].(func(*store.User) bool)
		tests := []struct {
			name string
			user *store.User
			want bool
		}{
			{"guest", nil, false},
			{"admin", &store.User{Role: model.RoleAdmin}, true},
			{"customer", &store.User{Role: model.RoleCustomer}, false},
		}
		for _, tt := range tests {
			if got := isAdmin(tt.user); got != tt.want {
				t.Errorf("isAdmin(%s) = %v, want %v", tt.name, got, tt.want)
			}
		}
	})

	t.Run("prettyJSON", func(t *testing.T) {
		prettyJSON := funcs["prettyJSON"].(func(string) string)
		if got := prettyJSON("{}"); got != "" {
			t.Errorf("prettyJSON({}) = %q, want empty", got)
		}
		if got := prettyJSON(`{"a":1}`); got != "{\n  \"a\": 1\n}" {
			t.Errorf("prettyJSON() = %q", got)
		}
		if got := prettyJSON("not json"); got != "not json" {
			t.Errorf("prettyJSON(invalid) = %q", got)
		}
	})

	t.Run("seq", func(t *testing.T) {
		seq := funcs["seq"].(func(int, int) []int)
		if got := seq(1, 3); len(got) != 3 || got[0] != 1 || got[2] != 3 {
			t.Errorf("seq(1, 3) = %v", got)
		}
	})
}
