// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty hash")
	}
	t.Logf("Generated hash: %s", hash)
}

func TestCheckPassword_Correct(t *testing.T) {
	hash, err := HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("password", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !valid {
		t.Fatal("Correct password was rejected")
	}
}

func TestCheckPassword_Wrong(t *testing.T) {
	hash, err := HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("wrongpassword", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if valid {
		t.Fatal("Wrong password was accepted")
	}
}

func TestCheckPassword_DBHash(t *testing.T) {
	// This is the actual hash stored in the database for "changeme"
	dbHash := "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544"

	valid, err := CheckPassword("changeme", dbHash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !valid {
		t.Fatal("DB hash rejected correct password 'changeme'")
	}

	// Also verify wrong password is rejected
	valid, err = CheckPassword("wrongpassword", dbHash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if valid {
		t.Fatal("DB hash accepted wrong password")
	}
}

func TestCheckPassword_Bcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{"2a correct", string(hash), "password", true},
		{"2a wrong", string(hash), "nope", false},
		{"2y correct", "$2y$" + strings.TrimPrefix(string(hash), "$2a$"), "password", true},
		{"2y wrong", "$2y$" + strings.TrimPrefix(string(hash), "$2a$"), "nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckPassword(tt.password, tt.hash)
			if err != nil {
				t.Fatalf("CheckPassword error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckPassword = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckPassword_MalformedBcrypt(t *testing.T) {
	if _, err := CheckPassword("password", "$2y$10$short"); err == nil {
		t.Error("expected error for malformed bcrypt hash")
	}
}

func TestNeedsRehash(t *testing.T) {
	current, err := HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	tests := []struct {
		name string
		hash string
		want bool
	}{
		{"current argon2id", current, false},
		{"old argon2id params", "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544", true},
		{"2y bcrypt", "$2y$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi", true},
		{"garbage", "plain", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsRehash(tt.hash); got != tt.want {
				t.Errorf("NeedsRehash = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsBcryptHash(t *testing.T) {
	for hash, want := range map[string]bool{
		"$2a$10$abc":     true,
		"$2b$10$abc":     true,
		"$2y$10$abc":     true,
		"$argon2id$v=19": false,
		"":               false,
	} {
		if got := IsBcryptHash(hash); got != want {
			t.Errorf("IsBcryptHash(%q) = %v, want %v", hash, got, want)
		}
	}
}
