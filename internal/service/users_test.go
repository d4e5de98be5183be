// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/olegiv/minishop-go/internal/auth"
	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/store"
	"github.com/olegiv/minishop-go/internal/testutil"
)

func validRegistration() RegisterInput {
	return RegisterInput{
		Name:                 "Jane Doe",
		Email:                "  Jane@Example.com ",
		Password:             "correct horse",
		PasswordConfirmation: "correct horse",
	}
}

func TestRegister(t *testing.T) {
	db, cleanup := testutil.SeededDB(t)
	defer cleanup()
	svc := NewUserService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", user.Name)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, model.RoleCustomer, user.Role)
	assert.False(t, user.IsAdmin())
	assert.True(t, strings.HasPrefix(user.PasswordHash, "$argon2id$"))

	_, err = svc.Authenticate(ctx, "jane@example.com", "correct horse")
	assert.NoError(t, err)
}

func TestRegister_Validation(t *testing.T) {
	db, cleanup := testutil.SeededDB(t)
	defer cleanup()
	svc := NewUserService(db)

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
		msg    string
	}{
		{"missing name", func(in *RegisterInput) { in.Name = " " }, FieldName, "The name field is required."},
		{"long name", func(in *RegisterInput) { in.Name = strings.Repeat("a", 256) }, FieldName, "The name field must not be greater than 255 characters."},
		{"missing email", func(in *RegisterInput) { in.Email = "" }, FieldEmail, "The email field is required."},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, FieldEmail, "The email field must be a valid email address."},
		{"taken email", func(in *RegisterInput) { in.Email = "CLIENT@minishop.com" }, FieldEmail, "The email has already been taken."},
		{"short password", func(in *RegisterInput) { in.Password, in.PasswordConfirmation = "short", "short" }, FieldPassword, "The password field must be at least 8 characters."},
		{"confirmation mismatch", func(in *RegisterInput) { in.PasswordConfirmation = "different" }, FieldPassword, "The password field confirmation does not match."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			verr, ok := AsValidationError(err)
			require.True(t, ok, "expected ValidationError, got %v", err)
			assert.Equal(t, tt.msg, verr.Fields[tt.field])
		})
	}

	count, err := store.New(db).CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "failed registrations must not create users")
}

func TestAuthenticate(t *testing.T) {
	db, cleanup := testutil.SeededDB(t)
	defer cleanup()
	svc := NewUserService(db)
	ctx := context.Background()

	t.Run("valid admin", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, " Admin@MiniShop.com", store.SeedPassword)
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
		assert.True(t, user.LastLoginAt.Valid)
	})

	t.Run("wrong password returns the user", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, store.SeedCustomerEmail, "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, store.SeedCustomerEmail, user.Email)
	})

	t.Run("unknown email", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "nobody@minishop.com", store.SeedPassword)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Zero(t, user.ID)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthenticate_RehashesLegacyBcrypt(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	_, err = store.New(db).CreateUser(ctx, store.CreateUserParams{
		Name:         "Legacy User",
		Email:        "legacy@minishop.com",
		PasswordHash: string(legacy),
		Role:         model.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)

	user, err := NewUserService(db).Authenticate(ctx, "legacy@minishop.com", "password")
	require.NoError(t, err)
	assert.False(t, auth.NeedsRehash(user.PasswordHash))

	stored, err := store.New(db).GetUserByEmail(ctx, "legacy@minishop.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
}
