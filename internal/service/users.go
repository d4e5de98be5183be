// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/olegiv/minishop-go/internal/auth"
	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/store"
)

// ErrInvalidCredentials is returned when an email and password do not match
// an account. Unknown emails and wrong passwords are not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Registration field names.
const (
	FieldEmail                = "email"
	FieldPassword             = "password"
	FieldPasswordConfirmation = "password_confirmation"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// RegisterInput is the raw registration form.
type RegisterInput struct {
	Name                 string `form:"name" validate:"required,max=255"`
	Email                string `form:"email" validate:"required,email,max=255"`
	Password             string `form:"password" validate:"required,min=8"`
	PasswordConfirmation string `form:"password_confirmation"`
}

// UserService manages customer accounts and credential checks.
type UserService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{
		queries: store.New(db),
		now:     time.Now,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates in and creates a customer account. Validation failures,
// including an email that is already taken, are returned as *ValidationError.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (store.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)

	verr := NewValidationError()
	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return store.User{}, fmt.Errorf("validating registration: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), fieldMessage(fe))
		}
	}
	if !verr.Has(FieldPassword) && in.Password != in.PasswordConfirmation {
		verr.Add(FieldPassword, "The password field confirmation does not match.")
	}
	if !verr.Has(FieldEmail) {
		_, err := s.queries.GetUserByEmail(ctx, in.Email)
		switch {
		case err == nil:
			verr.Add(FieldEmail, "The email has already been taken.")
		case !errors.Is(err, sql.ErrNoRows):
			return store.User{}, fmt.Errorf("checking email: %w", err)
		}
	}
	if !verr.Empty() {
		return store.User{}, verr
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return store.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return store.User{}, fmt.Errorf("creating user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate checks email and password. On success the last login time
// is updated and a hash with outdated parameters (or a legacy bcrypt hash)
// is replaced with a fresh argon2id hash. For a wrong password the matched
// user is returned alongside ErrInvalidCredentials so callers can audit it.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (store.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return store.User{}, ErrInvalidCredentials
	}

	user, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.User{}, ErrInvalidCredentials
		}
		return store.User{}, fmt.Errorf("loading user: %w", err)
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err, "user_id", user.ID)
		return store.User{}, ErrInvalidCredentials
	}
	if !valid {
		return user, ErrInvalidCredentials
	}

	now := s.now()
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    now,
				ID:           user.ID,
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			} else {
				user.PasswordHash = newHash
				slog.Info("password re-hashed with updated parameters", "user_id", user.ID)
			}
		}
	}

	if err := s.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: now, Valid: true},
		ID:          user.ID,
	}); err != nil {
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
	} else {
		user.LastLoginAt = sql.NullTime{Time: now, Valid: true}
	}

	return user, nil
}
