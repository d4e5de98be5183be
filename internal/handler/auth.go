// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/minishop-go/internal/middleware"
	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/render"
	"github.com/olegiv/minishop-go/internal/service"
	"github.com/olegiv/minishop-go/internal/store"
)

// Authentication messages.
const (
	MsgInvalidCredentials = "These credentials do not match our records."
	MsgLoggedOut          = "You have been logged out."
	MsgRegistered         = "Welcome to MiniShop, %s!"
	MsgWelcomeBack        = "Welcome back, %s!"
)

// AuthHandler handles login, logout and registration.
type AuthHandler struct {
	users           *service.UserService
	eventService    *service.EventService
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginGuard      *middleware.LoginGuard
}

// NewAuthHandler creates a new AuthHandler. guard may be nil to disable
// account lockout.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, guard *middleware.LoginGuard) *AuthHandler {
	return &AuthHandler{
		users:           service.NewUserService(db),
		eventService:    service.NewEventService(db),
		renderer:        renderer,
		sessionManager:  sm,
		loginGuard:      guard,
	}
}

// AuthFormData holds data for the login and registration forms.
type AuthFormData struct {
	Name   string
	Email  string
	Errors map[string]string
}

// LoginForm handles GET /login. Signed-in users are sent to their landing page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if user := middleware.GetUser(r); user != nil {
		http.Redirect(w, r, landingPage(*user), http.StatusSeeOther)
		return
	}

	h.renderLogin(w, r, http.StatusOK, AuthFormData{Errors: map[string]string{}})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := service.NormalizeEmail(r.PostFormValue(service.FieldEmail))
	password := r.PostFormValue(service.FieldPassword)
	clientIP := middleware.GetClientIP(r)
	form := AuthFormData{Email: email, Errors: map[string]string{}}

	if email == "" {
		form.Errors[service.FieldEmail] = "The email field is required."
	}
	if password == "" {
		form.Errors[service.FieldPassword] = "The password field is required."
	}
	if len(form.Errors) > 0 {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	if h.loginGuard != nil {
		if status := h.loginGuard.Check(r, email); status.Locked {
			form.Errors[service.FieldEmail] = status.Message()
			h.renderLogin(w, r, http.StatusTooManyRequests, form)
			return
		}
	}

	user, err := h.users.Authenticate(r.Context(), email, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			logAndInternalError(w, "database error during login", "error", err)
			return
		}
		h.loginFailed(w, r, user, form)
		return
	}

	if h.loginGuard != nil {
		h.loginGuard.Succeed(email)
	}

	if !h.startSession(w, r, user) {
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "role", user.Role.String())
	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged in", &user.ID, clientIP, r.URL.Path, map[string]any{"email": user.Email})

	flashSuccess(w, r, h.renderer, landingPage(user), fmt.Sprintf(MsgWelcomeBack, user.Name))
}

// loginFailed records a failed attempt and re-renders the form. user is the
// matched account for a wrong password, or the zero value for an unknown email.
func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, user store.User, form AuthFormData) {
	clientIP := middleware.GetClientIP(r)

	var userID *int64
	message := "Login failed: user not found"
	if user.ID > 0 {
		userID = &user.ID
		message = "Login failed: invalid password"
	}
	slog.Debug("failed login attempt", "email", form.Email)
	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, message, userID, clientIP, r.URL.Path, map[string]any{"email": form.Email})

	form.Errors[service.FieldEmail] = MsgInvalidCredentials
	status := http.StatusUnprocessableEntity

	// Unknown emails count too, so lockout does not reveal which accounts exist.
	if h.loginGuard != nil {
		lock := h.loginGuard.Fail(r, form.Email, userID)
		if lock.Locked {
			form.Errors[service.FieldEmail] = lock.Message()
			status = http.StatusTooManyRequests
		} else if warning := lock.Warning(); warning != "" {
			form.Errors[service.FieldPassword] = warning
		}
	}

	h.renderLogin(w, r, status, form)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDPtr(r)
	if userID != nil {
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged out", userID, middleware.GetClientIP(r), r.URL.Path, nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", middleware.GetUserID(r))
	flashAndRedirect(w, r, h.renderer, RouteRoot, MsgLoggedOut, render.FlashInfo)
}

// RegisterForm handles GET /register.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if user := middleware.GetUser(r); user != nil {
		http.Redirect(w, r, landingPage(*user), http.StatusSeeOther)
		return
	}

	h.renderRegister(w, r, http.StatusOK, AuthFormData{Errors: map[string]string{}})
}

// Register handles POST /register. New accounts are customers and are
// signed in right away.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectRegister) {
		return
	}

	input := service.RegisterInput{
		Name:                 r.PostFormValue(service.FieldName),
		Email:                r.PostFormValue(service.FieldEmail),
		Password:             r.PostFormValue(service.FieldPassword),
		PasswordConfirmation: r.PostFormValue(service.FieldPasswordConfirmation),
	}

	user, err := h.users.Register(r.Context(), input)
	if err != nil {
		if verr, ok := service.AsValidationError(err); ok {
			h.renderRegister(w, r, http.StatusUnprocessableEntity, AuthFormData{
				Name:   input.Name,
				Email:  input.Email,
				Errors: verr.Fields,
			})
			return
		}
		logAndInternalError(w, "failed to register user", "error", err)
		return
	}

	if !h.startSession(w, r, user) {
		return
	}

	_ = h.eventService.LogUserEvent(r.Context(), model.EventLevelInfo, "User registered", &user.ID, middleware.GetClientIP(r), r.URL.Path, map[string]any{"email": user.Email})

	flashSuccess(w, r, h.renderer, RouteRoot, fmt.Sprintf(MsgRegistered, user.Name))
}

// startSession renews the session token and binds it to user. It writes a
// 500 and returns false when the session store fails.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user store.User) bool {
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return false
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)
	return true
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, form AuthFormData) {
	renderPage(w, r, h.renderer, status, "auth/login", render.TemplateData{
		Title: "Login",
		Data:  form,
	})
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, status int, form AuthFormData) {
	renderPage(w, r, h.renderer, status, "auth/register", render.TemplateData{
		Title: "Register",
		Data:  form,
	})
}

// landingPage is where a user goes after signing in.
func landingPage(user store.User) string {
	if user.IsAdmin() {
		return redirectAdminProducts
	}
	return RouteRoot
}
