// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/minishop-go/internal/model"
	"github.com/olegiv/minishop-go/internal/service"
)

// LoginRateLimitMessage is the 429 body for a client IP posting to the login
// form too quickly.
const LoginRateLimitMessage = "Too many login attempts. Please try again later."

// lockoutWarnBelow is the number of remaining attempts at which the login
// form starts warning about the coming lockout.
const lockoutWarnBelow = 3

// LoginGuardConfig configures a LoginGuard. Zero fields take the values of
// DefaultLoginGuardConfig.
type LoginGuardConfig struct {
	IPRateLimit float64 // login POSTs per second per client IP
	IPBurst     int
	MaxFailures int           // failures within Window that lock the account
	Window      time.Duration // failures older than this are forgotten
	Lockout     time.Duration // first lockout; each repeat doubles it
	MaxLockout  time.Duration
}

// DefaultLoginGuardConfig returns the production settings: a burst of five
// login POSTs then one every two seconds per IP, and a 15 minute lockout
// after five failures that grows to at most a day.
func DefaultLoginGuardConfig() LoginGuardConfig {
	return LoginGuardConfig{
		IPRateLimit: 0.5,
		IPBurst:     5,
		MaxFailures: 5,
		Window:      15 * time.Minute,
		Lockout:     15 * time.Minute,
		MaxLockout:  24 * time.Hour,
	}
}

func (c LoginGuardConfig) withDefaults() LoginGuardConfig {
	def := DefaultLoginGuardConfig()
	if c.IPRateLimit <= 0 {
		c.IPRateLimit = def.IPRateLimit
	}
	if c.IPBurst <= 0 {
		c.IPBurst = def.IPBurst
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = def.MaxFailures
	}
	if c.Window <= 0 {
		c.Window = def.Window
	}
	if c.Lockout <= 0 {
		c.Lockout = def.Lockout
	}
	if c.MaxLockout < c.Lockout {
		c.MaxLockout = max(def.MaxLockout, c.Lockout)
	}
	return c
}

// LoginStatus is an account's standing with the guard.
type LoginStatus struct {
	Locked     bool
	RetryAfter time.Duration // time left on the lockout
	Remaining  int           // failures left before the account locks
}

// Message is the login form error for a locked account, or "".
func (s LoginStatus) Message() string {
	if !s.Locked {
		return ""
	}
	return fmt.Sprintf("Too many login attempts. Please try again in %s.", HumanDuration(s.RetryAfter))
}

// Warning tells the user a lockout is near, or returns "".
func (s LoginStatus) Warning() string {
	if s.Locked || s.Remaining <= 0 || s.Remaining > lockoutWarnBelow {
		return ""
	}
	if s.Remaining == 1 {
		return "1 attempt remaining before the account is locked."
	}
	return fmt.Sprintf("%d attempts remaining before the account is locked.", s.Remaining)
}

type accountFailures struct {
	count       int
	since       time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginGuard throttles login POSTs per client IP and locks an account after
// repeated failed sign-ins. Lockouts and throttled requests are recorded as
// auth events when an EventService is attached. Unknown emails are tracked
// like real ones.
type LoginGuard struct {
	cfg    LoginGuardConfig
	ips    *limiterCache[string]
	events *service.EventService
	now    func() time.Time

	mu       sync.Mutex
	accounts map[string]*accountFailures

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLoginGuard creates a guard and starts its sweeper. events may be nil.
// Call Close to stop the sweeper.
func NewLoginGuard(cfg LoginGuardConfig, events *service.EventService) *LoginGuard {
	cfg = cfg.withDefaults()
	g := &LoginGuard{
		cfg:      cfg,
		ips:      newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		events:   events,
		now:      time.Now,
		accounts: make(map[string]*accountFailures),
		stop:     make(chan struct{}),
	}
	go g.sweepLoop(10 * time.Minute)
	return g
}

// Close stops the sweeper. It is safe to call more than once.
func (g *LoginGuard) Close() {
	g.stopOnce.Do(func() { close(g.stop) })
}

// Check reports the standing of email before its password is verified. A
// locked account is recorded as a refused attempt.
func (g *LoginGuard) Check(r *http.Request, email string) LoginStatus {
	key := accountKey(email)

	g.mu.Lock()
	status := g.statusLocked(key)
	g.mu.Unlock()

	if status.Locked {
		g.record(r, model.EventLevelWarning, "Login attempt on locked account", nil, map[string]any{
			"email":       key,
			"retry_after": status.RetryAfter.Round(time.Second).String(),
		})
	}
	return status
}

// Fail counts a failed sign-in for email. userID is the matched account, or
// nil for an unknown email. When the failure locks the account the lockout
// is logged and recorded.
func (g *LoginGuard) Fail(r *http.Request, email string, userID *int64) LoginStatus {
	key := accountKey(email)
	now := g.now()

	g.mu.Lock()
	acct := g.accounts[key]
	if acct == nil || now.Sub(acct.since) > g.cfg.Window {
		lockouts := 0
		if acct != nil {
			lockouts = acct.lockouts
		}
		acct = &accountFailures{since: now, lockouts: lockouts}
		g.accounts[key] = acct
	}
	acct.count++

	if count := acct.count; count < g.cfg.MaxFailures {
		g.mu.Unlock()
		slog.Debug("failed login counted", "email", key, "count", count)
		return LoginStatus{Remaining: g.cfg.MaxFailures - count}
	}

	lockout := g.lockoutFor(acct.lockouts)
	acct.lockouts++
	acct.count = 0
	acct.lockedUntil = now.Add(lockout)
	lockouts := acct.lockouts
	g.mu.Unlock()

	slog.Warn("account locked after failed logins", "email", key, "lockouts", lockouts, "duration", lockout)
	g.record(r, model.EventLevelWarning, "Account locked due to failed attempts", userID, map[string]any{
		"email":    key,
		"duration": lockout.String(),
		"lockouts": lockouts,
	})
	return LoginStatus{Locked: true, RetryAfter: lockout}
}

// Succeed forgets the failures of email.
func (g *LoginGuard) Succeed(email string) {
	g.mu.Lock()
	delete(g.accounts, accountKey(email))
	g.mu.Unlock()
}

// Middleware throttles POST requests per client IP with a 429. Other methods
// pass through.
func (g *LoginGuard) Middleware() func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(1 / g.cfg.IPRateLimit)))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			if ip := GetClientIP(r); !g.ips.get(ip).Allow() {
				slog.Warn("login rate limit exceeded", "ip", ip)
				g.record(r, model.EventLevelWarning, "Login rate limit exceeded", nil, nil)
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, LoginRateLimitMessage, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// statusLocked must be called with g.mu held.
func (g *LoginGuard) statusLocked(key string) LoginStatus {
	now := g.now()
	acct := g.accounts[key]
	switch {
	case acct == nil:
		return LoginStatus{Remaining: g.cfg.MaxFailures}
	case now.Before(acct.lockedUntil):
		return LoginStatus{Locked: true, RetryAfter: acct.lockedUntil.Sub(now)}
	case now.Sub(acct.since) > g.cfg.Window:
		return LoginStatus{Remaining: g.cfg.MaxFailures}
	default:
		return LoginStatus{Remaining: g.cfg.MaxFailures - acct.count}
	}
}

// lockoutFor doubles the base lockout for every earlier lockout, up to
// MaxLockout.
func (g *LoginGuard) lockoutFor(previous int) time.Duration {
	d := g.cfg.Lockout
	for range previous {
		d *= 2
		if d >= g.cfg.MaxLockout {
			return g.cfg.MaxLockout
		}
	}
	return d
}

func (g *LoginGuard) record(r *http.Request, level, message string, userID *int64, metadata map[string]any) {
	if g.events == nil {
		return
	}
	if err := g.events.LogAuthEvent(r.Context(), level, message, userID, GetClientIP(r), r.URL.Path, metadata); err != nil {
		slog.Error("failed to record login event", "error", err, "message", message)
	}
}

func (g *LoginGuard) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.sweep()
		case <-g.stop:
			return
		}
	}
}

// sweep drops accounts whose lockout and failure window have both expired,
// and resets the IP limiters once they grow past maxLimiterEntries.
func (g *LoginGuard) sweep() {
	if g.ips.clearIfExceeds(maxLimiterEntries) {
		slog.Info("cleared login IP limiters")
	}

	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, acct := range g.accounts {
		if now.After(acct.lockedUntil) && now.Sub(acct.since) > g.cfg.Window {
			delete(g.accounts, key)
		}
	}
}

// HumanDuration renders d the way lockout messages show it, rounded down
// to whole seconds, minutes or hours.
func HumanDuration(d time.Duration) string {
	unit, n := "second", int(d/time.Second)
	switch {
	case d >= time.Hour:
		unit, n = "hour", int(d/time.Hour)
	case d >= time.Minute:
		unit, n = "minute", int(d/time.Minute)
	}
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
