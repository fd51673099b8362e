// Package session resolves who is logged in and derives what the current
// user may do with a listing, post, comment or profile.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/erazemk/swycle/internal/api"
	"github.com/erazemk/swycle/internal/auth"
	"github.com/erazemk/swycle/internal/model"
)

// Backend is the part of the API the gate talks to. *api.Client
// satisfies it.
type Backend interface {
	Me(ctx context.Context) (*model.User, error)
	Login(ctx context.Context, providerToken string) error
	Logout(ctx context.Context) error
}

// Gate holds the session state. The zero value is not usable; use New.
type Gate struct {
	backend Backend

	mu      sync.RWMutex
	user    *model.User
	loading bool
}

// New returns a gate in the loading state.
func New(backend Backend) *Gate {
	return &Gate{backend: backend, loading: true}
}

// Init resolves the current session. Any failure leaves the gate
// anonymous; Init itself never fails.
func (g *Gate) Init(ctx context.Context) {
	user, err := g.backend.Me(ctx)
	if err != nil && !errors.Is(err, api.ErrUnauthorized) {
		slog.Warn("failed to resolve session", "error", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = user
	g.loading = false
}

// User returns the authenticated user, or nil when anonymous or loading.
func (g *Gate) User() *model.User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return nil
	}
	u := *g.user
	return &u
}

// IsLoading reports whether Init has not finished yet.
func (g *Gate) IsLoading() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loading
}

// Authenticated reports whether a user is logged in.
func (g *Gate) Authenticated() bool {
	return g.User() != nil
}

// Login exchanges a provider token for a session and returns the new
// user. It returns nil on any failure and leaves the previous state.
func (g *Gate) Login(ctx context.Context, providerToken string) *model.User {
	claims, err := auth.Inspect(providerToken)
	if err != nil {
		slog.Warn("rejected provider token", "error", err)
		return nil
	}
	if err := g.backend.Login(ctx, providerToken); err != nil {
		slog.Error("login failed", "email", claims.Email, "error", err)
		return nil
	}
	user, err := g.backend.Me(ctx)
	if err != nil {
		slog.Error("failed to load user after login", "email", claims.Email, "error", err)
		return nil
	}

	g.mu.Lock()
	g.user = user
	g.loading = false
	g.mu.Unlock()

	slog.Info("logged in", "user_id", user.ID, "name", user.Name)
	u := *user
	return &u
}

// Logout ends the session. Local state is cleared whether or not the
// server confirms.
func (g *Gate) Logout(ctx context.Context) {
	if err := g.backend.Logout(ctx); err != nil {
		slog.Warn("logout request failed", "error", err)
	}

	g.mu.Lock()
	g.user = nil
	g.loading = false
	g.mu.Unlock()
}
