// Package session bootstraps and tears down the signed-in state: one
// successful sign-in populates the user cache from the remote profile
// API, sign-out discards both the provider session and the cache.
package session

import (
	"context"
	"fmt"

	"github.com/aroundu/app/internal/identity"
	"github.com/aroundu/app/internal/models"
	"github.com/aroundu/app/internal/usercache"
)

// ProfileFetcher loads the signed-in user's profile from the remote API.
type ProfileFetcher interface {
	GetProfile(ctx context.Context) (*models.UserProfile, error)
}

type Manager struct {
	provider identity.Provider
	profiles ProfileFetcher
	cache    *usercache.Cache
}

func NewManager(provider identity.Provider, profiles ProfileFetcher, cache *usercache.Cache) *Manager {
	return &Manager{
		provider: provider,
		profiles: profiles,
		cache:    cache,
	}
}

// SignIn establishes a provider session and fills the user cache. The
// cache stays empty when the profile fetch fails, so the caller can
// surface the error and retry without a half-initialized session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*models.UserProfile, error) {
	if _, err := m.provider.SignInWithPassword(ctx, email, password); err != nil {
		return nil, err
	}

	profile, err := m.profiles.GetProfile(ctx)
	if err != nil {
		m.provider.SignOut()
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	m.cache.Replace(profile)
	return profile, nil
}

// SignOut discards the provider session and the cached profile.
func (m *Manager) SignOut() {
	m.provider.SignOut()
	m.cache.Clear()
}

// Token returns the current session token for API requests, or "".
func (m *Manager) Token() string {
	if sess := m.provider.CurrentSession(); sess != nil {
		return sess.IDToken
	}
	return ""
}
