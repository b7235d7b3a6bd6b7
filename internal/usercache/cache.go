// Package usercache holds the single in-memory copy of the signed-in
// user's profile. Views read it, the profile edit workflow replaces it.
package usercache

import (
	"errors"
	"sync"

	"github.com/aroundu/app/internal/models"
)

var ErrNotSignedIn = errors.New("no user is signed in")

// Cache stores at most one UserProfile per session. The profile is
// replaced wholesale, never merged in place, so readers always observe
// either the previous value or the new one.
type Cache struct {
	mu      sync.RWMutex
	profile *models.UserProfile
}

func New() *Cache {
	return &Cache{}
}

// Get returns a copy of the cached profile.
func (c *Cache) Get() (*models.UserProfile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.profile == nil {
		return nil, ErrNotSignedIn
	}
	return c.profile.Clone(), nil
}

// Replace installs a new profile as one atomic assignment. It is called
// once on sign-in and again after each fully successful edit.
func (c *Cache) Replace(profile *models.UserProfile) {
	cp := profile.Clone()

	c.mu.Lock()
	c.profile = cp
	c.mu.Unlock()
}

// Clear discards the cached profile on sign-out or session expiry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.profile = nil
	c.mu.Unlock()
}

// SignedIn reports whether a profile is currently cached.
func (c *Cache) SignedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile != nil
}
