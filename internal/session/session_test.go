package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aroundu/app/internal/identity"
	"github.com/aroundu/app/internal/models"
	"github.com/aroundu/app/internal/usercache"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	args := m.Called(ctx, email, password)
	if s := args.Get(0); s != nil {
		return s.(*identity.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) Reauthenticate(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func (m *mockProvider) UpdateEmail(ctx context.Context, newEmail, currentPassword string) error {
	return m.Called(ctx, newEmail, currentPassword).Error(0)
}

func (m *mockProvider) UpdatePassword(ctx context.Context, newPassword string) error {
	return m.Called(ctx, newPassword).Error(0)
}

func (m *mockProvider) SendEmailVerification(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockProvider) CurrentSession() *identity.Session {
	args := m.Called()
	if s := args.Get(0); s != nil {
		return s.(*identity.Session)
	}
	return nil
}

func (m *mockProvider) SignOut() {
	m.Called()
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.(*models.UserProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSignInFillsCache(t *testing.T) {
	provider := new(mockProvider)
	fetcher := new(mockFetcher)
	cache := usercache.New()
	m := NewManager(provider, fetcher, cache)

	provider.On("SignInWithPassword", mock.Anything, "a@x.com", "hunter2").
		Return(&identity.Session{UID: "uid-1", Email: "a@x.com", IDToken: "tok-1"}, nil)
	fetcher.On("GetProfile", mock.Anything).
		Return(&models.UserProfile{ID: "uid-1", Email: "a@x.com"}, nil)

	profile, err := m.SignIn(context.Background(), "a@x.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", profile.ID)
	assert.True(t, cache.SignedIn())

	got, err := cache.Get()
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestSignInBadCredentials(t *testing.T) {
	provider := new(mockProvider)
	fetcher := new(mockFetcher)
	cache := usercache.New()
	m := NewManager(provider, fetcher, cache)

	provider.On("SignInWithPassword", mock.Anything, "a@x.com", "wrong").
		Return(nil, identity.ErrInvalidCredentials)

	_, err := m.SignIn(context.Background(), "a@x.com", "wrong")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	assert.False(t, cache.SignedIn())
	fetcher.AssertNotCalled(t, "GetProfile")
}

func TestSignInProfileFetchFailureRollsBack(t *testing.T) {
	provider := new(mockProvider)
	fetcher := new(mockFetcher)
	cache := usercache.New()
	m := NewManager(provider, fetcher, cache)

	provider.On("SignInWithPassword", mock.Anything, "a@x.com", "hunter2").
		Return(&identity.Session{UID: "uid-1"}, nil)
	fetcher.On("GetProfile", mock.Anything).Return(nil, errors.New("profile api down"))
	provider.On("SignOut").Return()

	_, err := m.SignIn(context.Background(), "a@x.com", "hunter2")
	require.Error(t, err)
	assert.False(t, cache.SignedIn())
	provider.AssertCalled(t, "SignOut")
}

func TestSignOutClearsEverything(t *testing.T) {
	provider := new(mockProvider)
	cache := usercache.New()
	cache.Replace(&models.UserProfile{ID: "uid-1"})
	m := NewManager(provider, new(mockFetcher), cache)

	provider.On("SignOut").Return()

	m.SignOut()
	assert.False(t, cache.SignedIn())
	provider.AssertCalled(t, "SignOut")
}

func TestToken(t *testing.T) {
	provider := new(mockProvider)
	m := NewManager(provider, new(mockFetcher), usercache.New())

	provider.On("CurrentSession").Return(nil).Once()
	assert.Empty(t, m.Token())

	provider.On("CurrentSession").Return(&identity.Session{IDToken: "tok-1"}).Once()
	assert.Equal(t, "tok-1", m.Token())
}
