package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalProvider(t *testing.T) *LocalProvider {
	t.Helper()
	p, err := NewLocalProvider(t.TempDir(), "test-secret", time.Hour)
	require.NoError(t, err)
	return p
}

func TestLocalProviderRegisterAndSignIn(t *testing.T) {
	p := newTestLocalProvider(t)

	require.NoError(t, p.Register("a@x.com", "hunter2"))
	assert.ErrorIs(t, p.Register("a@x.com", "other"), ErrEmailExists)

	_, err := p.SignInWithPassword(context.Background(), "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.SignInWithPassword(context.Background(), "nobody@x.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err := p.SignInWithPassword(context.Background(), "a@x.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sess.Email)
	assert.NotEmpty(t, sess.UID)
	assert.NotEmpty(t, sess.IDToken)
}

func TestLocalProviderTokenClaims(t *testing.T) {
	p := newTestLocalProvider(t)
	require.NoError(t, p.Register("a@x.com", "hunter2"))

	sess, err := p.SignInWithPassword(context.Background(), "a@x.com", "hunter2")
	require.NoError(t, err)

	token, err := jwt.Parse(sess.IDToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, sess.UID, claims["user_id"])
	assert.Equal(t, "a@x.com", claims["email"])
}

func TestLocalProviderReauthenticate(t *testing.T) {
	p := newTestLocalProvider(t)
	require.NoError(t, p.Register("a@x.com", "hunter2"))

	// No session yet.
	assert.ErrorIs(t, p.Reauthenticate(context.Background(), "a@x.com", "hunter2"), ErrNotSignedIn)

	_, err := p.SignInWithPassword(context.Background(), "a@x.com", "hunter2")
	require.NoError(t, err)

	assert.NoError(t, p.Reauthenticate(context.Background(), "a@x.com", "hunter2"))
	assert.ErrorIs(t, p.Reauthenticate(context.Background(), "a@x.com", "wrong"), ErrInvalidCredentials)
}

func TestLocalProviderUpdateEmail(t *testing.T) {
	p := newTestLocalProvider(t)
	require.NoError(t, p.Register("a@x.com", "hunter2"))
	require.NoError(t, p.Register("taken@x.com", "hunter2"))

	_, err := p.SignInWithPassword(context.Background(), "a@x.com", "hunter2")
	require.NoError(t, err)

	assert.ErrorIs(t, p.UpdateEmail(context.Background(), "taken@x.com", "hunter2"), ErrEmailExists)

	require.NoError(t, p.UpdateEmail(context.Background(), "b@x.com", "hunter2"))
	sess := p.CurrentSession()
	require.NotNil(t, sess)
	assert.Equal(t, "b@x.com", sess.Email)

	// The old email no longer signs in; the new one keeps the password.
	_, err = p.SignInWithPassword(context.Background(), "a@x.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.SignInWithPassword(context.Background(), "b@x.com", "hunter2")
	assert.NoError(t, err)
}

func TestLocalProviderUpdatePassword(t *testing.T) {
	p := newTestLocalProvider(t)
	require.NoError(t, p.Register("a@x.com", "hunter2"))

	assert.ErrorIs(t, p.UpdatePassword(context.Background(), "newsecret"), ErrNotSignedIn)

	_, err := p.SignInWithPassword(context.Background(), "a@x.com", "hunter2")
	require.NoError(t, err)
	require.NoError(t, p.UpdatePassword(context.Background(), "newsecret"))

	_, err = p.SignInWithPassword(context.Background(), "a@x.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.SignInWithPassword(context.Background(), "a@x.com", "newsecret")
	assert.NoError(t, err)
}

func TestLocalProviderPersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	p1, err := NewLocalProvider(dir, "test-secret", time.Hour)
	require.NoError(t, err)
	require.NoError(t, p1.Register("a@x.com", "hunter2"))

	p2, err := NewLocalProvider(dir, "test-secret", time.Hour)
	require.NoError(t, err)
	_, err = p2.SignInWithPassword(context.Background(), "a@x.com", "hunter2")
	assert.NoError(t, err)
}

func TestLocalProviderSendPasswordReset(t *testing.T) {
	p := newTestLocalProvider(t)
	require.NoError(t, p.Register("a@x.com", "hunter2"))

	assert.NoError(t, p.SendPasswordReset(context.Background(), "a@x.com"))
	assert.ErrorIs(t, p.SendPasswordReset(context.Background(), "nobody@x.com"), ErrInvalidCredentials)
}

func TestLocalProviderSignOut(t *testing.T) {
	p := newTestLocalProvider(t)
	require.NoError(t, p.Register("a@x.com", "hunter2"))

	_, err := p.SignInWithPassword(context.Background(), "a@x.com", "hunter2")
	require.NoError(t, err)
	require.NotNil(t, p.CurrentSession())

	p.SignOut()
	assert.Nil(t, p.CurrentSession())
}
