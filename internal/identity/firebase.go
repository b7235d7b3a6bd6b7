package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultIdentityToolkitEndpoint = "https://identitytoolkit.googleapis.com/v1"

// FirebaseClient talks to the Firebase Identity Toolkit REST API, the
// same surface the web SDK uses. It keeps the current session the way
// the SDK keeps auth.currentUser.
type FirebaseClient struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client

	mu      sync.RWMutex
	session *Session
}

func NewFirebaseClient(apiKey string) *FirebaseClient {
	return &FirebaseClient{
		APIKey:   strings.TrimSpace(apiKey),
		Endpoint: defaultIdentityToolkitEndpoint,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type toolkitError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

// mapError translates Identity Toolkit error codes into package errors,
// mirroring the provider's documented message set.
func mapError(message string) error {
	code := message
	// Quota messages arrive as "CODE : human readable detail".
	if i := strings.IndexByte(code, ':'); i > 0 {
		code = strings.TrimSpace(code[:i])
	}
	switch code {
	case "INVALID_PASSWORD", "EMAIL_NOT_FOUND", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL":
		return ErrInvalidCredentials
	case "EMAIL_EXISTS":
		return ErrEmailExists
	case "USER_DISABLED":
		return ErrUserDisabled
	case "CREDENTIAL_TOO_OLD_LOGIN_AGAIN", "TOKEN_EXPIRED", "INVALID_ID_TOKEN":
		return ErrNotSignedIn
	default:
		return fmt.Errorf("identity provider error: %s", message)
	}
}

func (c *FirebaseClient) post(ctx context.Context, action string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/accounts:%s?key=%s", c.Endpoint, action, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var terr toolkitError
		if err := json.NewDecoder(resp.Body).Decode(&terr); err != nil || terr.Error.Message == "" {
			return fmt.Errorf("identity provider returned status %d", resp.StatusCode)
		}
		return mapError(terr.Error.Message)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *FirebaseClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var res signInResponse
	err := c.post(ctx, "signInWithPassword", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &res)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		UID:          res.LocalID,
		Email:        res.Email,
		IDToken:      res.IDToken,
		RefreshToken: res.RefreshToken,
	}

	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()

	return sess, nil
}

// SignInWithOAuth exchanges an OAuth credential from a federated
// provider (Google, Facebook) for a Firebase session.
func (c *FirebaseClient) SignInWithOAuth(ctx context.Context, providerID, accessToken, requestURI string) (*Session, error) {
	var res signInResponse
	err := c.post(ctx, "signInWithIdp", map[string]interface{}{
		"postBody":          fmt.Sprintf("access_token=%s&providerId=%s", accessToken, providerID),
		"requestUri":        requestURI,
		"returnSecureToken": true,
	}, &res)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		UID:          res.LocalID,
		Email:        res.Email,
		IDToken:      res.IDToken,
		RefreshToken: res.RefreshToken,
	}

	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()

	return sess, nil
}

// Reauthenticate verifies the password by signing in again with the
// current credential email, refreshing the held session token on success.
// Only provider verdicts collapse to ErrInvalidCredentials; transport
// failures and cancellations pass through unchanged.
func (c *FirebaseClient) Reauthenticate(ctx context.Context, email, password string) error {
	if c.CurrentSession() == nil {
		return ErrNotSignedIn
	}
	_, err := c.SignInWithPassword(ctx, email, password)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUserDisabled):
		return err
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrNotSignedIn):
		return ErrInvalidCredentials
	default:
		return err
	}
}

func (c *FirebaseClient) UpdateEmail(ctx context.Context, newEmail, currentPassword string) error {
	sess := c.CurrentSession()
	if sess == nil {
		return ErrNotSignedIn
	}

	var res signInResponse
	err := c.post(ctx, "update", map[string]interface{}{
		"idToken":           sess.IDToken,
		"email":             newEmail,
		"returnSecureToken": true,
	}, &res)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.session = &Session{
		UID:          sess.UID,
		Email:        newEmail,
		IDToken:      nonEmpty(res.IDToken, sess.IDToken),
		RefreshToken: nonEmpty(res.RefreshToken, sess.RefreshToken),
	}
	c.mu.Unlock()

	return nil
}

func (c *FirebaseClient) UpdatePassword(ctx context.Context, newPassword string) error {
	sess := c.CurrentSession()
	if sess == nil {
		return ErrNotSignedIn
	}

	var res signInResponse
	err := c.post(ctx, "update", map[string]interface{}{
		"idToken":           sess.IDToken,
		"password":          newPassword,
		"returnSecureToken": true,
	}, &res)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.session = &Session{
		UID:          sess.UID,
		Email:        sess.Email,
		IDToken:      nonEmpty(res.IDToken, sess.IDToken),
		RefreshToken: nonEmpty(res.RefreshToken, sess.RefreshToken),
	}
	c.mu.Unlock()

	return nil
}

func (c *FirebaseClient) SendEmailVerification(ctx context.Context) error {
	sess := c.CurrentSession()
	if sess == nil {
		return ErrNotSignedIn
	}
	return c.post(ctx, "sendOobCode", map[string]interface{}{
		"requestType": "VERIFY_EMAIL",
		"idToken":     sess.IDToken,
	}, nil)
}

// SendPasswordReset dispatches a reset mail to the given address. It
// needs no session; the forgot-password form runs signed out.
func (c *FirebaseClient) SendPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "sendOobCode", map[string]interface{}{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

func (c *FirebaseClient) CurrentSession() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	cp := *c.session
	return &cp
}

func (c *FirebaseClient) SignOut() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

func nonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
