// Package profileapi is the client of the remote profile endpoint. A
// profile change is a single idempotent PATCH carrying only the fields
// being changed.
package profileapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aroundu/app/internal/models"
)

var ErrUnauthorized = errors.New("profile api rejected credentials")

// TokenSource supplies the bearer token for each request, so the client
// always sends the freshest session token.
type TokenSource func() string

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      TokenSource
}

func NewClient(baseURL string, token TokenSource) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Token: token,
	}
}

type profileEnvelope struct {
	Success bool                `json:"success"`
	Data    *models.UserProfile `json:"data"`
	Error   string              `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*models.UserProfile, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != nil {
		if tok := c.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}

	var env profileEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("profile api returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("profile api error: %s", msg)
	}
	if env.Data == nil {
		return nil, errors.New("profile api returned empty profile")
	}
	return env.Data, nil
}

// GetProfile fetches (and lazily creates) the signed-in user's profile.
func (c *Client) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	return c.do(ctx, http.MethodGet, "/profile", nil)
}

// UpdateProfile persists the changed fields. Repeating a successful
// PATCH with the same payload is safe.
func (c *Client) UpdateProfile(ctx context.Context, payload models.ProfilePayload) (*models.UserProfile, error) {
	return c.do(ctx, http.MethodPatch, "/profile", payload)
}
