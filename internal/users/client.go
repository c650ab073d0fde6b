// Package users resolves author profiles from the external identity
// service. The caller's bearer token is forwarded verbatim; this service
// holds no credentials of its own.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoToken is returned before any network call when the caller presented
// no credential to forward.
var ErrNoToken = errors.New("users: missing bearer token")

// Profile is the display profile of a comment author.
type Profile struct {
	Username   string `json:"username"`
	AvatarURL  string `json:"avatarUrl"`
	ProfileURL string `json:"profileUrl"`
}

// Resolver looks up a user's display profile. Implemented by Client; tests
// substitute a fake.
type Resolver interface {
	Resolve(ctx context.Context, userID, token string) (Profile, error)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTPClient: &http.Client{Timeout: 10 * time.Second}}
}

// Resolve fetches GET {base}/v1/users/{id}. Any transport failure or non-2xx
// response is an error; there are no retries.
func (c *Client) Resolve(ctx context.Context, userID, token string) (Profile, error) {
	if strings.TrimSpace(token) == "" {
		return Profile{}, ErrNoToken
	}
	if strings.TrimSpace(userID) == "" {
		return Profile{}, errors.New("users: userID required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/v1/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("users: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Profile{}, fmt.Errorf("users: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Profile{}, fmt.Errorf("users: status %d body=%q", resp.StatusCode, string(b[:min(len(b), 200)]))
	}
	var out Profile
	if err := json.Unmarshal(b, &out); err != nil {
		return Profile{}, fmt.Errorf("users: decode error: %w", err)
	}
	return out, nil
}
