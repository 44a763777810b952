// Package client talks to the facturo HTTP API and holds the state of the
// profile screen.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lborres/facturo/core"
)

const (
	profilePath = "/api/users/profile"
	signInPath  = "/api/auth/sign-in"
	signOutPath = "/api/auth/sign-out"

	listSessionsPath  = "/api/auth/list-sessions"
	revokeSessionPath = "/api/auth/revoke-session"
)

// APIError is a non-2xx response. Message is the server's "error" field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("request failed: %d %s", e.Status, e.Message)
}

// API is what ProfileController needs from the server.
type API interface {
	GetProfile(ctx context.Context) (*core.Profile, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*core.ProfileSummary, error)
	ChangePassword(ctx context.Context, current, next string) error
	DeleteAccount(ctx context.Context) error
	SignOut(ctx context.Context) error
	ClearToken()
}

// UpdateProfileRequest omits nil fields from the JSON body.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Image *string `json:"image,omitempty"`
}

type APIClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

var _ API = (*APIClient)(nil)

type Option func(*APIClient)

func WithHTTPClient(c *http.Client) Option {
	return func(a *APIClient) { a.http = c }
}

func WithToken(token string) Option {
	return func(a *APIClient) { a.token = token }
}

func NewAPIClient(baseURL string, opts ...Option) *APIClient {
	a := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *APIClient) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *APIClient) SetToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

func (a *APIClient) ClearToken() { a.SetToken("") }

// SignIn stores the returned session token for later calls.
func (a *APIClient) SignIn(ctx context.Context, email, password string) (*core.AuthResult, error) {
	var res core.AuthResult
	body := core.SignInInput{Email: email, Password: password}
	if err := a.do(ctx, http.MethodPost, signInPath, body, &res); err != nil {
		return nil, err
	}
	a.SetToken(res.Token)
	return &res, nil
}

func (a *APIClient) SignOut(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, signOutPath, nil, nil)
}

// ListSessions returns the caller's active sessions.
func (a *APIClient) ListSessions(ctx context.Context) ([]*core.Session, error) {
	var sessions []*core.Session
	if err := a.do(ctx, http.MethodGet, listSessionsPath, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (a *APIClient) RevokeSession(ctx context.Context, sessionID string) error {
	return a.do(ctx, http.MethodPost, revokeSessionPath, core.RevokeSessionInput{SessionID: sessionID}, nil)
}

func (a *APIClient) GetProfile(ctx context.Context) (*core.Profile, error) {
	var p core.Profile
	if err := a.do(ctx, http.MethodGet, profilePath, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *APIClient) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*core.ProfileSummary, error) {
	var s core.ProfileSummary
	if err := a.do(ctx, http.MethodPut, profilePath, req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (a *APIClient) ChangePassword(ctx context.Context, current, next string) error {
	body := core.ChangePasswordInput{CurrentPassword: current, NewPassword: next}
	return a.do(ctx, http.MethodPost, profilePath, body, nil)
}

func (a *APIClient) DeleteAccount(ctx context.Context) error {
	return a.do(ctx, http.MethodDelete, profilePath, nil, nil)
}

func (a *APIClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := a.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e core.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ErrorMessage returns the server's error string for err, if it has one.
func ErrorMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message, true
	}
	return "", false
}
