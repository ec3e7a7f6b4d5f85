// Package client is a Go SDK for the registry API. It keeps the caller's
// session, attaches the bearer token to every request and turns error
// responses into *APIError values.
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
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Envelope is the body shape of every successful API response.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

type Organization struct {
	Name    string `json:"name,omitempty"`
	Type    string `json:"type,omitempty"`
	Address string `json:"address,omitempty"`
}

type User struct {
	ID           string        `json:"id"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Role         string        `json:"role"`
	Organization *Organization `json:"organization,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	IsVerified   bool          `json:"isVerified"`
	IsActive     bool          `json:"isActive"`
	LastLoginAt  *time.Time    `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type RegisterRequest struct {
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	Email        string        `json:"email"`
	Password     string        `json:"password"`
	Role         string        `json:"role"`
	Organization *Organization `json:"organization,omitempty"`
	Phone        string        `json:"phone,omitempty"`
}

// ProfileUpdate only sends the fields that are set.
type ProfileUpdate struct {
	FirstName    *string       `json:"firstName,omitempty"`
	LastName     *string       `json:"lastName,omitempty"`
	Phone        *string       `json:"phone,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
}

type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type Location struct {
	Address  string `json:"address,omitempty"`
	District string `json:"district,omitempty"`
	State    string `json:"state,omitempty"`
}

type Demographics struct {
	Population int `json:"population"`
	Households int `json:"households"`
}

type ContactInfo struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type CommunityProfileInput struct {
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	Description  string       `json:"description,omitempty"`
	Location     Location     `json:"location"`
	Demographics Demographics `json:"demographics"`
	ContactInfo  ContactInfo  `json:"contactInfo"`
}

type CommunityProfile struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	Description  string       `json:"description,omitempty"`
	Location     Location     `json:"location"`
	Demographics Demographics `json:"demographics"`
	ContactInfo  ContactInfo  `json:"contactInfo"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

type Dashboard struct {
	Role     string   `json:"role"`
	Path     string   `json:"path"`
	Features []string `json:"features"`
}

type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

const defaultTimeout = 30 * time.Second

// Client talks to one registry API instance.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions SessionStore
	now      func() time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the default client with a 30s timeout.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithSessionStore replaces the default MemoryStore.
func WithSessionStore(s SessionStore) Option { return func(c *Client) { c.sessions = s } }

// WithClock overrides the clock used for local expiry checks.
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		sessions: NewMemoryStore(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates an account and stores the returned session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	env, err := call[AuthResult](ctx, c, http.MethodPost, "/api/auth/register", req)
	if err != nil {
		return nil, err
	}
	if err := c.persist(&env.Data); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Login authenticates and stores the returned session.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	env, err := call[AuthResult](ctx, c, http.MethodPost, "/api/auth/login", body)
	if err != nil {
		return nil, err
	}
	if err := c.persist(&env.Data); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Logout tells the server when a session exists, then clears it. The server
// call is best-effort: the local session is cleared even if it fails.
func (c *Client) Logout(ctx context.Context) error {
	if s, _ := c.sessions.Load(); s != nil && s.Token != "" {
		_, _ = call[json.RawMessage](ctx, c, http.MethodPost, "/api/auth/logout", nil)
	}
	return c.invalidate()
}

// Me fetches the current user and refreshes the cached copy.
func (c *Client) Me(ctx context.Context) (*User, error) {
	env, err := call[struct {
		User *User `json:"user"`
	}](ctx, c, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	c.refreshUser(env.Data.User)
	return env.Data.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*User, error) {
	env, err := call[struct {
		User *User `json:"user"`
	}](ctx, c, http.MethodPut, "/api/auth/profile", upd)
	if err != nil {
		return nil, err
	}
	c.refreshUser(env.Data.User)
	return env.Data.User, nil
}

// MyCommunityProfile returns ErrNotFound (by errors.Is) when the caller has
// not set up a profile yet.
func (c *Client) MyCommunityProfile(ctx context.Context) (*CommunityProfile, error) {
	env, err := call[struct {
		Profile *CommunityProfile `json:"profile"`
	}](ctx, c, http.MethodGet, "/api/community/my-profile", nil)
	if err != nil {
		return nil, err
	}
	return env.Data.Profile, nil
}

func (c *Client) CreateCommunityProfile(ctx context.Context, in CommunityProfileInput) (*CommunityProfile, error) {
	env, err := call[struct {
		Profile *CommunityProfile `json:"profile"`
	}](ctx, c, http.MethodPost, "/api/community/profile", in)
	if err != nil {
		return nil, err
	}
	return env.Data.Profile, nil
}

func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	env, err := call[struct {
		Dashboard *Dashboard `json:"dashboard"`
	}](ctx, c, http.MethodGet, "/api/dashboard", nil)
	if err != nil {
		return nil, err
	}
	return env.Data.Dashboard, nil
}

// Health is not wrapped in an Envelope.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Session returns the stored session, or nil when logged out.
func (c *Client) Session() (*Session, error) {
	return c.sessions.Load()
}

// IsAuthenticated decodes the stored token without verifying its signature
// and checks its expiry against the local clock. An expired or unreadable
// token clears the session. The server still verifies every request.
func (c *Client) IsAuthenticated() bool {
	s, err := c.sessions.Load()
	if err != nil || s == nil || s.Token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		_ = c.invalidate()
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || !c.now().Before(exp.Time) {
		_ = c.invalidate()
		return false
	}
	return true
}

func (c *Client) persist(res *AuthResult) error {
	if res.Token == "" || res.User == nil {
		return errors.New("client: auth response without token or user")
	}
	return c.sessions.Save(Session{Token: res.Token, Role: res.User.Role, User: res.User})
}

func (c *Client) refreshUser(u *User) {
	s, err := c.sessions.Load()
	if err != nil || s == nil || u == nil {
		return
	}
	_ = c.sessions.Save(Session{Token: s.Token, Role: u.Role, User: u})
}

// invalidate is the single path that drops the session.
func (c *Client) invalidate() error {
	return c.sessions.Clear()
}

func call[T any](ctx context.Context, c *Client, method, path string, body any) (*Envelope[T], error) {
	var env Envelope[T]
	if err := c.do(ctx, method, path, body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s, _ := c.sessions.Load(); s != nil && s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data := map[string]any{}
		if err := json.Unmarshal(raw, &data); err != nil {
			data = map[string]any{}
		}
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
