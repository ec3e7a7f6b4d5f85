package api

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bluecarbon/registry/internal/core/service"
	"github.com/bluecarbon/registry/internal/infrastructure/db/memory"
	redisstore "github.com/bluecarbon/registry/internal/infrastructure/db/redis"
)

const testSecret = "router-test-secret"

type testServer struct {
	e     *echo.Echo
	store *memory.Store
}

func newTestServer(t *testing.T, authLimit int, opts ...func(*Dependencies)) *testServer {
	t.Helper()

	store := memory.NewStore()
	tokens := service.NewTokenIssuer(testSecret, time.Hour)
	log := zerolog.Nop()
	reg := prometheus.NewRegistry()

	deps := Dependencies{
		Logger:            log,
		CORSOrigins:       []string{"http://localhost:3000"},
		Tokens:            tokens,
		Auth:              service.NewAuthService(store.Users(), tokens, nil, service.AuthOptions{BcryptCost: bcrypt.MinCost, AllowAdminSignup: true}, log),
		Community:         service.NewCommunityService(store.Communities(), log),
		Admin:             service.NewUserAdminService(store.Users(), log),
		MetricsRegisterer: reg,
		MetricsGatherer:   reg,
	}
	if authLimit > 0 {
		deps.AuthLimiter = redisstore.NewRateLimitStore(nil, "auth", authLimit, time.Minute, log)
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &testServer{e: NewRouter(deps), store: store}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (int, apiResponse, string) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var resp apiResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec.Code, resp, rec.Body.String()
}

func (s *testServer) register(t *testing.T, email, role string) string {
	t.Helper()
	body := `{"firstName":"A","lastName":"B","email":"` + email + `","password":"x","role":"` + role + `"}`
	code, resp, raw := s.do(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, code, raw)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestRouter_RegisterTwice(t *testing.T) {
	s := newTestServer(t, 0)
	body := `{"firstName":"A","lastName":"B","email":"a@b.com","password":"x","role":"community"}`

	code, resp, raw := s.do(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, code, raw)
	assert.True(t, resp.Success)
	assert.NotContains(t, raw, "password")
	assert.Contains(t, raw, `"name":"A B"`)

	code, resp, _ = s.do(t, http.MethodPost, "/api/auth/register", "", strings.Replace(body, "a@b.com", "A@B.com", 1))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "already exists")
}

func TestRouter_RegisterMissingFields(t *testing.T) {
	s := newTestServer(t, 0)

	code, resp, _ := s.do(t, http.MethodPost, "/api/auth/register", "", `{"email":"a@b.com"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Message, "firstName")

	code, _, _ = s.do(t, http.MethodPost, "/api/auth/register", "", `{not json`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_LoginFailuresIndistinguishable(t *testing.T) {
	s := newTestServer(t, 0)
	s.register(t, "known@example.com", "industry")

	codeWrong, _, rawWrong := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"known@example.com","password":"nope"}`)
	codeMissing, _, rawMissing := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"ghost@example.com","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, codeWrong)
	assert.Equal(t, codeWrong, codeMissing)
	assert.JSONEq(t, rawWrong, rawMissing)

	code, resp, raw := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"KNOWN@example.com","password":"x"}`)
	require.Equal(t, http.StatusOK, code, raw)
	assert.Equal(t, "Login successful", resp.Message)
}

func TestRouter_CommunityProfileGate(t *testing.T) {
	s := newTestServer(t, 0)
	token := s.register(t, "community@example.com", "community")

	code, resp, _ := s.do(t, http.MethodGet, "/api/community/my-profile", token, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, resp.Success)

	profile := `{"name":"Mangrove Fishers","type":"fishing","demographics":{"population":120,"households":30}}`
	code, _, raw := s.do(t, http.MethodPost, "/api/community/profile", token, profile)
	require.Equal(t, http.StatusCreated, code, raw)

	code, _, _ = s.do(t, http.MethodPost, "/api/community/profile", token, profile)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp, raw = s.do(t, http.MethodGet, "/api/community/my-profile", token, "")
	require.Equal(t, http.StatusOK, code, raw)
	assert.Contains(t, string(resp.Data), "Mangrove Fishers")

	code, _, _ = s.do(t, http.MethodPost, "/api/community/profile", token, `{"name":"x","type":"y","demographics":{"population":-1}}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, 0)

	code, _, raw := s.do(t, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, code)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotEmpty(t, body["message"])

	code, _, _ = s.do(t, http.MethodGet, "/api/health/ready", "", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_ExpiredToken(t *testing.T) {
	s := newTestServer(t, 0)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "507f1f77bcf86cd799439011",
		"role": "community",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	code, resp, _ := s.do(t, http.MethodGet, "/api/auth/me", expired, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid or expired token", resp.Message)

	code, resp, _ = s.do(t, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Access denied. No token provided", resp.Message)
}

func TestRouter_RoleGating(t *testing.T) {
	s := newTestServer(t, 0)
	industry := s.register(t, "industry@example.com", "industry")

	code, resp, _ := s.do(t, http.MethodGet, "/api/community/my-profile", industry, "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Access denied. Insufficient permissions", resp.Message)

	code, _, _ = s.do(t, http.MethodGet, "/api/admin/users", industry, "")
	assert.Equal(t, http.StatusForbidden, code)

	code, resp, _ = s.do(t, http.MethodGet, "/api/dashboard", industry, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), "/industry-dashboard")
}

func TestRouter_AdminManagesUsers(t *testing.T) {
	s := newTestServer(t, 0)
	admin := s.register(t, "admin@example.com", "admin")
	s.register(t, "member@example.com", "community")

	code, resp, raw := s.do(t, http.MethodGet, "/api/admin/users?role=community&limit=10", admin, "")
	require.Equal(t, http.StatusOK, code, raw)

	var list struct {
		Users []struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"users"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list.Users, 1)
	assert.Equal(t, "member@example.com", list.Users[0].Email)
	assert.Equal(t, 1, list.Pagination.Total)

	memberID := list.Users[0].ID
	code, _, raw = s.do(t, http.MethodPatch, "/api/admin/users/"+memberID+"/role", admin, `{"role":"government"}`)
	require.Equal(t, http.StatusOK, code, raw)
	assert.Contains(t, raw, `"role":"government"`)

	code, _, raw = s.do(t, http.MethodPatch, "/api/admin/users/"+memberID+"/status", admin, `{"isActive":false}`)
	require.Equal(t, http.StatusOK, code, raw)

	code, resp, _ = s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"member@example.com","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Account is deactivated", resp.Message)

	code, _, _ = s.do(t, http.MethodPatch, "/api/admin/users/"+memberID+"/status", admin, `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_RateLimit(t *testing.T) {
	s := newTestServer(t, 2)
	body := `{"email":"ghost@example.com","password":"nope"}`

	for i := 0; i < 2; i++ {
		code, _, _ := s.do(t, http.MethodPost, "/api/auth/login", "", body)
		require.Equal(t, http.StatusUnauthorized, code)
	}
	code, resp, _ := s.do(t, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "Too many requests, please try again later", resp.Message)

	// Non-credential routes are not affected by the auth limit.
	code, _, _ = s.do(t, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, code)
}

// loginVia sends a failed login as if relayed by peer with the given
// X-Forwarded-For header.
func (s *testServer) loginVia(peer, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ghost@example.com","password":"nope"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
	req.RemoteAddr = peer
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec.Code
}

func TestRouter_RateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	s := newTestServer(t, 2)

	var codes []int
	for i := 1; i <= 6; i++ {
		codes = append(codes, s.loginVia("203.0.113.7:4000", fmt.Sprintf("10.0.0.%d", i)))
	}
	assert.Equal(t, []int{
		http.StatusUnauthorized, http.StatusUnauthorized,
		http.StatusTooManyRequests, http.StatusTooManyRequests,
		http.StatusTooManyRequests, http.StatusTooManyRequests,
	}, codes)
}

func TestRouter_RateLimitTrustsConfiguredProxy(t *testing.T) {
	_, proxies, err := net.ParseCIDR("203.0.113.0/24")
	require.NoError(t, err)
	s := newTestServer(t, 2, func(d *Dependencies) { d.TrustedProxies = []*net.IPNet{proxies} })

	// Distinct clients behind the proxy get their own budget.
	for i := 1; i <= 4; i++ {
		assert.Equal(t, http.StatusUnauthorized, s.loginVia("203.0.113.7:4000", fmt.Sprintf("198.51.100.%d", i)))
	}

	// An untrusted peer cannot pick its identity through the header.
	assert.Equal(t, http.StatusUnauthorized, s.loginVia("192.0.2.50:4000", "198.51.100.200"))
	assert.Equal(t, http.StatusUnauthorized, s.loginVia("192.0.2.50:4000", "198.51.100.201"))
	assert.Equal(t, http.StatusTooManyRequests, s.loginVia("192.0.2.50:4000", "198.51.100.202"))
}

func TestRouter_RouteNotFound(t *testing.T) {
	s := newTestServer(t, 0)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/nope"},
		{http.MethodGet, "/totally/unknown"},
		{http.MethodDelete, "/api/health"},
		{http.MethodGet, "/api/community/nope"},
		{http.MethodGet, "/api/admin/nope"},
		{http.MethodPost, "/api/admin/users/x/unknown"},
	} {
		code, resp, raw := s.do(t, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusNotFound, code, tc.path)
		assert.JSONEq(t, `{"success":false,"message":"Route not found"}`, raw, tc.path)
		assert.False(t, resp.Success)
	}
}
