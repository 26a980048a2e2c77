package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-auth-nosql/internal/config"
	"github.com/go-auth-nosql/internal/domain"
	jwtinfra "github.com/go-auth-nosql/internal/infrastructure/jwt"
	"github.com/go-auth-nosql/internal/pkg/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memAccounts struct {
	mu      sync.Mutex
	byEmail map[string]*domain.Account
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byEmail[email]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *memAccounts) Create(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[a.Email]; ok {
		return domain.ErrConflict
	}
	cp := *a
	m.byEmail[a.Email] = &cp
	return nil
}

func (m *memAccounts) Get(_ context.Context, accountID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byEmail {
		if a.AccountID == accountID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memCodes struct {
	mu    sync.Mutex
	items map[string]*domain.VerificationCode
}

func (m *memCodes) Upsert(_ context.Context, email, code string, expiresAt time.Time) (*domain.VerificationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.items[email]
	if v == nil {
		v = &domain.VerificationCode{Email: email}
		m.items[email] = v
	}
	v.Code, v.ExpiresAt = code, expiresAt
	v.Revision++
	cp := *v
	return &cp, nil
}

func (m *memCodes) Find(_ context.Context, email, code string) (*domain.VerificationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.items[email]; ok && v.Code == code {
		cp := *v
		return &cp, nil
	}
	return nil, nil
}

type outbox struct {
	mu   sync.Mutex
	sent map[string]string
	err  error
}

func (o *outbox) SendCode(_ context.Context, to, code string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent[to] = code
	return nil
}

type testServer struct {
	handler http.Handler
	codes   *memCodes
	outbox  *outbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:           "router-test-secret",
		TokenExpiry:         time.Hour,
		VerificationCodeTTL: 10 * time.Minute,
		AllowedOrigins:      []string{"*"},
	}
	tokens, err := jwtinfra.NewProvider(cfg)
	require.NoError(t, err)

	ts := &testServer{
		codes:  &memCodes{items: map[string]*domain.VerificationCode{}},
		outbox: &outbox{sent: map[string]string{}},
	}
	ts.handler = NewRouter(cfg, &Deps{
		AccountRepo:      &memAccounts{byEmail: map[string]*domain.Account{}},
		VerificationRepo: ts.codes,
		Notifier:         ts.outbox,
		Hasher:           password.NewHasher(4),
		Tokens:           tokens,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func jsonBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	return m
}

func TestRouter_RegisterLoginCurrent(t *testing.T) {
	ts := newTestServer(t)
	reg := `{"name":"Ada","email":"ada@example.com","password":"secret123"}`

	rr := ts.do(t, http.MethodPost, "/api/users/register", reg, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	created := jsonBody(t, rr)
	assert.NotEmpty(t, created["id"])
	assert.NotContains(t, rr.Body.String(), "secret123")

	rr = ts.do(t, http.MethodPost, "/api/users/register", reg, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, map[string]interface{}{"email": "Email already exists"}, jsonBody(t, rr))

	rr = ts.do(t, http.MethodPost, "/api/users/login", `{"email":"ada@example.com","password":"wrong-one"}`, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, map[string]interface{}{"passwordincorrect": "Password incorrect"}, jsonBody(t, rr))

	rr = ts.do(t, http.MethodPost, "/api/users/login", `{"email":"nobody@example.com","password":"secret123"}`, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, map[string]interface{}{"emailnotfound": "Email not found"}, jsonBody(t, rr))

	rr = ts.do(t, http.MethodPost, "/api/users/login", `{"email":"ada@example.com","password":"secret123"}`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	login := jsonBody(t, rr)
	assert.Equal(t, true, login["success"])
	token, _ := login["token"].(string)
	require.Contains(t, token, "Bearer ")

	rr = ts.do(t, http.MethodGet, "/api/users/current", "", token)
	require.Equal(t, http.StatusOK, rr.Code)
	current := jsonBody(t, rr)
	assert.Equal(t, created["id"], current["id"])
	assert.Equal(t, "Ada", current["name"])
	assert.ElementsMatch(t, []string{"id", "name", "email", "date"}, keys(current))
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestRouter_RegisterMultibytePasswordOverBcryptLimit(t *testing.T) {
	ts := newTestServer(t)
	body, err := json.Marshal(map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": strings.Repeat("é", 40),
	})
	require.NoError(t, err)

	rr := ts.do(t, http.MethodPost, "/api/users/register", string(body), "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, map[string]interface{}{"password": "Password must be at most 72 bytes"}, jsonBody(t, rr))

	body, err = json.Marshal(map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": strings.Repeat("é", 36),
	})
	require.NoError(t, err)
	rr = ts.do(t, http.MethodPost, "/api/users/register", string(body), "")
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestRouter_CurrentRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/api/users/current", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/users/current", "", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_VerificationFlow(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/api/users/verify_email", `{"email":"a@x.com"}`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `"success"`, rr.Body.String())
	first := ts.outbox.sent["a@x.com"]
	require.Len(t, first, 8)

	rr = ts.do(t, http.MethodPost, "/api/users/verify_code", `{"email":"a@x.com","code":"`+first+`"}`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, first, jsonBody(t, rr)["code"])

	// A second issuance supersedes the first code.
	rr = ts.do(t, http.MethodPost, "/api/users/verify_email", `{"email":"a@x.com"}`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	second := ts.outbox.sent["a@x.com"]

	rr = ts.do(t, http.MethodPost, "/api/users/verify_code", `{"email":"a@x.com","code":"`+second+`"}`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := jsonBody(t, rr)
	assert.Equal(t, second, body["code"])
	assert.Equal(t, float64(2), body["revision"])

	if first != second {
		rr = ts.do(t, http.MethodPost, "/api/users/verify_code", `{"email":"a@x.com","code":"`+first+`"}`, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `null`, rr.Body.String())
	}
}

func TestRouter_VerifyEmailSendFailureWritesNothing(t *testing.T) {
	ts := newTestServer(t)
	ts.outbox.err = errors.New("relay refused")

	rr := ts.do(t, http.MethodPost, "/api/users/verify_email", `{"email":"a@x.com"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Empty(t, ts.codes.items)
}

func TestRouter_VerifyEmailMissingEmail(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodPost, "/api/users/verify_email", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, jsonBody(t, rr), "email")
}

func TestRouter_HealthCheck(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodGet, "/health-check/ping", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", jsonBody(t, rr)["message"])
}
