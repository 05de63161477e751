package security

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: map[string]time.Duration{}}
}

func (m *memoryRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.revoked[tokenID] = ttl
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[tokenID]
	return ok, nil
}

func newTestManager(opts SessionOptions) *SessionManager {
	if opts.Secret == nil {
		opts.Secret = []byte("test-secret")
	}
	if opts.TTL == 0 {
		opts.TTL = time.Hour
	}
	return NewSessionManager(opts)
}

func issueCookie(t *testing.T, m *SessionManager, userID int64) (*http.Cookie, *Session) {
	t.Helper()
	rec := httptest.NewRecorder()
	session, err := m.CreateSession(rec, userID)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0], session
}

// resolveWith runs a request carrying cookie through the verifier and
// returns what Resolve saw.
func resolveWith(t *testing.T, m *SessionManager, cookie *http.Cookie) (*Session, error) {
	t.Helper()
	var (
		got    *Session
		gotErr error
	)
	h := m.Verifier()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = m.Resolve(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/check_session", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got, gotErr
}

func TestCreateSession_SetsCookie(t *testing.T) {
	m := newTestManager(SessionOptions{CookieName: "sid", CookieSecure: true})

	cookie, session := issueCookie(t, m, 7)

	assert.Equal(t, "sid", cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.Equal(t, int64(7), session.UserID)
	assert.NotEmpty(t, session.TokenID)
}

func TestResolve_RoundTrip(t *testing.T) {
	m := newTestManager(SessionOptions{})
	cookie, issued := issueCookie(t, m, 42)

	got, err := resolveWith(t, m, cookie)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, issued.TokenID, got.TokenID)
}

func TestResolve_Absent(t *testing.T) {
	m := newTestManager(SessionOptions{})

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"garbage", &http.Cookie{Name: DefaultCookieName, Value: "not-a-jwt"}},
		{"other cookie name", &http.Cookie{Name: "other", Value: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveWith(t, m, tt.cookie)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestResolve_RejectsTamperedAndForeignTokens(t *testing.T) {
	m := newTestManager(SessionOptions{})
	cookie, _ := issueCookie(t, m, 1)

	parts := strings.Split(cookie.Value, ".")
	require.Len(t, parts, 3)
	forged := fmt.Sprintf(`{"user_id":"2","exp":%d}`, time.Now().Add(time.Hour).Unix())
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))
	tampered := *cookie
	tampered.Value = strings.Join(parts, ".")
	got, err := resolveWith(t, m, &tampered)
	require.NoError(t, err)
	assert.Nil(t, got)

	other := newTestManager(SessionOptions{Secret: []byte("another-secret")})
	foreign, _ := issueCookie(t, other, 1)
	got, err = resolveWith(t, m, foreign)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolve_RejectsExpiredToken(t *testing.T) {
	past := func() time.Time { return time.Now().Add(-48 * time.Hour) }
	m := newTestManager(SessionOptions{TTL: time.Hour, Now: past})
	cookie, _ := issueCookie(t, m, 1)

	got, err := resolveWith(t, m, cookie)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDestroySession_ClearsCookieAndRevokes(t *testing.T) {
	store := newMemoryRevocations()
	m := newTestManager(SessionOptions{Revocations: store})
	cookie, _ := issueCookie(t, m, 5)

	session, err := resolveWith(t, m, cookie)
	require.NoError(t, err)
	require.NotNil(t, session)

	rec := httptest.NewRecorder()
	require.NoError(t, m.DestroySession(context.Background(), rec, session))

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, DefaultCookieName, cleared[0].Name)
	assert.Empty(t, cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)

	ttl, ok := store.revoked[session.TokenID]
	require.True(t, ok)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)

	// Replaying the old cookie no longer resolves.
	got, err := resolveWith(t, m, cookie)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDestroySession_WithoutRevocationStore(t *testing.T) {
	m := newTestManager(SessionOptions{})
	rec := httptest.NewRecorder()

	require.NoError(t, m.DestroySession(context.Background(), rec, &Session{UserID: 1, TokenID: "t", ExpiresAt: time.Now().Add(time.Hour)}))
	assert.Len(t, rec.Result().Cookies(), 1)

	assert.Error(t, m.DestroySession(context.Background(), httptest.NewRecorder(), nil))
}

func TestRevocationStoreFailures(t *testing.T) {
	store := newMemoryRevocations()
	m := newTestManager(SessionOptions{Revocations: store})
	cookie, session := issueCookie(t, m, 5)

	store.err = errors.New("redis down")

	_, err := resolveWith(t, m, cookie)
	assert.ErrorContains(t, err, "redis down")

	err = m.DestroySession(context.Background(), httptest.NewRecorder(), session)
	assert.ErrorContains(t, err, "redis down")
}

func TestGetUserIDFromClaims(t *testing.T) {
	id, err := GetUserIDFromClaims(jwt.MapClaims{"user_id": "12"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, claims := range []jwt.MapClaims{
		{},
		{"user_id": 12.0},
		{"user_id": "abc"},
		{"user_id": "0"},
	} {
		_, err := GetUserIDFromClaims(claims)
		assert.Error(t, err, "%v", claims)
	}
}
