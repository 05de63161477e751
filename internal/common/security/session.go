package security

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	jwxjwt "github.com/lestrrat-go/jwx/v2/jwt"
)

const DefaultCookieName = "session"

// RevocationStore remembers logged-out token ids until they would have
// expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type SessionOptions struct {
	Secret       []byte
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	// Revocations is optional; without it logout only clears the cookie.
	Revocations RevocationStore
	Now         func() time.Time
}

// Session is the identity carried by a verified session token.
type Session struct {
	UserID    int64
	TokenID   string
	ExpiresAt time.Time
}

// SessionManager issues and reads stateless HS256 session tokens carried in
// a cookie. No session state is kept on the server.
type SessionManager struct {
	TokenAuth   *jwtauth.JWTAuth
	ttl         time.Duration
	cookieName  string
	secure      bool
	revocations RevocationStore
	now         func() time.Time
}

func NewSessionManager(opts SessionOptions) *SessionManager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SessionManager{
		TokenAuth:   jwtauth.New("HS256", opts.Secret, nil),
		ttl:         opts.TTL,
		cookieName:  opts.CookieName,
		secure:      opts.CookieSecure,
		revocations: opts.Revocations,
		now:         opts.Now,
	}
}

// TokenFromCookie is a jwtauth token finder reading the session cookie.
func (m *SessionManager) TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

// Verifier decodes and validates the session cookie on every request and
// stores the result in the request context for Resolve.
func (m *SessionManager) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verify(m.TokenAuth, m.TokenFromCookie)
}

// CreateSession issues a token for userID and sets it as the session cookie.
func (m *SessionManager) CreateSession(w http.ResponseWriter, userID int64) (*Session, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	session := &Session{UserID: userID, TokenID: uuid.NewString(), ExpiresAt: expiresAt}

	claims := jwt.MapClaims{
		"user_id": strconv.FormatInt(userID, 10),
		"jti":     session.TokenID,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	}
	_, tokenString, err := m.TokenAuth.Encode(claims)
	if err != nil {
		return nil, fmt.Errorf("encode session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    tokenString,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return session, nil
}

// Resolve returns the session verified by Verifier, or nil when the request
// carries no usable token (missing, malformed, tampered, expired, revoked).
// An error is returned only when the revocation store cannot be consulted.
func (m *SessionManager) Resolve(ctx context.Context) (*Session, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return nil, nil
	}
	session, err := sessionFromToken(token, claims)
	if err != nil {
		return nil, nil
	}

	if m.revocations != nil && session.TokenID != "" {
		revoked, err := m.revocations.IsRevoked(ctx, session.TokenID)
		if err != nil {
			return nil, fmt.Errorf("check session revocation: %w", err)
		}
		if revoked {
			return nil, nil
		}
	}
	return session, nil
}

// DestroySession clears the cookie and, when a revocation store is
// configured, revokes the token for the rest of its lifetime.
func (m *SessionManager) DestroySession(ctx context.Context, w http.ResponseWriter, session *Session) error {
	if session == nil {
		return errors.New("no session to destroy")
	}
	if m.revocations != nil && session.TokenID != "" {
		if ttl := session.ExpiresAt.Sub(m.now()); ttl > 0 {
			if err := m.revocations.Revoke(ctx, session.TokenID, ttl); err != nil {
				return fmt.Errorf("revoke session: %w", err)
			}
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func sessionFromToken(token jwxjwt.Token, claims jwt.MapClaims) (*Session, error) {
	userID, err := GetUserIDFromClaims(claims)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: userID, TokenID: token.JwtID(), ExpiresAt: token.Expiration()}, nil
}

func GetUserIDFromClaims(claims jwt.MapClaims) (int64, error) {
	raw, ok := claims["user_id"].(string)
	if !ok {
		return 0, errors.New("user_id claim is missing or not a string")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("user_id claim %q is not a valid id", raw)
	}
	return id, nil
}
