package middleware

import (
	"context"
	"net/http"

	"recipebox/internal/common"
	"recipebox/internal/common/security"
	"recipebox/internal/platform/logging"
)

type contextKey string

const SessionCtxKey contextKey = "session"

// Identify resolves the verified session token, if any, into the request
// context. It never rejects a request for lacking a session; handlers and
// Authenticator decide what an anonymous request may do.
func Identify(sessions *security.SessionManager, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessions.Resolve(r.Context())
			if err != nil {
				log.Error(r.Context(), "session lookup failed", "error", err)
				common.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if session == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), SessionCtxKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authenticator rejects requests that carry no valid session.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			common.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetSessionFromContext(ctx context.Context) (*security.Session, bool) {
	session, ok := ctx.Value(SessionCtxKey).(*security.Session)
	return session, ok && session != nil
}

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	session, ok := GetSessionFromContext(ctx)
	if !ok {
		return 0, false
	}
	return session.UserID, true
}
