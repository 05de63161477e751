package handler

import (
	"net/http"

	"recipebox/internal/api/middleware"
	"recipebox/internal/app/service"
	"recipebox/internal/common"
	"recipebox/internal/common/security"
	"recipebox/internal/platform/logging"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	sessions    *security.SessionManager
	log         logging.Logger
}

func NewAuthHandler(authService *service.AuthService, sessions *security.SessionManager, log logging.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, log: log}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Get("/check_session", h.checkSession)
	r.Post("/login", h.login)
	r.Delete("/logout", h.logout)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	user, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if _, err := h.sessions.CreateSession(w, user.ID); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.log.Info(r.Context(), "user signed up", "user_id", user.ID)
	common.RespondWithJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) checkSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	user, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if _, err := h.sessions.CreateSession(w, user.ID); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

// logout without a session is an error, not a no-op.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "No active session")
		return
	}
	if err := h.sessions.DestroySession(r.Context(), w, session); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondNoContent(w)
}
