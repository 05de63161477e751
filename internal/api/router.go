package api

import (
	"net/http"
	"time"

	"recipebox/internal/api/handler"
	"recipebox/internal/api/middleware"
	"recipebox/internal/app/service"
	"recipebox/internal/common"
	"recipebox/internal/common/security"
	"recipebox/internal/platform/logging"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// RequestTimeout bounds a request's context. The HTTP server's write timeout
// must outlast it so the 503 from the timeout middleware reaches the client.
const RequestTimeout = 60 * time.Second

func NewRouter(
	authService *service.AuthService,
	recipeService *service.RecipeService,
	sessions *security.SessionManager,
	log logging.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(RequestTimeout))

	// Session cookie: verify the token, then resolve it to a session in the
	// context. Anonymous requests pass through; routes decide what they need.
	r.Use(sessions.Verifier())
	r.Use(middleware.Identify(sessions, log))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(authService, sessions, log)
	authHandler.RegisterRoutes(r)

	recipeHandler := handler.NewRecipeHandler(recipeService, log)
	r.Route("/recipes", recipeHandler.RegisterRoutes)

	return r
}
