package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipebox/internal/api"
	"recipebox/internal/app/service"
	"recipebox/internal/common/security"
	"recipebox/internal/domain/repository"
	"recipebox/internal/platform/config"
	"recipebox/internal/platform/database"
	"recipebox/internal/platform/kv"
	"recipebox/internal/platform/logging"

	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		logging.New("error", "text").Error(context.Background(), "server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.Info(ctx, "configuration loaded", "env", cfg.AppEnv, "db_driver", cfg.DBDriver)

	// 2. Initialize Database
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info(ctx, "database ready")

	// 3. Initialize Redis (optional)
	rdb, err := kv.ConnectRedis(ctx, cfg)
	if err != nil {
		return err
	}
	defer kv.CloseRedis(rdb)

	// 4. Initialize Sessions
	sessions := newSessionManager(ctx, cfg, rdb, log)

	// 5. Initialize Repositories
	userRepo := repository.NewUserRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)

	// 6. Initialize Services
	authService := service.NewAuthService(db, userRepo)
	recipeService := service.NewRecipeService(db, recipeRepo, userRepo)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(authService, recipeService, sessions, log)

	server := newHTTPServer(cfg.APIPort, router)

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-stop:
	}

	log.Info(ctx, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info(ctx, "server stopped gracefully")
	return nil
}

func newSessionManager(ctx context.Context, cfg *config.Config, rdb *redis.Client, log logging.Logger) *security.SessionManager {
	opts := security.SessionOptions{
		Secret:       []byte(cfg.SessionSecret),
		TTL:          cfg.SessionTTL(),
		CookieName:   cfg.SessionCookieName,
		CookieSecure: cfg.SessionCookieSecure,
	}
	if rdb != nil {
		opts.Revocations = security.NewRedisRevocationStore(rdb)
		log.Info(ctx, "session revocation enabled", "redis_addr", cfg.RedisAddr)
	} else {
		log.Warn(ctx, "session revocation disabled: logged-out tokens stay valid until they expire; set REDIS_ADDR to enable it",
			"session_ttl", cfg.SessionTTL())
	}
	return security.NewSessionManager(opts)
}

// newHTTPServer keeps WriteTimeout above the router's request timeout so the
// router, not the connection, decides when a slow request ends.
func newHTTPServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: api.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
