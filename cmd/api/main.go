package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"itemdesk/internal/auth"
	"itemdesk/internal/catalog"
	"itemdesk/internal/circulation"
	"itemdesk/internal/config"
	"itemdesk/internal/postgres"
	"itemdesk/internal/telemetry"
	"itemdesk/internal/user"
	"itemdesk/internal/web"
)

const serviceName = "itemdesk-api"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("tracer shutdown", "error", err)
		}
	}()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("database ready")

	users := user.NewService(user.NewPostgresStore(db))
	items := catalog.NewService(catalog.NewPostgresStore(db))
	checkouts := circulation.NewService(circulation.NewPostgresStore(db), items)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authenticator := auth.NewAuthenticator(tokens, users, logger)

	authHandler := auth.NewHandler(users, tokens, logger)
	userHandler := user.NewHandler(users, logger)
	itemHandler := catalog.NewHandler(items, logger)
	checkoutHandler := circulation.NewHandler(checkouts, logger)

	router := routes(
		logger, cfg, authenticator,
		authHandler, userHandler, itemHandler, checkoutHandler,
	)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr, "env", cfg.Env)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func routes(
	logger *slog.Logger,
	cfg config.Config,
	authenticator *auth.Authenticator,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	itemHandler *catalog.Handler,
	checkoutHandler *circulation.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(web.RecoverPanic(logger))
	r.Use(web.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	r.Use(web.RequestLogger(logger))
	r.Use(web.Telemetry(serviceName))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handleHealth)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(authenticator.RequireUser)

			r.Route("/items", func(r chi.Router) {
				r.Get("/", itemHandler.HandleList)
				r.Post("/", itemHandler.HandleCreate)
				r.Get("/checkouts", checkoutHandler.HandleListActive)

				r.Route("/{itemID}", func(r chi.Router) {
					r.Get("/", itemHandler.HandleGet)
					r.Put("/", itemHandler.HandleUpdate)
					r.Delete("/", itemHandler.HandleDelete)
					r.Get("/checkout-history", checkoutHandler.HandleHistory)
					r.Post("/checkouts", checkoutHandler.HandleCheckout)
					r.Put("/checkouts/{checkoutID}/returned", checkoutHandler.HandleReturn)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Route("/me", func(r chi.Router) {
					r.Get("/", userHandler.HandleMe)
					r.Get("/checkouts", checkoutHandler.HandleListMine)
					r.Put("/password", userHandler.HandleChangePassword)
					r.Put("/name", userHandler.HandleChangeName)
					r.Put("/email", userHandler.HandleChangeEmail)
				})

				r.Group(func(r chi.Router) {
					r.Use(authenticator.RequireAdmin)
					r.Get("/", userHandler.HandleList)
					r.Post("/", userHandler.HandleRegister)
					r.Get("/{userID}", userHandler.HandleGet)
					r.Delete("/{userID}", userHandler.HandleDelete)
					r.Put("/{userID}/role", userHandler.HandleChangeRole)
				})
			})
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	web.Respond(w, http.StatusOK, web.Envelope{"status": "available"})
}
