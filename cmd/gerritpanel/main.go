package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	gerritadapter "github.com/ericfisherdev/gerritpanel/internal/adapter/driven/gerrit"
	githubadapter "github.com/ericfisherdev/gerritpanel/internal/adapter/driven/github"
	httphandler "github.com/ericfisherdev/gerritpanel/internal/adapter/driving/http"
	"github.com/ericfisherdev/gerritpanel/internal/application"
	"github.com/ericfisherdev/gerritpanel/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"backend", cfg.Backend,
		"listen_addr", cfg.ListenAddr,
		"gerrit_url", cfg.GerritURL,
		"request_timeout", cfg.RequestTimeout,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire the backend adapter.
	commentSvc, err := newCommentService(cfg)
	if err != nil {
		return err
	}

	// 4. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(commentSvc, cfg.Backend, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 5. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 6. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// newCommentService builds the comment service for the configured backend.
func newCommentService(cfg *config.Config) (*application.CommentService, error) {
	switch cfg.Backend {
	case config.BackendGitHub:
		client := githubadapter.NewClient(cfg.GitHubToken, cfg.RequestTimeout)
		slog.Info("github client created")
		return application.NewCommentService(client, client, nil, nil), nil

	case config.BackendGerrit:
		client, err := gerritadapter.NewClient(cfg.GerritURL, cfg.GerritUsername, cfg.GerritPassword, cfg.RequestTimeout)
		if err != nil {
			return nil, err
		}
		if !cfg.HasGerritCredentials() {
			slog.Info("no gerrit credentials configured, using anonymous access; drafts are unavailable")
		}
		return application.NewCommentService(client, client, client, client), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
