// Package main is the entry point for the inkpress blog server.
// It loads configuration, prepares the content directory, sets up routing,
// and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"inkpress/internal/auth"
	"inkpress/internal/cache"
	"inkpress/internal/config"
	"inkpress/internal/feed"
	"inkpress/internal/handlers"
	"inkpress/internal/ratelimit"
	"inkpress/internal/repo"
	"inkpress/internal/router"
	"inkpress/internal/taxonomy"
)

func main() {
	setup2FA := flag.Bool("setup-2fa", false, "generate a TOTP secret and QR code, then exit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// .env is optional; real environments set variables directly.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"content_dir", cfg.ContentDir,
	)

	if *setup2FA {
		if err := provisionTOTP(cfg); err != nil {
			slog.Error("2fa setup failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Create the standard category directories and categories.json on first run.
	taxonomyStore := taxonomy.NewStore(cfg.ContentDir)
	if err := taxonomyStore.EnsureDefaults(); err != nil {
		slog.Error("failed to prepare content directory", "error", err)
		os.Exit(1)
	}

	// The admin password may arrive as a bcrypt hash or as plaintext; plaintext
	// is hashed once at startup so the comparison path is always bcrypt.
	passwordHash := cfg.AdminPasswordHash
	if passwordHash == "" {
		passwordHash, err = auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			slog.Error("failed to hash admin password", "error", err)
			os.Exit(1)
		}
		if !cfg.IsDev() {
			slog.Warn("using ADMIN_PASSWORD; set ADMIN_PASSWORD_HASH to avoid hashing at startup")
		}
	}

	// Redis is optional: without it, rendered pages and feeds are rebuilt on
	// every request.
	var renderCache *cache.RenderCache
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		renderCache = cache.New(client, cache.DefaultTTL)
	} else {
		slog.Info("redis not configured, render caching disabled")
	}

	repository := repo.New(cfg.ContentDir)
	tokens := auth.NewTokenService(cfg.JWTSecret)
	limiter := ratelimit.New()
	site := feed.Site{
		URL:         cfg.SiteURL,
		Title:       cfg.SiteTitle,
		Description: cfg.SiteDescription,
	}

	r := router.New(router.Deps{
		Tokens:     tokens,
		Limiter:    limiter,
		Auth:       handlers.NewAuth(tokens, passwordHash, cfg.AdminTOTPSecret),
		Posts:      handlers.NewPosts(repository, renderCache),
		Categories: handlers.NewCategories(taxonomyStore, renderCache),
		Upload:     handlers.NewUpload(repository, renderCache),
		Feeds:      handlers.NewFeeds(repository, site, renderCache),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// provisionTOTP generates a fresh TOTP secret, writes a QR code PNG next to
// the binary, and prints the values to add to the environment.
func provisionTOTP(cfg *config.Config) error {
	const qrFile = "inkpress-2fa.png"

	secret, err := auth.ProvisionTOTP(cfg.SiteTitle, "admin", qrFile)
	if err != nil {
		return err
	}

	fmt.Printf("TOTP secret: %s\n", secret)
	fmt.Printf("QR code written to %s (scan it with an authenticator app)\n", qrFile)
	fmt.Printf("Set ADMIN_TOTP_SECRET=%s to enable the second factor.\n", secret)
	return nil
}
