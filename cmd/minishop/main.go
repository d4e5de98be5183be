// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/minishop-go/internal/config"
	"github.com/olegiv/minishop-go/internal/handler"
	"github.com/olegiv/minishop-go/internal/imaging"
	"github.com/olegiv/minishop-go/internal/logging"
	"github.com/olegiv/minishop-go/internal/middleware"
	"github.com/olegiv/minishop-go/internal/render"
	"github.com/olegiv/minishop-go/internal/scheduler"
	"github.com/olegiv/minishop-go/internal/service"
	"github.com/olegiv/minishop-go/internal/session"
	"github.com/olegiv/minishop-go/internal/storage"
	"github.com/olegiv/minishop-go/internal/store"
	"github.com/olegiv/minishop-go/internal/transfer"
	"github.com/olegiv/minishop-go/internal/version"
	"github.com/olegiv/minishop-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// importOptions selects a one-off legacy import instead of serving.
type importOptions struct {
	dsn      string
	prefix   string
	imageDir string
}

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	var imp importOptions
	flag.StringVar(&imp.dsn, "import-mysql", "", "Import users and products from a legacy MySQL database (DSN), then exit")
	flag.StringVar(&imp.prefix, "import-prefix", "", "Table prefix of the legacy database")
	flag.StringVar(&imp.imageDir, "import-storage", "", "Legacy public storage directory holding product images")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "MiniShop - small product catalog with an admin area\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISHOP_SESSION_SECRET     Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISHOP_DB_PATH            SQLite database path (default: ./data/minishop.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISHOP_SERVER_HOST        Listen host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISHOP_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISHOP_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISHOP_LOG_LEVEL          debug|info|warn|error (default: info)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISHOP_STORAGE_DIR        Product image directory (default: ./storage)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISHOP_STORAGE_URL_PREFIX Public URL prefix of product images (default: /storage)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISHOP_ORPHAN_SWEEP_SPEC  Cron spec of the orphan image sweep, or \"off\" (default: @hourly)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISHOP_ORPHAN_GRACE       Minimum age of an unreferenced image before removal (default: 1h)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISHOP_EVENT_PRUNE_SPEC   Cron spec of the event log pruning, or \"off\" (default: @daily)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISHOP_EVENT_RETENTION    How long event log entries are kept (default: 2160h)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINISHOP_DO_SEED            Seed fixture users and products into an empty database\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Printf("minishop %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(imp); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(imp importOptions) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	files, err := storage.NewLocal(cfg.StorageDir, cfg.StorageURLPrefix)
	if err != nil {
		return fmt.Errorf("initializing image storage: %w", err)
	}

	ctx := context.Background()

	if imp.dsn != "" {
		return runImport(ctx, db, files, logger, imp)
	}

	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		if err := seedImages(ctx, files); err != nil {
			return fmt.Errorf("seeding images: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		StorageURL:     files.URL,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	jobs := scheduler.New(db, files, logger, cfg.Scheduler())
	if err := jobs.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer jobs.Stop()

	eventService := service.NewEventService(db)
	loginGuard := middleware.NewLoginGuard(middleware.DefaultLoginGuardConfig(), eventService)
	defer loginGuard.Close()

	// Public form submissions: 1 request per second, burst of 5
	formLimiter := middleware.NewFormRateLimiter(1, 5)

	shopHandler := handler.NewShopHandler(db, renderer)
	productsHandler := handler.NewProductsHandler(db, files, renderer)
	eventsHandler := handler.NewEventsHandler(db, renderer)
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginGuard)
	healthHandler := handler.NewHealthHandler(db, cfg.StorageDir, versionInfo)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())))
	r.Use(middleware.LoadUser(sessionManager, db))

	// Health checks; details only for signed-in admins
	r.Get(handler.RouteHealth, healthHandler.Health)
	r.Get(handler.RouteHealth+"/live", healthHandler.Liveness)
	r.Get(handler.RouteHealth+"/ready", healthHandler.Readiness)

	// Public catalog
	r.Get(handler.RouteRoot, shopHandler.Index)
	r.Get(handler.RouteProductsID, shopHandler.Show)

	// Authentication
	r.Group(func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(formLimiter.Middleware())

		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginGuard.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Post(handler.RouteLogout, authHandler.Logout)
		r.Get(handler.RouteRegister, authHandler.RegisterForm)
		r.Post(handler.RouteRegister, authHandler.Register)
	})

	// Admin area
	r.Route(handler.RouteAdmin, func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.RequireAdmin(renderer, eventService))

		r.Get(handler.RouteRoot, productsHandler.Dashboard)
		r.Get(handler.RouteAdminProducts, productsHandler.List)
		r.Get(handler.RouteAdminProducts+handler.RouteSuffixCreate, productsHandler.NewForm)
		r.Post(handler.RouteAdminProducts, productsHandler.Create)
		r.Get(handler.RouteAdminProductsID, productsHandler.View)
		r.Get(handler.RouteAdminProductsID+handler.RouteSuffixEdit, productsHandler.EditForm)
		r.Put(handler.RouteAdminProductsID, productsHandler.Update)
		r.Patch(handler.RouteAdminProductsID, productsHandler.Update)
		r.Post(handler.RouteAdminProductsID, productsHandler.Update) // HTML forms can't send PUT
		r.Delete(handler.RouteAdminProductsID, productsHandler.Delete)
		r.Post(handler.RouteAdminProductsID+handler.RouteSuffixDelete, productsHandler.Delete)
		r.Get(handler.RouteAdminEvents, eventsHandler.List)
	})

	// Static assets: cache for 1 year
	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	staticHandler := middleware.StaticCache(middleware.CacheYear)(http.StripPrefix("/static/dist/", http.FileServer(http.FS(staticFS))))
	r.Handle("/static/dist/*", staticHandler)

	// Product images: cache for 1 week
	imagePrefix := strings.TrimSuffix(cfg.StorageURLPrefix, "/") + "/"
	imageHandler := middleware.StaticCache(middleware.CacheWeek)(http.StripPrefix(imagePrefix, http.FileServer(http.Dir(cfg.StorageDir))))
	r.Handle(imagePrefix+"*", imageHandler)

	r.NotFound(shopHandler.NotFound)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Image uploads on slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// seedImages writes a placeholder for every fixture image that is missing
// from the store.
func seedImages(ctx context.Context, files storage.Store) error {
	created := 0
	for _, key := range store.SeedImageKeys() {
		exists, err := files.Exists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		data, err := imaging.Placeholder(key, imaging.PlaceholderWidth, imaging.PlaceholderHeight)
		if err != nil {
			return err
		}
		if err := files.PutKey(ctx, key, data); err != nil {
			return fmt.Errorf("storing %s: %w", key, err)
		}
		created++
	}
	if created > 0 {
		slog.Info("seeded product images", "count", created)
	}
	return nil
}

// runImport copies a legacy MySQL catalog into the database and exits.
func runImport(ctx context.Context, db *sql.DB, files storage.Store, logger *slog.Logger, imp importOptions) error {
	src, err := transfer.NewMySQLSource(ctx, imp.dsn, imp.prefix)
	if err != nil {
		return fmt.Errorf("connecting to legacy database: %w", err)
	}
	defer func() { _ = src.Close() }()

	result, err := transfer.NewImporter(db, files, imp.imageDir, logger).Import(ctx, src)
	if err != nil {
		return fmt.Errorf("importing: %w", err)
	}

	for _, msg := range result.Errors {
		logger.Warn("import: row skipped", "detail", msg)
	}
	_, _ = fmt.Printf("Imported %d users and %d products (%d skipped), %d images copied, %d missing\n",
		result.UsersImported, result.ProductsImported, result.ProductsSkipped,
		result.ImagesCopied, result.ImagesMissing)
	return nil
}
