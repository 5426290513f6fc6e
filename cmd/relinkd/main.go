package main

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-router"
	"github.com/relinkhq/relink"
	"github.com/relinkhq/relink/middleware/tokenware"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

//go:embed views
var viewsFS embed.FS

//go:embed data/fixtures/*.yml
var fixturesFS embed.FS

type App struct {
	config *AppConfig
	repo   relink.RepositoryManager
	auther *relink.Auther
	srv    router.Server[*fiber.App]
	logger relink.Logger
}

func main() {
	ctx := context.Background()

	container := gconfig.New(&AppConfig{})
	if err := container.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "config: no config file loaded, using defaults: %v\n", err)
	}

	cfg := container.Raw()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	app := &App{
		config: cfg,
		logger: newLogger(cfg.Env),
	}

	if err := withPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := withHTTPServer(app); err != nil {
		panic(err)
	}

	wireRoutes(app)

	app.srv.Serve(fmt.Sprintf(":%d", cfg.Server.Port))

	waitExitSignal()
}

func withPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.config.Persistence.GetDSN())
	if err != nil {
		return err
	}

	persistence.RegisterModel((*relink.User)(nil))
	persistence.RegisterModel((*relink.Redirect)(nil))

	client, err := persistence.New(app.config.Persistence, db, sqlitedialect.New())
	if err != nil {
		return err
	}

	migrationsFS, err := fs.Sub(relink.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	// Dev-only seed: a first admin account so the authorize endpoint is
	// reachable on a fresh database. Truncate keeps reseeding idempotent.
	if app.config.Env == "development" {
		client.RegisterFixtures(fixturesFS).AddOptions(persistence.WithTrucateTables())

		if err := client.Seed(ctx); err != nil {
			return err
		}
	}

	if report := client.Report(); report != nil && !report.IsZero() {
		app.logger.Info("persistence", "report", report.String())
	}

	app.repo = relink.NewRepositoryManager(client.DB())
	return nil
}

func withHTTPServer(app *App) error {
	templates, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return err
	}

	engine := django.NewFileSystem(http.FS(templates), ".html")

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	app.srv = srv
	return nil
}

func wireRoutes(app *App) {
	cfg := authConfig{app: app.config}

	sink := relink.ActivitySinkFunc(func(ctx context.Context, event relink.ActivityEvent) error {
		app.logger.Info("activity",
			"type", string(event.EventType),
			"actor", event.Actor.ID,
			"user", event.UserID,
		)
		return nil
	})

	provider := relink.NewUserProvider(app.repo.Users()).WithLogger(app.logger)
	auther := relink.NewAuthenticator(provider, app.repo.Users(), cfg).
		WithLogger(app.logger).
		WithActivitySink(sink)
	app.auther = auther

	// The soft pass resolves a user when a valid token rides along and
	// stays silent otherwise. The gate is the same middleware in
	// mandatory mode, mounted on the routes that need a session.
	soft := tokenware.New(tokenware.Config{
		Auth:        auther,
		Optional:    true,
		ContextKey:  cfg.GetContextKey(),
		TokenLookup: cfg.GetTokenLookup(),
		AuthScheme:  cfg.GetAuthScheme(),
	})
	gate := tokenware.New(tokenware.Config{
		Auth:        auther,
		ContextKey:  cfg.GetContextKey(),
		TokenLookup: cfg.GetTokenLookup(),
		AuthScheme:  cfg.GetAuthScheme(),
	})

	root := app.srv.Router()
	root.Use(soft)

	authAPI := relink.NewAuthAPIController(
		relink.WithAuthAPIRepository(app.repo),
		relink.WithAuthAPIAuthenticator(auther),
		relink.WithAuthAPILogger(app.logger),
		relink.WithAuthAPIContextKey(cfg.GetContextKey()),
	)
	authAPI.RegisterRoutes(root.Group("/auth/1"), gate)

	shortenerAPI := relink.NewShortenerAPIController(
		relink.WithShortenerAPIRepository(app.repo),
		relink.WithShortenerAPILogger(app.logger),
		relink.WithShortenerAPISink(sink),
		relink.WithShortenerAPIContextKey(cfg.GetContextKey()),
	)
	shortenerAPI.RegisterRoutes(root.Group("/shortener/1"), gate)

	root.Get("/config.json", func(ctx router.Context) error {
		return ctx.JSON(http.StatusOK, map[string]any{
			"name":     app.config.Name,
			"homepage": app.config.Homepage,
		})
	})

	root.Get("/", func(ctx router.Context) error {
		if app.config.Homepage.Type == "redirect" {
			return ctx.Redirect(app.config.Homepage.Path, http.StatusMovedPermanently)
		}
		return ctx.Render("index", router.ViewContext{
			"name":    app.config.Name,
			"message": app.config.Homepage.Message,
		})
	})

	root.Get("/:code", relink.NewRedirector(app.repo, app.logger, sink))

	root.Use(notFoundHandler(app))
}

// notFoundHandler terminates unmatched requests: JSON for API paths,
// the rendered 404 page for everything else (including redirect misses
// that fell through the redirector).
func notFoundHandler(app *App) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			path := ctx.OriginalURL()
			if strings.HasPrefix(path, "/auth/1") || strings.HasPrefix(path, "/shortener/1") {
				return relink.RespondMethodNotFound(ctx)
			}
			return ctx.Status(http.StatusNotFound).Render("404", router.ViewContext{
				"name": app.config.Name,
			})
		}
	}
}

func newLogger(env string) relink.Logger {
	level := slog.LevelInfo
	if env == "development" {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slogAdapter{l: slog.New(handler)}
}

type slogAdapter struct {
	l *slog.Logger
}

func (a slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
