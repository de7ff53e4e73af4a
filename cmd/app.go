package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/redis/go-redis/v9"

	"github.com/frahmantamala/campus-fixit/api"
	"github.com/frahmantamala/campus-fixit/db"
	"github.com/frahmantamala/campus-fixit/internal"
	"github.com/frahmantamala/campus-fixit/internal/auth"
	authPostgres "github.com/frahmantamala/campus-fixit/internal/auth/postgres"
	"github.com/frahmantamala/campus-fixit/internal/category"
	"github.com/frahmantamala/campus-fixit/internal/core/events"
	"github.com/frahmantamala/campus-fixit/internal/issue"
	issuePostgres "github.com/frahmantamala/campus-fixit/internal/issue/postgres"
	"github.com/frahmantamala/campus-fixit/internal/transport"
	"github.com/frahmantamala/campus-fixit/internal/transport/rest"
	"github.com/frahmantamala/campus-fixit/internal/transport/swagger"
	"github.com/frahmantamala/campus-fixit/internal/upload"
	"github.com/frahmantamala/campus-fixit/internal/user"
	userPostgres "github.com/frahmantamala/campus-fixit/internal/user/postgres"
)

// App is the fully wired HTTP application.
type App struct {
	Config *internal.Config
	DB     *db.Conn
	Router *chi.Mux
	Events *events.EventBus
	Auth   *auth.Service
	Logger *slog.Logger
	redis  *redis.Client
}

// NewApp wires every component from cfg. The caller owns Close.
func NewApp(ctx context.Context, cfg *internal.Config, lg *slog.Logger) (*App, error) {
	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &App{Config: cfg, DB: conn, Logger: lg}
	if err := app.wire(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg, lg := a.Config, a.Logger

	if _, err := swagger.Load(ctx, api.OpenAPISpec); err != nil {
		return err
	}

	images, uploadDir, err := newImageStore(cfg)
	if err != nil {
		return err
	}

	authOpts := []auth.Option{auth.WithBcryptCost(cfg.Security.BCryptCost)}
	if cfg.Redis.Enabled() {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		a.redis = redis.NewClient(opts)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis: %w", err)
		}
		authOpts = append(authOpts, auth.WithLoginLimiter(
			auth.NewRedisLoginLimiter(a.redis, cfg.Redis.LoginAttempts, cfg.Redis.LoginWindow)))
		lg.Info("login throttling enabled", "attempts", cfg.Redis.LoginAttempts, "window", cfg.Redis.LoginWindow)
	}

	a.Events = events.NewEventBus(lg)
	issue.NewAuditLog(lg).Register(a.Events)

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.TokenDuration)
	a.Auth = auth.NewService(authPostgres.NewRepository(a.DB.Gorm), tokens, lg, authOpts...)

	userService := user.NewService(userPostgres.NewRepository(a.DB.Gorm), lg)

	issueService := issue.NewService(
		issuePostgres.NewIssueRepository(a.DB.Gorm),
		userService,
		lg,
		issue.WithStatsReader(issuePostgres.NewStatsRepository(a.DB.SQLX)),
		issue.WithPublisher(a.Events),
	)

	policy := auth.DefaultPolicy()

	a.Router = chi.NewRouter()
	rest.RegisterAllRoutes(a.Router, rest.Routes{
		DB:              a.DB.SQLX.DB,
		AuthHandler:     auth.NewHandler(a.Auth),
		RBAC:            auth.NewRBACAuthorization(policy, lg),
		UserHandler:     user.NewHandler(userService),
		CategoryHandler: category.NewHandler(transport.NewBaseHandler(lg), category.NewService()),
		IssueHandler:    issue.NewHandler(issueService, images, policy, cfg.Upload.MaxSize),
		UploadDir:       uploadDir,
		UploadPath:      cfg.Upload.PublicPath,
		OpenAPISpec:     api.OpenAPISpec,
		AllowedOrigins:  cfg.Server.Origins(),
		Logger:          lg,
	})
	return nil
}

// newImageStore returns the configured store and, for disk storage, the
// directory to serve statically.
func newImageStore(cfg *internal.Config) (upload.ImageStore, string, error) {
	if cfg.Upload.Storage == "cloudinary" {
		store, err := upload.NewCloudinaryStore(cfg.Upload.Cloudinary)
		if err != nil {
			return nil, "", fmt.Errorf("failed to init cloudinary: %w", err)
		}
		return store, "", nil
	}
	store, err := upload.NewLocalStore(cfg.Upload.Dir, cfg.Server.BaseURL, cfg.Upload.PublicPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to init upload dir: %w", err)
	}
	return store, store.Dir(), nil
}

func (a *App) Handler() http.Handler {
	return a.Router
}

// Close waits for in-flight event handlers, then releases connections.
func (a *App) Close() error {
	if a.Events != nil {
		a.Events.Wait()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Error("redis close error", "error", err)
		}
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
