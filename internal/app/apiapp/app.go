package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/unicrossed/backend/internal/config"
	"github.com/unicrossed/backend/internal/infra/events"
	"github.com/unicrossed/backend/internal/infra/tracing"
	pgrepo "github.com/unicrossed/backend/internal/repo/postgres"
	redrepo "github.com/unicrossed/backend/internal/repo/redis"
	authsvc "github.com/unicrossed/backend/internal/services/auth"
	discoverysvc "github.com/unicrossed/backend/internal/services/discovery"
	interactionsvc "github.com/unicrossed/backend/internal/services/interactions"
	linkssvc "github.com/unicrossed/backend/internal/services/links"
)

type App struct {
	cfg             config.Config
	logger          *zap.Logger
	server          *http.Server
	postgres        *pgxpool.Pool
	redis           *goredis.Client
	publisher       events.Publisher
	shutdownTracing tracing.ShutdownFunc
	httpRouter      http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Env:         cfg.Env,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
		if cfg.Postgres.MigrateOnStart {
			if err := migrateUp(cfg.Postgres.DSN, log); err != nil {
				pool.Close()
				return nil, err
			}
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if strings.TrimSpace(cfg.NATS.URL) != "" {
		if p, err := events.Connect(cfg.NATS.URL, cfg.NATS.Subject, log); err != nil {
			log.Warn("nats connect failed, link events disabled", zap.Error(err))
		} else {
			publisher = p
		}
	}

	redisClient, err := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn("redis init failed, auth sessions unavailable", zap.Error(err))
	}
	sessionStore := redrepo.NewSessionStore(redisClient)
	userRepo := pgrepo.NewUserRepo(pool)
	interactionRepo := pgrepo.NewInteractionRepo()
	linkRepo := pgrepo.NewLinkRepo(pool)
	discoveryRepo := pgrepo.NewDiscoveryRepo(pool)

	signer := authsvc.NewSigner(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(signer, sessionStore, cfg.Auth.RefreshTTL)
	linksService := linkssvc.NewService(linkssvc.Dependencies{
		Interactions: interactionRepo,
		Links:        linkRepo,
	}, linkssvc.Config{
		DefaultListLimit: cfg.Discovery.LinksDefaultLimit,
		MaxListLimit:     cfg.Discovery.LinksMaxLimit,
	})
	interactionService := interactionsvc.NewService(interactionsvc.Dependencies{
		Tx:           pgrepo.NewTxManager(pool),
		Users:        userRepo,
		Interactions: interactionRepo,
		Links:        linksService,
		Events:       publisher,
		Logger:       log,
	})
	discoveryService := discoverysvc.NewService(discoveryRepo)

	RegisterRoutes(r, Dependencies{
		AuthService:        authService,
		DiscoveryService:   discoveryService,
		InteractionService: interactionService,
		LinksService:       linksService,
		Logger:             log,
		Config:             cfg,
	})

	handler := wrapHandler(r, cfg)
	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:             cfg,
		logger:          log,
		server:          server,
		postgres:        pool,
		redis:           redisClient,
		publisher:       publisher,
		shutdownTracing: shutdownTracing,
		httpRouter:      handler,
	}, nil
}

func wrapHandler(r http.Handler, cfg config.Config) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", IdentityTokenHeader},
		AllowCredentials: true,
	})
	return otelhttp.NewHandler(c.Handler(r), cfg.Tracing.ServiceName)
}

func migrateUp(dsn string, log *zap.Logger) error {
	migrator, err := pgrepo.NewMigrator(dsn, log)
	if err != nil {
		return fmt.Errorf("open migrator: %w", err)
	}
	defer func() {
		_ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	log.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
