package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	dbpkg "github.com/pusdatin/satudata-backend/internal/data/db"
	apphttp "github.com/pusdatin/satudata-backend/internal/http"
	"github.com/pusdatin/satudata-backend/internal/observability"
	"github.com/pusdatin/satudata-backend/internal/platform/filestore"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics
	Store    filestore.Store
	Redis    redis.UniversalClient
	Realtime Realtime

	pg           *dbpkg.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// NewLogger builds the process logger from LOG_MODE after loading .env.
func NewLogger() (*logger.Logger, error) {
	boot := logger.Nop()
	LoadDotEnv(boot)
	log, err := logger.New(envMode())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func New(ctx context.Context) (*App, error) {
	log, err := NewLogger()
	if err != nil {
		return nil, err
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	metrics := observability.Init(log)
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{ServiceName: cfg.ServiceName})

	pg, err := OpenDatabase(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := pg.AutoMigrateAll(cfg.EnableRLS); err != nil {
			_ = pg.Close()
			log.Sync()
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
	}
	theDB := pg.DB()

	store, err := ResolveFileStore(ctx, log, cfg.Storage, cfg.StorageErr)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}
	rdb, err := newRedisClient(ctx, log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	aggs := wireAggregates(theDB, log, cfg, reposet, metrics)
	rt := wireRealtime(log, cfg, rdb, metrics)
	serviceset := wireServices(log, cfg, reposet, aggs, store, metrics, rt.Emitter)
	handlerset := wireHandlers(log, cfg, serviceset, rt, theDB, rdb)
	middleware := wireMiddleware(log, cfg, rdb, metrics)
	router := wireRouter(log, cfg, handlerset, middleware, metrics, otelShutdown != nil)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		Store:        store,
		Redis:        rdb,
		Realtime:     rt,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// OpenDatabase connects to Postgres without migrating.
func OpenDatabase(log *logger.Logger, cfg Config) (*dbpkg.PostgresService, error) {
	pg, err := dbpkg.NewPostgresService(log, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	return pg, nil
}

// Start launches the event forwarder, the background collectors and the
// dedicated metrics listener.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Realtime.Bus != nil {
		if err := a.Realtime.Bus.StartForwarder(ctx, a.Realtime.Hub.Broadcast); err != nil {
			a.Log.Warn("event forwarder not started", "error", err)
		}
	}
	if a.Metrics != nil {
		a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
		if a.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Redis)
		}
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("HTTP server listening", "addr", addr)
	srv := &apphttp.Server{Engine: a.Router}
	if a.Realtime.Hub != nil {
		srv.RegisterOnShutdown(a.Realtime.Hub.CloseAll)
	}
	return srv.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if closer, ok := a.Store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if a.Realtime.Bus != nil {
		_ = a.Realtime.Bus.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
