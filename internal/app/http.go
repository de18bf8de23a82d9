package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pusdatin/satudata-backend/internal/http"
	httpH "github.com/pusdatin/satudata-backend/internal/http/handlers"
	httpMW "github.com/pusdatin/satudata-backend/internal/http/middleware"
	"github.com/pusdatin/satudata-backend/internal/observability"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

type Middleware struct {
	Auth      *httpMW.AuthMiddleware
	RateLimit *httpMW.RateLimiter
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Dataset   *httpH.DatasetHandler
	Upload    *httpH.UploadHandler
	Lifecycle *httpH.LifecycleHandler
	Events    *httpH.EventsHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, rt Realtime, db *gorm.DB, rdb redis.UniversalClient) Handlers {
	log.Info("Wiring handlers...")
	checks := map[string]httpH.Pinger{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return Handlers{
		Health:    httpH.NewHealthHandler(checks),
		Dataset:   httpH.NewDatasetHandler(log, services.Datasets),
		Upload:    httpH.NewUploadHandler(log, services.Uploads, cfg.MaxUploadBytes),
		Lifecycle: httpH.NewLifecycleHandler(log, services.Datasets),
		Events:    httpH.NewEventsHandler(log, rt.Hub),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, rdb redis.UniversalClient, metrics *observability.Metrics) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:      httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
		RateLimit: httpMW.NewRateLimiter(log, rdb, metrics, cfg.UploadRateLimit, cfg.UploadRateLimitWindow),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics, tracing bool) *gin.Engine {
	serviceName := ""
	if tracing {
		serviceName = cfg.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		ExposeMetrics:    metrics != nil && cfg.MetricsAddr == "",
		ServiceName:      serviceName,
		CORSOrigins:      cfg.CORSOrigins,
		AuthMiddleware:   middleware.Auth,
		RateLimiter:      middleware.RateLimit,
		DatasetHandler:   handlers.Dataset,
		UploadHandler:    handlers.Upload,
		LifecycleHandler: handlers.Lifecycle,
		HealthHandler:    handlers.Health,
		EventsHandler:    handlers.Events,
	})
}
