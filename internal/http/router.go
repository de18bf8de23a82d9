package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/pusdatin/satudata-backend/internal/http/handlers"
	httpMW "github.com/pusdatin/satudata-backend/internal/http/middleware"
	"github.com/pusdatin/satudata-backend/internal/observability"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics
	// ExposeMetrics serves /metrics on the API router.
	ExposeMetrics bool
	ServiceName   string
	CORSOrigins   []string

	AuthMiddleware *httpMW.AuthMiddleware
	RateLimiter    *httpMW.RateLimiter

	DatasetHandler   *httpH.DatasetHandler
	UploadHandler    *httpH.UploadHandler
	LifecycleHandler *httpH.LifecycleHandler
	HealthHandler    *httpH.HealthHandler
	EventsHandler    *httpH.EventsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil && cfg.ExposeMetrics {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Events
	if cfg.EventsHandler != nil {
		stream := r.Group("/api")
		if cfg.AuthMiddleware != nil {
			stream.Use(cfg.AuthMiddleware.RequireStreamAuth())
		}
		stream.GET("/events", cfg.EventsHandler.Stream)
	}

	protected := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Catalog
		if cfg.DatasetHandler != nil {
			protected.POST("/datasets", cfg.DatasetHandler.CreateDataset)
			protected.GET("/datasets", cfg.DatasetHandler.ListDatasets)
			protected.GET("/datasets/:id", cfg.DatasetHandler.GetDataset)
			protected.PATCH("/datasets/:id", cfg.DatasetHandler.UpdateDataset)
			protected.GET("/datasets/:id/columns", cfg.DatasetHandler.ListColumns)
			protected.GET("/datasets/:id/files", cfg.DatasetHandler.ListFiles)
			protected.GET("/datasets/:id/records", cfg.DatasetHandler.ListRecords)
			protected.GET("/datasets/:id/reviews", cfg.DatasetHandler.ListReviews)
			protected.GET("/datasets/:id/template", cfg.DatasetHandler.DownloadTemplate)
		}

		// Uploads
		if cfg.UploadHandler != nil {
			protected.POST("/datasets/:id/files", cfg.RateLimiter.Limit(), cfg.UploadHandler.UploadFile)
		}

		// Lifecycle
		if cfg.LifecycleHandler != nil {
			protected.POST("/datasets/:id/submit", cfg.LifecycleHandler.Submit)
			protected.POST("/datasets/:id/revise", cfg.LifecycleHandler.Revise)
			protected.POST("/datasets/:id/kabid/approve", cfg.LifecycleHandler.ApproveKabid)
			protected.POST("/datasets/:id/kabid/reject", cfg.LifecycleHandler.RejectKabid)
			protected.POST("/datasets/:id/pusdatin/verify", cfg.LifecycleHandler.VerifyPusdatin)
			protected.POST("/datasets/:id/pusdatin/reject", cfg.LifecycleHandler.RejectPusdatin)

			protected.GET("/queues/kabid", cfg.LifecycleHandler.KabidQueue)
			protected.GET("/queues/pusdatin", cfg.LifecycleHandler.PusdatinQueue)
		}
	}

	return r
}
