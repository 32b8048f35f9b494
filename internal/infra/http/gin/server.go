package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rentdom/internal/infra/config"
	"rentdom/internal/infra/obs"
)

type PropertyHTTP interface {
	Catalog(c *gin.Context)
	Get(c *gin.Context)
}

type AvailabilityHTTP interface {
	Snapshot(c *gin.Context)
	Refresh(c *gin.Context)
	UnavailableDates(c *gin.Context)
	Picker(c *gin.Context)
}

type ExportHTTP interface {
	Calendar(c *gin.Context)
	CSV(c *gin.Context)
}

type InquiryHTTP interface {
	Submit(c *gin.Context)
	Remaining(c *gin.Context)
}

type SiteHTTP interface {
	Settings(c *gin.Context)
}

type Handlers struct {
	Property     PropertyHTTP
	Availability AvailabilityHTTP
	Export       ExportHTTP
	Inquiry      InquiryHTTP
	Site         SiteHTTP
	Metrics      gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if h.Metrics != nil {
		router.GET("/metrics", h.Metrics)
	}

	api := router.Group("/api/v1")
	if h.Property != nil {
		api.GET("/properties", h.Property.Catalog)
		api.GET("/properties/:id", h.Property.Get)
	}
	if h.Availability != nil {
		api.GET("/availability", h.Availability.Snapshot)
		api.POST("/availability/refresh", h.Availability.Refresh)
		api.GET("/properties/:id/unavailable-dates", h.Availability.UnavailableDates)
		api.POST("/properties/:id/picker", h.Availability.Picker)
	}
	if h.Export != nil {
		api.GET("/properties/:id/calendar.ics", h.Export.Calendar)
		api.GET("/availability.csv", h.Export.CSV)
	}
	if h.Inquiry != nil {
		api.POST("/inquiries", h.Inquiry.Submit)
		api.GET("/inquiries/remaining", h.Inquiry.Remaining)
	}
	if h.Site != nil {
		api.GET("/site", h.Site.Settings)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", ClientIDHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
