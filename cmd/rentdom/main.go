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

	"github.com/google/uuid"

	"rentdom/internal/app/commands"
	appoutbox "rentdom/internal/app/outbox"
	availabilityapp "rentdom/internal/app/handlers/availability"
	inquiryapp "rentdom/internal/app/handlers/inquiries"
	listingapp "rentdom/internal/app/handlers/listings"
	"rentdom/internal/app/middleware"
	"rentdom/internal/app/policies"
	"rentdom/internal/app/queries"
	"rentdom/internal/domain/availability"
	"rentdom/internal/domain/inquiry"
	"rentdom/internal/domain/listings"
	"rentdom/internal/domain/shared/events"
	"rentdom/internal/infra/broker/kafka"
	"rentdom/internal/infra/config"
	mongodb "rentdom/internal/infra/db/mongo"
	ginserver "rentdom/internal/infra/http/gin"
	"rentdom/internal/infra/obs"
	eventoutbox "rentdom/internal/infra/outbox"
	"rentdom/internal/infra/relay"
	"rentdom/internal/infra/sheets"
	"rentdom/internal/infra/storage/memory"
	redisstore "rentdom/internal/infra/storage/redis"
	s3store "rentdom/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg = config.Default()
		cfg.Env = env
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	slog.SetDefault(logger)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger, Metrics: app.metrics}, app.health, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	health   obs.HealthHandlers
	metrics  *obs.Metrics
	worker   *eventoutbox.Worker
	closers  []func(context.Context) error
}

func (a application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, c := range a.closers {
		if err := c(ctx); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	app := application{metrics: obs.NewMetrics()}
	checks := map[string]obs.Check{}
	loc := cfg.Location()
	now := func() time.Time { return time.Now().In(loc) }

	catalog := memory.NewCatalogRepository()
	props, err := loadCatalog(ctx, cfg, logger, checks)
	if err != nil {
		return app, fmt.Errorf("catalog: %w", err)
	}
	catalog.Replace(props)
	logger.Info("catalog loaded", "source", cfg.CatalogSource, "properties", catalog.Len())
	checks["catalog"] = func(context.Context) error {
		if catalog.Len() == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	}

	cache := sheets.NewCache(&sheets.Client{
		URL:     cfg.SheetURL,
		Charset: cfg.SheetCharset,
		Timeout: cfg.SheetFetchTimeout,
	}, availability.DefaultPropertyMapper(), cfg.SheetCacheTTL)
	cache.Logger = logger
	cache.Metrics = app.metrics
	cache.Now = now

	resolver := &availabilityapp.StatusResolver{
		Source: cache,
		Wait:   cfg.AvailabilityWait,
		Now:    now,
		Logger: logger,
	}

	window := inquiry.SlidingWindow{Limit: cfg.RateLimitMax, Window: cfg.RateLimitWindow}
	var limiter policies.RateLimiter = memory.NewRateLimiter(window)
	if cfg.RedisAddr != "" {
		client, err := redisstore.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return app, fmt.Errorf("redis: %w", err)
		}
		limiter = redisstore.NewRateLimiter(client, window)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		app.closers = append(app.closers, func(context.Context) error { return client.Close() })
		logger.Info("rate limiter backed by redis", "addr", cfg.RedisAddr)
	}

	var producer eventoutbox.Producer = kafka.LogProducer{Logger: logger}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := kafka.NewProducer(cfg.KafkaBrokers, "rentdom")
		if err != nil {
			return app, fmt.Errorf("kafka: %w", err)
		}
		producer = kp
		app.closers = append(app.closers, func(context.Context) error { return kp.Close() })
		logger.Info("events published to kafka", "brokers", cfg.KafkaBrokers)
	}
	publisher := eventoutbox.Publisher{
		Producer:    producer,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Source:      cfg.EventSource,
	}

	var (
		idStore     middleware.IdempotencyStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL, now)
		outboxStore appoutbox.Outbox            = memory.NewOutbox(publisher)
	)
	if cfg.MongoURI != "" {
		client, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return app, fmt.Errorf("mongo: %w", err)
		}
		mongoIDs := mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		if err := mongoIDs.EnsureIndexes(ctx); err != nil {
			logger.Warn("idempotency indexes not created", "error", err)
		}
		store := eventoutbox.NewStore(client.DB)
		if err := store.EnsureIndexes(ctx); err != nil {
			logger.Warn("outbox indexes not created", "error", err)
		}
		idStore, outboxStore = mongoIDs, store
		app.worker = &eventoutbox.Worker{
			Queue:     store,
			Publisher: publisher,
			Interval:  2 * time.Second,
			ID:        "rentdom-" + uuid.NewString()[:8],
			Logger:    logger,
		}
		checks["mongo"] = client.Ping
		app.closers = append(app.closers, client.Close)
		logger.Info("idempotency and outbox backed by mongo", "db", cfg.MongoDB)
	}

	relays := map[inquiry.Kind]policies.Relay{
		inquiry.KindContact: relay.Observed{Name: "emailjs", Metrics: app.metrics, Relay: &relay.EmailJS{
			Endpoint:   cfg.EmailJSEndpoint,
			ServiceID:  cfg.Site.EmailJSServiceID,
			TemplateID: cfg.Site.EmailJSContactTemplate,
			PublicKey:  cfg.Site.EmailJSPublicKey,
			Location:   loc,
			Timeout:    cfg.RelayTimeout,
		}},
		inquiry.KindBooking: relay.Observed{Name: "formsubmit", Metrics: app.metrics, Relay: &relay.FormSubmit{
			BaseURL:  cfg.FormSubmitBase,
			Email:    cfg.Site.FormEmail,
			Location: loc,
			Timeout:  cfg.RelayTimeout,
		}},
	}

	encoder := appoutbox.JSONEventEncoder{}
	announceCatalog(ctx, outboxStore, encoder, listings.CatalogLoadedEvent(cfg.CatalogSource, props, now()), logger)
	validator := inquiry.NewValidator(nil)

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, listingapp.SearchKey, &listingapp.SearchHandler{Catalog: catalog, Logger: logger})
	queries.RegisterHandler(queryBus, listingapp.GetKey, &listingapp.GetHandler{Catalog: catalog, Resolver: resolver, Now: now})
	queries.RegisterHandler(queryBus, availabilityapp.GetSnapshotKey, &availabilityapp.GetSnapshotHandler{Source: cache})
	queries.RegisterHandler(queryBus, availabilityapp.GetUnavailableDatesKey, &availabilityapp.GetUnavailableDatesHandler{Catalog: catalog, Resolver: resolver})
	queries.RegisterHandler(queryBus, availabilityapp.PickerTransitionKey, &availabilityapp.PickerTransitionHandler{Catalog: catalog, Resolver: resolver, Logger: logger})
	queries.RegisterHandler(queryBus, inquiryapp.RemainingKey, &inquiryapp.RemainingHandler{Limiter: limiter, Now: now})

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, availabilityapp.RefreshKey, &availabilityapp.RefreshHandler{
		Source:  cache,
		Outbox:  outboxStore,
		Encoder: encoder,
		Now:     now,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, inquiryapp.SubmitKey, &inquiryapp.SubmitHandler{
		Validator: validator,
		Limiter:   limiter,
		Catalog:   catalog,
		Relays:    relays,
		Outbox:    outboxStore,
		Encoder:   encoder,
		Now:       now,
		Logger:    logger,
		Metrics:   app.metrics,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.CommandLogging(logger),
		middleware.Validation(inquiryapp.FormValidator{Validator: validator}),
		middleware.Idempotency(idStore, middleware.WithIdempotencyClock(now)),
		middleware.OutboxFlush(outboxStore, func(ctx context.Context, cmd commands.Command, err error) {
			logger.WarnContext(ctx, "outbox flush failed", "command", cmd.Key(), "error", err)
		}),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus, middleware.QueryLogging(logger))

	app.health = obs.HealthHandlers{Checks: checks, Timeout: 2 * time.Second}
	app.handlers = ginserver.Handlers{
		Property:     ginserver.PropertyHandler{Queries: queryBusWithMiddleware},
		Availability: ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware, Commands: commandBusWithMiddleware},
		Export:       ginserver.ExportHandler{Queries: queryBusWithMiddleware, Now: now},
		Inquiry:      ginserver.InquiryHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
		Site:         ginserver.SiteHandler{Site: cfg.Site},
		Metrics:      app.metrics.Handler(),
	}
	return app, nil
}

func announceCatalog(ctx context.Context, box appoutbox.Outbox, encoder appoutbox.EventEncoder, ev listings.CatalogLoaded, logger *slog.Logger) {
	if err := appoutbox.RecordDomainEvents(ctx, box, encoder, []events.DomainEvent{ev}); err != nil {
		logger.Warn("catalog event not recorded", "error", err)
		return
	}
	if err := box.Flush(ctx); err != nil {
		logger.Warn("catalog event not published", "error", err)
	}
}

// loadCatalog reads the property document from disk or from the configured bucket.
func loadCatalog(ctx context.Context, cfg config.Config, logger *slog.Logger, checks map[string]obs.Check) ([]listings.Property, error) {
	if cfg.CatalogSource == "s3" {
		src, err := s3store.NewCatalogSource(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3CatalogKey, logger)
		if err != nil {
			return nil, err
		}
		checks["s3"] = src.Ping
		return src.Load(ctx)
	}

	f, err := os.Open(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.CatalogPath, err)
	}
	defer f.Close()
	return listings.DecodeDocument(f)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
