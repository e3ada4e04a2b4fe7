package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"propdesk-service/internal/infrastructure/cache"
	"propdesk-service/internal/infrastructure/config"
	"propdesk-service/internal/infrastructure/oauth"
	"propdesk-service/internal/infrastructure/persistence"
	"propdesk-service/internal/infrastructure/router"
	"propdesk-service/internal/interface/httpapi"
	"propdesk-service/internal/interface/repository"
	"propdesk-service/internal/interface/ws"
	"propdesk-service/internal/livequery"
	"propdesk-service/internal/usecase"
	"propdesk-service/pkg/logger"
	"propdesk-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting PropDesk Service", "version", cfg.AppVersion)

	// Cancelled on SIGINT/SIGTERM; also the base context of every request so
	// open streams end on shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewMetrics("propdesk", prometheus.DefaultRegisterer)

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	bucket, err := persistence.NewBlobBucket(db, "media")
	if err != nil {
		log.Fatal("Failed to open media bucket", "error", err)
	}

	// Set up PostgreSQL for admin profiles
	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgres(cfg.PostgresURI, cfg.LogLevel == "debug", repository.AdminModels()...)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up repositories
	propertyRepo := repository.NewMongoPropertyRepository(db)
	amenityRepo := repository.NewMongoAmenityRepository(db)
	bookingRepo := repository.NewMongoBookingRepository(db)
	unitRepo := repository.NewMongoUnitRepository(db)
	eventRepo := repository.NewMongoEventRepository(db)
	adminRepo := repository.NewGormAdminRepository(gormDB)
	blobs := repository.NewGridFSBlobStore(bucket, cfg.PublicBaseURL)

	propertyCache, err := cache.New(cfg.CacheMaxBytes)
	if err != nil {
		log.Fatal("Failed to create cache", "error", err)
	}
	defer propertyCache.Close()

	// Set up authentication
	var verifier oauth.Verifier = oauth.NewIDTokenVerifier(cfg.GoogleClientID)
	if cfg.AuthDevUID != "" {
		log.Warn("Token verification disabled, authenticating every request as dev user", "uid", cfg.AuthDevUID)
		verifier = oauth.DevVerifier{UID: cfg.AuthDevUID}
	}
	signIn := oauth.NewGoogleSignIn(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL, log)

	// Set up live feeds
	feeds := router.NewFeedRouter(log)
	for _, h := range usecase.DefaultFeedHandlers(log) {
		feeds.Register(h)
	}
	streamer := ws.NewStreamer(livequery.NewMongoSource(db, log), feeds, m, log, cfg.AllowedOrigins)

	// Set up services
	handler := httpapi.NewRouter(httpapi.Deps{
		Verifier:       verifier,
		SignIn:         signIn,
		Admins:         usecase.NewAdminService(adminRepo, propertyRepo, propertyCache, cfg.PropertyCacheTTL, log),
		Bookings:       usecase.NewBookingService(bookingRepo, amenityRepo, m, log),
		Units:          usecase.NewUnitService(unitRepo, m, log),
		Slides:         usecase.NewSlideService(propertyRepo, blobs, cfg.MaxSlides, m, log),
		Events:         usecase.NewEventService(eventRepo, blobs, m, log),
		Blobs:          blobs,
		Streams:        streamer,
		Gatherer:       prometheus.DefaultGatherer,
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("HTTP server error", "error", err)
	}

	// Disconnect from MongoDB
	disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mongoClient.Disconnect(disconnectCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("PropDesk Service stopped")
}
