package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"EstateHub/config"
	"EstateHub/handlers"
	"EstateHub/logging"
	"EstateHub/middleware"
	"EstateHub/models"
	"EstateHub/repository"
	"EstateHub/routes"
	"EstateHub/services"
	"EstateHub/storage"
	"EstateHub/utils"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func newLogger(cfg *config.Config) (logging.Logger, *fluent.Fluent) {
	stdout := logging.NewSlogAdapter(logging.SlogConfig{
		Level:    logging.ParseLevel(cfg.Log.Level),
		JSON:     cfg.Log.JSON,
		UseColor: !cfg.Log.JSON,
	})
	if !cfg.FluentBit.Enabled {
		return stdout, nil
	}

	client, err := logging.NewFluentClient(logging.FluentConfig{
		Host:      cfg.FluentBit.Host,
		Port:      cfg.FluentBit.Port,
		TagPrefix: cfg.AppName,
	})
	if err != nil {
		stdout.Error("fluent bit disabled", err, nil)
		return stdout, nil
	}
	fluentLogger, err := logging.NewFluentAdapter(client, logging.ParseLevel(cfg.FluentBit.Level))
	if err != nil {
		stdout.Error("fluent bit disabled", err, nil)
		_ = client.Close()
		return stdout, nil
	}
	return logging.NewMulti(stdout, fluentLogger), client
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, fluentClient := newLogger(cfg)
	logger = logger.WithFields(logging.Fields{"service": cfg.AppName, "env": cfg.Env})
	ctx := context.Background()

	store, err := repository.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Error("failed to connect to MongoDB", err, nil)
		os.Exit(1)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Error("failed to create indexes", err, nil)
		os.Exit(1)
	}
	logger.Info("connected to MongoDB", logging.Fields{"database": cfg.Mongo.Database})

	redisClient := utils.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password)
	var cache *utils.Cache
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, listing cache and password reset disabled", logging.Fields{"addr": cfg.Redis.Addr, "error": err.Error()})
	} else {
		cache = utils.NewCache(redisClient, cfg.Redis.CacheTTL)
		logger.Info("connected to Redis", logging.Fields{"addr": cfg.Redis.Addr})
	}

	var media storage.MediaStore
	if cld, err := storage.NewCloudinary(cfg.Cloudinary); err != nil {
		logger.Warn("media uploads disabled", logging.Fields{"error": err.Error()})
	} else {
		media = cld
	}

	signer, err := utils.NewTokenSigner(cfg.JWT.Secret, cfg.JWT.Expiry)
	if err != nil {
		logger.Error("failed to create token signer", err, nil)
		os.Exit(1)
	}

	listings := make(map[models.Kind]repository.ListingStore, len(store.Listings))
	for kind, repo := range store.Listings {
		listings[kind] = repo
	}

	listingRemover := services.NewListingRemover(listings, store.Favorites, store.Users)
	userRemover := services.NewUserRemover(store.Users, store.Favorites)
	admin := handlers.NewAdminController(listings, store.Users, store.Payments, userRemover, signer, cfg.JWT.CookieSecure)
	paymentService := services.NewPaymentService(listings, store.Payments, store.Users, admin.InvalidateDashboard)

	deps := handlers.ListingDeps{
		Favorites: store.Favorites,
		Users:     store.Users,
		Remover:   listingRemover,
		Cache:     cache,
		Media:     media,
		OnChange:  admin.InvalidateDashboard,
	}
	var listingControllers []*handlers.ListingController
	for _, kind := range models.Kinds {
		listingControllers = append(listingControllers, handlers.NewListingController(listings[kind], deps))
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewRequestValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))
	e.Use(echomw.BodyLimit("50M"))

	routes.RegisterRoutes(e, routes.Controllers{
		Auth: handlers.NewAuthController(store.Users, signer, cache, services.NewMailer(cfg.SMTP), handlers.AuthConfig{
			CookieSecure:  cfg.JWT.CookieSecure,
			PublicBaseURL: cfg.PublicBaseURL,
			ResetTokenTTL: cfg.ResetTokenTTL,
			OnRegister:    admin.InvalidateDashboard,
		}),
		Admin:         admin,
		Listings:      listingControllers,
		Payments:      handlers.NewPaymentController(paymentService),
		Announcements: handlers.NewContentController[models.Announcement, *models.Announcement]("Announcement", store.Announcements),
		Teams:         handlers.NewContentController[models.TeamMember, *models.TeamMember]("Team member", store.Teams),
		Inspections:   handlers.NewContentController[models.Inspection, *models.Inspection]("Inspection", store.Inspections),
		Authenticator: middleware.NewAuthenticator(signer, store.Users),
		Media:         media,
		Ping:          store.Ping,
	})

	if cfg.AdminDashboardDir != "" {
		e.Group("/admin").Use(echomw.StaticWithConfig(echomw.StaticConfig{
			Root:  cfg.AdminDashboardDir,
			Index: "index.html",
			HTML5: true,
		}))
		logger.Info("serving admin dashboard", logging.Fields{"dir": cfg.AdminDashboardDir})
	}

	go func() {
		logger.Info("server starting", logging.Fields{"port": cfg.Port})
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", err, nil)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", err, nil)
	}
	if err := redisClient.Close(); err != nil {
		logger.Warn("redis close failed", logging.Fields{"error": err.Error()})
	}
	if err := store.Disconnect(shutdownCtx); err != nil {
		logger.Warn("mongo disconnect failed", logging.Fields{"error": err.Error()})
	}
	if fluentClient != nil {
		_ = fluentClient.Close()
	}
}
