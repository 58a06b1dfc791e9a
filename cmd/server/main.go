package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	addressapp "github.com/destocard/backend/internal/application/address"
	billingapp "github.com/destocard/backend/internal/application/billing"
	cartapp "github.com/destocard/backend/internal/application/cart"
	catalogapp "github.com/destocard/backend/internal/application/catalog"
	identityapp "github.com/destocard/backend/internal/application/identity"
	marketplaceapp "github.com/destocard/backend/internal/application/marketplace"
	mediaapp "github.com/destocard/backend/internal/application/media"
	messagingapp "github.com/destocard/backend/internal/application/messaging"
	orderapp "github.com/destocard/backend/internal/application/order"
	"github.com/destocard/backend/internal/domain/media"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/auth"
	"github.com/destocard/backend/internal/infrastructure/billing"
	"github.com/destocard/backend/internal/infrastructure/cache"
	"github.com/destocard/backend/internal/infrastructure/config"
	"github.com/destocard/backend/internal/infrastructure/event"
	"github.com/destocard/backend/internal/infrastructure/imaging"
	"github.com/destocard/backend/internal/infrastructure/logger"
	"github.com/destocard/backend/internal/infrastructure/persistence"
	"github.com/destocard/backend/internal/infrastructure/printing"
	"github.com/destocard/backend/internal/infrastructure/scheduler"
	"github.com/destocard/backend/internal/infrastructure/storage"
	"github.com/destocard/backend/internal/infrastructure/tcgdex"
	"github.com/destocard/backend/internal/infrastructure/telemetry"
	"github.com/destocard/backend/internal/interfaces/http/handler"
	"github.com/destocard/backend/internal/interfaces/http/middleware"
	"github.com/destocard/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//	@title			Destocard API
//	@version		1.0
//	@description	Pokémon card marketplace: listings, cart, Stripe checkout, orders and messaging.

//	@host		localhost:8080
//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// extraRoutes is filled by build-tagged files such as swagger.go
var extraRoutes []func(engine *gin.Engine, cfg *config.Config)

// uploadHeadroom covers the multipart envelope around an uploaded file
const uploadHeadroom = 1 << 20

func main() {
	// A missing .env is fine outside development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry: traces, logs and metric push, then continuous profiling
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	if logProvider.IsEnabled() {
		serviceName := cfg.Telemetry.ServiceName
		if serviceName == "" {
			serviceName = cfg.App.Name
		}
		log, err = logger.New(logCfg, logProvider.Core(serviceName, zapcore.InfoLevel))
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metric export", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Profiling, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting Destocard",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.SlowThreshold); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	stores, err := cache.NewStoreFactory(cfg.Redis, cfg.Cart.TTL,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).Create()
	if err != nil {
		log.Fatal("Failed to initialize session stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing session stores", zap.Error(err))
		}
	}()

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if stores.Redis != nil {
		blacklist = auth.NewRedisTokenBlacklist(stores.Redis)
	}

	objectStorage, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize media storage", zap.Error(err))
	}

	stripeAdapter, err := billing.NewStripeAdapter(billing.NewStripeConfig(cfg.Stripe), log, nil)
	if err != nil {
		log.Fatal("Failed to initialize Stripe", zap.Error(err))
	}

	invoiceTemplate, err := printing.NewInvoiceTemplate()
	if err != nil {
		log.Fatal("Failed to parse invoice template", zap.Error(err))
	}
	pdfRenderer := printing.NewChromedpRenderer(cfg.Printing, log)
	defer func() {
		_ = pdfRenderer.Close()
	}()

	metrics := telemetry.NewMetrics()
	if meterProvider.IsEnabled() {
		if err := metrics.MirrorTo(meterProvider.Meter("destocard")); err != nil {
			log.Fatal("Failed to create OTLP instruments", zap.Error(err))
		}
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	serieRepo := persistence.NewGormSerieRepository(db.DB)
	extensionRepo := persistence.NewGormExtensionRepository(db.DB)
	cardRepo := persistence.NewGormPokemonCardRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	mediaRepo := persistence.NewGormMediaRepository(db.DB)
	messageRepo := persistence.NewGormMessageRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	eventBus := event.NewInMemoryEventBus(log)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, blacklist, cfg.JWT.RefreshTokenExpiration, log)

	catalogService := catalogapp.NewCatalogService(catalogapp.CatalogServiceConfig{
		SerieRepo:     serieRepo,
		ExtensionRepo: extensionRepo,
		CardRepo:      cardRepo,
		ProductRepo:   productRepo,
		Source:        tcgdex.NewClient(cfg.TCGdex),
		Logger:        log,
	})

	uploadService := mediaapp.NewUploadService(mediaapp.UploadServiceConfig{
		MediaRepo:   mediaRepo,
		ProductRepo: productRepo,
		Storage:     objectStorage,
		Limits: media.Limits{
			MaxImageSize: cfg.Media.MaxImageSize,
			MaxVideoSize: cfg.Media.MaxVideoSize,
		},
		Resize: imaging.Options{
			MaxWidth:  cfg.Media.MaxWidth,
			Quality:   cfg.Media.ResizeQuality,
			MaxPixels: cfg.Media.MaxPixels,
		},
		Metrics: metrics,
		Logger:  log,
	})
	productService := marketplaceapp.NewProductService(productRepo, cardRepo, userRepo, uploadService, log)
	addressService := addressapp.NewAddressService(addressRepo, txScope, log)
	messageService := messagingapp.NewMessageService(messageRepo, userRepo, log)

	cartService := cartapp.NewService(cartapp.ServiceConfig{
		Store:       stores.Cart,
		ProductRepo: productRepo,
		UserRepo:    userRepo,
		AddressRepo: addressRepo,
		TxScope:     txScope,
		Gateway:     stripeAdapter,
		Events:      eventBus,
		Metrics:     metrics,
		Currency:    cfg.Stripe.Currency,
		Logger:      log,
	})

	invoiceService := orderapp.NewInvoiceService(userRepo, addressRepo, invoiceTemplate, pdfRenderer, log)
	orderService := orderapp.NewService(orderapp.ServiceConfig{
		OrderRepo: orderRepo,
		TxScope:   txScope,
		Carts:     stores.Cart,
		Gateway:   stripeAdapter,
		Events:    eventBus,
		Invoices:  invoiceService,
		Metrics:   metrics,
		Logger:    log,
	})

	billingService := billingapp.NewBillingService(userRepo, stripeAdapter, cfg.Stripe.ProPriceID, log)
	webhookService := billingapp.NewStripeWebhookService(billingapp.WebhookServiceConfig{
		Gateway:       stripeAdapter,
		Payments:      orderService,
		Subscriptions: billingService,
		Idempotency:   stores.Idempotency,
		IdemConfig:    shared.DefaultIdempotencyConfig(),
		Metrics:       metrics,
		Logger:        log,
	})

	// Sellers hear about each sale once, even if the settlement event is
	// published again by a replayed webhook
	eventBus.Subscribe(event.NewIdempotentHandler(
		orderapp.NewSaleNotificationHandler(messageService, log),
		stores.Idempotency,
		shared.DefaultIdempotencyConfig(),
		log,
	))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	jobs := scheduler.New(log)
	if err := jobs.Register(scheduler.OrderExpiryJobName, cfg.Order.ExpirationCron,
		scheduler.NewOrderExpiryJob(orderService, cfg.Order.PendingExpiration, log)); err != nil {
		log.Fatal("Failed to register order expiry job", zap.Error(err))
	}
	jobs.Start(ctx)

	stop := make(chan struct{})
	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, 10*time.Minute)
		go rateLimiter.Run(time.Minute, stop)
	}
	if memCarts, ok := stores.Cart.(*cache.InMemoryCartStore); ok {
		go memCarts.Run(10*time.Minute, stop)
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowCredentials = true

	cartSession := middleware.DefaultCartSessionConfig()
	cartSession.Secure = cfg.App.IsProduction()

	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = cfg.Telemetry.Enabled
	if cfg.Telemetry.ServiceName != "" {
		tracing.ServiceName = cfg.Telemetry.ServiceName
	}

	var uploadDir string
	if cfg.Storage.Driver == "local" {
		uploadDir = cfg.Storage.UploadDir
	}

	engine := router.NewEngine(router.Config{
		Logger:        log,
		Authenticator: authService,
		Metrics:       metrics,
		Tracing:       tracing,
		Profiling:     cfg.Profiling.Enabled,
		CORS:          cors,
		Security:      middleware.DefaultSecurityConfig(),
		BodyLimit: middleware.BodyLimitConfig{
			MaxBytes: cfg.HTTP.BodyLimit,
			RouteLimits: map[string]int64{
				router.MediaUploadRoute: cfg.Media.MaxVideoSize + uploadHeadroom,
				// base64 inflates the picture by a third
				router.WebcamRoute: cfg.Media.MaxImageSize*4/3 + uploadHeadroom,
			},
		},
		RateLimiter: rateLimiter,
		CartSession: cartSession,
		UploadDir:   uploadDir,
	}, router.Handlers{
		System: handler.NewSystemHandler(version, map[string]handler.HealthCheck{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"cache": func(ctx context.Context) error {
				if stores.Redis == nil {
					return nil
				}
				return stores.Redis.Ping(ctx).Err()
			},
		}),
		Auth:    handler.NewAuthHandler(authService, cartService),
		User:    handler.NewUserHandler(userService, productService),
		Product: handler.NewProductHandler(productService, uploadService),
		Media:   handler.NewMediaHandler(uploadService),
		Catalog: handler.NewCatalogHandler(catalogService),
		Cart:    handler.NewCartHandler(cartService),
		Order:   handler.NewOrderHandler(orderService),
		Address: handler.NewAddressHandler(addressService),
		Message: handler.NewMessageHandler(messageService),
		Billing: handler.NewBillingHandler(billingService, webhookService),
	})

	for _, register := range extraRoutes {
		register(engine, cfg)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	close(stop)
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Warn("Scheduler did not stop cleanly", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler did not stop cleanly", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush log export", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
