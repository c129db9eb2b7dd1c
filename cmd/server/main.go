package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	appcatalog "github.com/agencyhub/backend/internal/application/catalog"
	appclient "github.com/agencyhub/backend/internal/application/client"
	appcurrency "github.com/agencyhub/backend/internal/application/currency"
	appidentity "github.com/agencyhub/backend/internal/application/identity"
	appinvoice "github.com/agencyhub/backend/internal/application/invoice"
	appreport "github.com/agencyhub/backend/internal/application/report"
	"github.com/agencyhub/backend/internal/infrastructure/auth"
	"github.com/agencyhub/backend/internal/infrastructure/cache"
	"github.com/agencyhub/backend/internal/infrastructure/config"
	"github.com/agencyhub/backend/internal/infrastructure/exchangerate"
	"github.com/agencyhub/backend/internal/infrastructure/logger"
	"github.com/agencyhub/backend/internal/infrastructure/persistence"
	"github.com/agencyhub/backend/internal/infrastructure/telemetry"
	"github.com/agencyhub/backend/internal/interfaces/http/handler"
	"github.com/agencyhub/backend/internal/interfaces/http/middleware"
	"github.com/agencyhub/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/agencyhub/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Agency Dashboard API
//	@version		1.0
//	@description	Clients, services, invoices and dashboard rollups for a services agency.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}". The session cookie is accepted as well.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry first so every later component reports through it
	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))
	// Persistence models report decode problems through the global logger
	defer zap.ReplaceGlobals(log)()

	profiler, err := telemetry.StartProfiler(cfg.Profiling, serviceName, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.Enabled() && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting agency dashboard",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), 200*time.Millisecond)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentDB(db.DB, cfg.Telemetry, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	checks := []handler.DependencyCheck{{Name: "database", Check: db.PingContext}}

	// Redis backs session revocation and the shared rate snapshot
	var (
		redisClient *redis.Client
		blacklist   auth.TokenBlacklist
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		checks = append(checks, handler.DependencyCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis disabled, session revocation is local to this instance")
	}

	// Exchange rates
	meter := meterProvider.Meter(serviceName)
	rateMetrics, err := telemetry.NewRateMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create rate metrics", zap.Error(err))
	}
	rateOpts := []appcurrency.Option{
		appcurrency.WithTTL(cfg.Exchange.TTL),
		appcurrency.WithFailureBackoff(cfg.Exchange.RetryBackoff),
		appcurrency.WithRecorder(rateMetrics),
	}
	if cfg.Exchange.RedisEnabled && redisClient != nil {
		rateOpts = append(rateOpts, appcurrency.WithSharedCache(cache.NewRedisRateSnapshotCache(redisClient)))
	}
	rateService := appcurrency.NewRateService(exchangerate.NewHTTPSource(cfg.Exchange), log, rateOpts...)

	// Repositories
	clientRepo := persistence.NewGormClientRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	packageRepo := persistence.NewGormPackageRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	preferenceRepo := persistence.NewGormPreferenceRepository(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := appidentity.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := appidentity.NewUserService(userRepo, blacklist, cfg.JWT.Expiration, log)
	preferenceService := appidentity.NewPreferenceService(preferenceRepo)
	clientService := appclient.NewClientService(clientRepo, log)
	packageService := appcatalog.NewPackageService(packageRepo, log)
	invoiceService := appinvoice.NewInvoiceService(invoiceRepo, clientRepo, log)
	dashboardService := appreport.NewDashboardService(clientRepo, invoiceRepo, preferenceRepo, rateService, log)

	handlers := router.Handlers{
		System:     handler.NewSystemHandler(cfg.App.Name, version, checks...),
		Auth:       handler.NewAuthHandler(authService, cfg.Cookie),
		Preference: handler.NewPreferenceHandler(preferenceService),
		Exchange:   handler.NewExchangeHandler(rateService),
		Client:     handler.NewClientHandler(clientService),
		Package:    handler.NewPackageHandler(packageService),
		Invoice:    handler.NewInvoiceHandler(invoiceService),
		User:       handler.NewUserHandler(userService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. Recovery and RequestID so every later line carries the ID
	// 2. Access log, tracing span, metrics and profiling labels
	// 3. Security headers, CORS, body limit and rate limit
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: serviceName,
		Enabled:     tracerProvider.Enabled(),
		Filter: func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/ready"
		},
	}))
	httpMetrics, err := middleware.Metrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	engine.Use(httpMetrics)
	engine.Use(middleware.Profiling(profiler.Enabled()))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(ctx, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	if cfg.Cookie.Name != "" {
		jwtConfig.CookieName = cfg.Cookie.Name
	}
	authenticate := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	apiConfig := router.APIConfig{
		Authenticate: authenticate,
		AfterAuth:    []gin.HandlerFunc{middleware.TracingAttributeInjector()},
		Permission:   middleware.PermissionConfig{Logger: log},
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		loginLimiter := middleware.NewRateLimiter(ctx, cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		apiConfig.LoginLimiter = middleware.RateLimit(loginLimiter)
	}
	router.RegisterAPI(engine, handlers, apiConfig)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, authenticate),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	shutdownTelemetry(shutdownCtx, log, tracerProvider, meterProvider, loggerProvider, profiler)

	log.Info("Server exited gracefully")
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdownTelemetry flushes exporters in reverse start order
func shutdownTelemetry(ctx context.Context, log *zap.Logger, tp, mp, lp shutdowner, profiler *telemetry.Profiler) {
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	var errs []string
	for _, p := range []shutdowner{lp, mp, tp} {
		if err := p.Shutdown(ctx); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		log.Error("Error flushing telemetry", zap.String("errors", strings.Join(errs, "; ")))
	}
}
