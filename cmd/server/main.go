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

	"github.com/Brownie44l1/propvest/internal/auth"
	"github.com/Brownie44l1/propvest/internal/backend"
	"github.com/Brownie44l1/propvest/internal/config"
	"github.com/Brownie44l1/propvest/internal/cooldown"
	"github.com/Brownie44l1/propvest/internal/db"
	"github.com/Brownie44l1/propvest/internal/gateway"
	"github.com/Brownie44l1/propvest/internal/handlers"
	"github.com/Brownie44l1/propvest/internal/logger"
	"github.com/Brownie44l1/propvest/internal/metrics"
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/Brownie44l1/propvest/internal/reconcile"
	"github.com/Brownie44l1/propvest/internal/repository"
	"github.com/Brownie44l1/propvest/internal/service"
	"github.com/Brownie44l1/propvest/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer func() { _ = zl.Sync() }()
	zl.Info("configuration loaded", zap.String("env", cfg.AppEnv), zap.String("backend", cfg.BackendURL))

	ctx := context.Background()
	checks := map[string]handlers.Check{}

	// 2. Funding session storage: Postgres when configured, memory otherwise
	var fundingRepo service.FundingRepository
	if cfg.DBUrl != "" {
		pool, err := db.NewPool(ctx, cfg.DBUrl, zl)
		if err != nil {
			zl.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			zl.Fatal("failed to migrate database", zap.Error(err))
		}
		fundingRepo = repository.NewFundingRepository(pool)
		checks["database"] = pool.Ping
	} else {
		zl.Warn("DB_URL not set, funding sessions are kept in memory")
		fundingRepo = repository.NewMemoryFundingRepository()
	}

	// 3. Resend cooldowns: Redis when configured, memory otherwise
	var limiter cooldown.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Fatal("failed to connect to redis", zap.Error(err))
		}
		limiter = cooldown.NewRedis(rdb, cfg.ResendCooldown)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		limiter = cooldown.NewMemory(cfg.ResendCooldown)
	}

	// 4. Backend client and services
	client := backend.New(cfg.BackendURL,
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithLogger(zl),
		backend.WithServiceToken(cfg.BackendServiceToken),
	)

	policy := service.DefaultPolicy()
	policy.MinFunding = decimal.NewFromInt(cfg.MinFundingAmount)

	walletService := service.NewWalletService(client, zl, cfg.PageSize)
	fundingService := service.NewFundingService(fundingRepo, gateway.NewHosted(client), client, walletService, zl, service.FundingConfig{
		PublicKey:   cfg.GatewayPublicKey,
		CallbackURL: cfg.GatewayCallbackURL,
		Policy:      policy,
	})
	withdrawalService := service.NewWithdrawalService(client, walletService, zl, policy)
	verificationService := service.NewVerificationService(client, limiter, zl)

	reconciler, err := reconcile.New(fundingService, zl, reconcile.Options{Schedule: cfg.ReconcileSchedule})
	if err != nil {
		zl.Fatal("failed to schedule reconciler", zap.Error(err))
	}
	reconciler.Start()

	// 5. Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), metrics.Middleware())

	handlers.NewHealthHandler(version, checks).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1", auth.Middleware(cfg.JWTSecret))
	handlers.NewWalletHandler(walletService, fundingService, withdrawalService, verificationService, zl).RegisterRoutes(v1)
	registerListings(v1, client, zl)

	// 6. Start server with graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reconciler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	zl.Info("server exited")
}

// registerListings mounts every listing domain under v1.
func registerListings(v1 *gin.RouterGroup, client *backend.Client, zl *zap.Logger) {
	marketplace := store.Marketplace()
	handlers.NewResourceHandler(
		store.NewPool[models.Listing](backend.NewResource[models.Listing](client, marketplace.Path), marketplace, zl), zl,
	).RegisterReadRoutes(v1.Group("/marketplace"))

	properties := store.Properties()
	handlers.NewResourceHandler(
		store.NewPool[models.Property](backend.NewResource[models.Property](client, properties.Path), properties, zl), zl,
	).RegisterRoutes(v1.Group("/properties"), "feature", "trend", "status", "approve", "reject")

	investments := store.Investments()
	handlers.NewResourceHandler(
		store.NewPool[models.Investment](backend.NewResource[models.Investment](client, investments.Path), investments, zl), zl,
	).RegisterReadRoutes(v1.Group("/investments"))

	documents := store.Documents()
	docs := handlers.NewResourceHandler(
		store.NewPool[models.Document](backend.NewResource[models.Document](client, documents.Path), documents, zl), zl,
	)
	docGroup := v1.Group("/documents")
	docs.RegisterRoutes(docGroup)
	docGroup.POST("/:id/upload", docs.Upload)

	notifications := store.Notifications()
	handlers.NewResourceHandler(
		store.NewPool[models.Notification](backend.NewResource[models.Notification](client, notifications.Path), notifications, zl), zl,
	).RegisterRoutes(v1.Group("/notifications"), "mark-read")

	referrals := store.Referrals()
	handlers.NewResourceHandler(
		store.NewPool[models.Referral](backend.NewResource[models.Referral](client, referrals.Path), referrals, zl), zl,
	).RegisterReadRoutes(v1.Group("/referrals"))
}
