package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"rakuda/internal/automation"
	"rakuda/internal/client/ebay"
	"rakuda/internal/config"
	cronrunner "rakuda/internal/cron"
	"rakuda/internal/db"
	"rakuda/internal/handler"
	"rakuda/internal/logger"
	"rakuda/internal/notify"
	"rakuda/internal/pricing"
	gormrepository "rakuda/internal/repository/gorm"
	"rakuda/internal/service"

	_ "rakuda/docs"
)

func main() {
	cfgPath := os.Getenv("RK_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("RK_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	hub := notify.NewHub(logger)

	marketplaceHTTP := &http.Client{Timeout: cfg.Marketplace.Timeout}
	metricsSource := ebay.NewClient(marketplaceHTTP, cfg.Marketplace.BaseURL, cfg.Marketplace.Token)

	syncSvc := &service.ListingSyncService{
		Repo:      store,
		Source:    metricsSource,
		Logger:    logger,
		BatchSize: cfg.ListingSync.BatchSize,
	}
	generator := &pricing.Generator{
		Repo:      store,
		Logger:    logger,
		BatchSize: cfg.ListingSync.BatchSize,
	}
	applier := &pricing.Applier{Repo: store, Logger: logger}
	safetySvc := &service.SafetyService{Repo: store, Logger: logger, Events: hub}
	executor := &automation.Executor{Repo: store, Logger: logger, Events: hub}

	if err := ensureSafetyDefaults(safetySvc); err != nil {
		logger.Warn("init safety settings failed", zap.Error(err))
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	listingHandler := &handler.ListingHandler{Repo: store}
	listingHandler.Register(engine)
	pricingHandler := &handler.PricingHandler{
		Repo:      store,
		Generator: generator,
		Applier:   applier,
		Hub:       hub,
	}
	pricingHandler.Register(engine)
	automationHandler := &handler.AutomationHandler{
		Repo:     store,
		Executor: executor,
		Safety:   safetySvc,
	}
	automationHandler.Register(engine)
	safetyHandler := &handler.SafetyHandler{Safety: safetySvc}
	safetyHandler.Register(engine)
	eventsHandler := &handler.EventsHandler{Hub: hub}
	eventsHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		if cfg.ListingSync.Enabled {
			_, err = cronRunner.Add(cfg.Cron.ListingSync, func(ctx context.Context) {
				updated, err := syncSvc.SyncAll(ctx)
				if err != nil {
					logger.Warn("cron listing sync failed", zap.Error(err))
					return
				}
				logger.Info("cron listing sync ok", zap.Int("updated", updated))
			})
			if err != nil {
				logger.Warn("cron register listing sync failed", zap.Error(err))
			}
		}
		if cfg.Pricing.Enabled {
			_, err = cronRunner.Add(cfg.Cron.RecommendationGen, func(ctx context.Context) {
				written, err := generator.GenerateAll(ctx)
				if err != nil {
					logger.Warn("cron recommendation generation failed", zap.Error(err))
					return
				}
				logger.Info("cron recommendation generation ok", zap.Int("written", written))
				hub.Publish("pricing.generated", map[string]any{"written": written})
			})
			if err != nil {
				logger.Warn("cron register recommendation generation failed", zap.Error(err))
			}
		}
		if cfg.Automation.RetentionDays > 0 {
			_, err = cronRunner.Add(cfg.Cron.ExecutionRetention, func(ctx context.Context) {
				before := time.Now().UTC().AddDate(0, 0, -cfg.Automation.RetentionDays)
				n, err := store.DeleteExecutionsBefore(ctx, before)
				if err != nil {
					logger.Warn("execution retention cleanup failed", zap.Error(err))
					return
				}
				if n > 0 {
					logger.Info("deleted old executions", zap.Int64("count", n))
				}
			})
			if err != nil {
				logger.Warn("cron register execution retention failed", zap.Error(err))
			}
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	if cfg.Automation.SchedulerEnabled {
		scheduler := &automation.Scheduler{
			Repo:     store,
			Executor: executor,
			Logger:   logger,
			Interval: cfg.Automation.SchedulerInterval,
		}
		go scheduler.Run(ctx)
	}

	if cfg.Pricing.GenerateOnBoot {
		go func() {
			written, err := generator.GenerateAll(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("boot recommendation generation failed", zap.Error(err))
				return
			}
			logger.Info("boot recommendation generation ok", zap.Int("written", written))
		}()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func ensureSafetyDefaults(svc *service.SafetyService) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := svc.Get(ctx)
	return err
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
