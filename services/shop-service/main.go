package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	awspkg "github.com/yashrajoria/stayshop/pkg/aws"
	pkgdb "github.com/yashrajoria/stayshop/pkg/database"
	"github.com/yashrajoria/stayshop/pkg/events"
	"github.com/yashrajoria/stayshop/pkg/session"
	"github.com/yashrajoria/stayshop/services/common/auth"
	apperrors "github.com/yashrajoria/stayshop/services/common/errors"
	"github.com/yashrajoria/stayshop/services/common/logger"
	"github.com/yashrajoria/stayshop/services/common/middleware"
	"github.com/yashrajoria/stayshop/services/shop-service/controllers"
	"github.com/yashrajoria/stayshop/services/shop-service/database"
	"github.com/yashrajoria/stayshop/services/shop-service/repository"
	"github.com/yashrajoria/stayshop/services/shop-service/routes"
	"github.com/yashrajoria/stayshop/services/shop-service/services"
)

const serviceName = "shop-service"

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	log, err := logger.Initialize(cfg.Env, serviceName)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	db, err := pkgdb.Open(cfg.DB, log)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	if err := database.Seed(ctx, db, log); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}

	var store session.Store
	if cfg.RedisURL != "" {
		rdb, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Redis connection failed", zap.Error(err))
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.SessionTTL)
	} else {
		log.Warn("REDIS_URL not set, using in-memory sessions")
		store = session.NewMemoryStore(10000, cfg.SessionTTL)
	}

	publisher, err := events.New(events.Options{
		Backend:  cfg.EventsBackend,
		Source:   serviceName,
		TopicArn: cfg.SNSTopicARN,
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
	}, func() (awspkg.SNSPublisher, error) {
		awsCfg, err := awspkg.LoadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		return awspkg.NewSNSClient(awsCfg), nil
	}, log)
	if err != nil {
		log.Fatal("Event publisher init failed", zap.Error(err))
	}

	metricsClient, err := awspkg.NewMetricsClient(ctx)
	if err != nil {
		log.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	shopService := services.NewShopService(
		repository.NewGormProductRepository(db),
		repository.NewGormOrderRepository(db),
		publisher, metricsClient, log,
	)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(middleware.RequestLogger(log, "/health"))
	r.Use(middleware.Metrics(metricsClient, serviceName))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(apperrors.ErrorMiddleware())
	r.Use(session.Middleware(store, session.CookieConfig{
		Name:   "sid",
		MaxAge: cfg.SessionTTL,
		Secure: cfg.SessionSecure,
	}, log))

	routes.RegisterRoutes(r,
		controllers.NewShopController(shopService),
		controllers.NewAdminController(shopService, auth.NewCredentials(cfg.AdminUsername, cfg.AdminPassword)),
		middleware.NewRateLimiter(rate.Every(6*time.Second), 5, 10*time.Minute),
	)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("Shop Service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	if err := publisher.Close(); err != nil {
		log.Error("Event publisher close error", zap.Error(err))
	}
	if err := pkgdb.Close(db); err != nil {
		log.Error("Database close error", zap.Error(err))
	}
	log.Info("Shop Service stopped gracefully")
}
