package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/stayshop/pkg/aws"
	pkgdb "github.com/yashrajoria/stayshop/pkg/database"
	"github.com/yashrajoria/stayshop/services/common/auth"
	"github.com/yashrajoria/stayshop/services/common/logger"
	"github.com/yashrajoria/stayshop/services/common/middleware"
	"github.com/yashrajoria/stayshop/services/notification-service/consumer"
	"github.com/yashrajoria/stayshop/services/notification-service/controllers"
	"github.com/yashrajoria/stayshop/services/notification-service/database"
	"github.com/yashrajoria/stayshop/services/notification-service/repository"
	"github.com/yashrajoria/stayshop/services/notification-service/routes"
	"github.com/yashrajoria/stayshop/services/notification-service/sender"
	"github.com/yashrajoria/stayshop/services/notification-service/services"
)

const serviceName = "notification-service"

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

	// Database
	db, err := pkgdb.Open(cfg.DB, log)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}

	// CloudWatch (non-fatal)
	metricsClient, err := awspkg.NewMetricsClient(context.Background())
	if err != nil {
		log.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	}

	// Senders
	var emailSender sender.EmailSender
	if cfg.SMTP.Host != "" {
		smtpSender, err := sender.NewSMTPSender(cfg.SMTP)
		if err != nil {
			log.Fatal("Failed to init SMTP sender", zap.Error(err))
		}
		emailSender = smtpSender
	} else {
		log.Warn("SMTP_HOST not set, emails are logged only")
		emailSender = sender.NewLogSender(log)
	}

	// Dependency injection
	notificationRepo := repository.NewNotificationRepository(db)
	notificationService, err := services.NewNotificationService(notificationRepo, emailSender, cfg.Backoff, log)
	if err != nil {
		log.Fatal("Failed to initialize notification service", zap.Error(err))
	}
	notificationController := controllers.NewNotificationController(notificationService)

	// Router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(middleware.RequestLogger(log, "/health"))
	r.Use(middleware.Metrics(metricsClient, serviceName))
	r.Use(middleware.SecurityHeaders())

	routes.RegisterRoutes(r, notificationController, auth.NewCredentials(cfg.AdminUsername, cfg.AdminPassword))

	// Event consumer: SNS fans out to an SQS queue, otherwise read Kafka.
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	var kafkaConsumer *consumer.KafkaConsumer
	brokers := splitList(cfg.KafkaBrokers)
	switch {
	case strings.EqualFold(cfg.EventsBackend, "sns"):
		awsCfg, err := awspkg.LoadAWSConfig(consumerCtx)
		if err != nil {
			log.Fatal("AWS config load failed", zap.Error(err))
		}
		queue, err := awspkg.NewSQSQueue(awsCfg, cfg.QueueURL)
		if err != nil {
			log.Fatal("Failed to init SQS consumer", zap.Error(err))
		}
		log.Info("consuming events from SQS", zap.String("queue", queue.URL()))
		go consumer.NewSQSConsumer(queue, notificationService, log).Start(consumerCtx)
	case len(brokers) > 0:
		kafkaConsumer = consumer.NewKafkaConsumer(consumer.NewKafkaReader(brokers, cfg.Topics, cfg.GroupID), notificationService, log)
		go kafkaConsumer.Start(consumerCtx)
	default:
		log.Warn("KAFKA_BROKERS not set, event consumer disabled")
	}

	// HTTP server
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("Notification service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	consumerCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Close(); err != nil {
			log.Error("Kafka reader close error", zap.Error(err))
		}
	}
	if err := pkgdb.Close(db); err != nil {
		log.Error("Database close error", zap.Error(err))
	}

	log.Info("Notification service stopped gracefully")
}

func splitList(csv string) []string {
	var out []string
	for _, v := range strings.Split(csv, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
