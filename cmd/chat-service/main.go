package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/davant/chat-service/internal/cache"
	"github.com/davant/chat-service/internal/config"
	"github.com/davant/chat-service/internal/events"
	"github.com/davant/chat-service/internal/handlers"
	"github.com/davant/chat-service/internal/kafka"
	"github.com/davant/chat-service/internal/logger"
	"github.com/davant/chat-service/internal/middleware"
	"github.com/davant/chat-service/internal/repository"
	"github.com/davant/chat-service/internal/roster"
	"github.com/davant/chat-service/internal/routes"
	"github.com/davant/chat-service/internal/service"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	logg, err := logger.New(logger.Config{Development: cfg.Development})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logg.Sync()

	mc, err := repository.NewMongoClient(cfg)
	if err != nil {
		logg.Fatalw("mongo init", "error", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	db := mc.Database(cfg.Mongo.Database)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, roster.Topics(), cfg.Kafka.GroupID, logg)
	defer consumer.Close()

	userRepo := repository.NewUserRepository(db.Collection("users"))
	convRepo := repository.NewConversationRepository(db.Collection("conversations"))
	msgRepo := repository.NewMessageRepository(db.Collection("messages"))

	rosterSvc := roster.NewService(userRepo, logg)
	convCache := cache.NewConversations(rdb, cfg.CacheTTL)
	convSvc := service.NewConversationService(convRepo, rosterSvc, convCache, logg)
	msgSvc := service.NewMessageService(msgRepo, convSvc, rosterSvc, logg)
	publisher := events.NewPublisher(producer, logg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// roster reconciliation: full sync on boot and daily, incremental
	// upserts and deletes from the user event topics in between
	syncJob := roster.NewJob(roster.NewClient(cfg.UserAPI), rosterSvc, cfg.UserAPI.PageSize, cfg.SyncInterval, logg)
	syncJob.Start(ctx)
	go consumer.Run(ctx, roster.NewConsumer(rosterSvc, logg).Handle)

	h := handlers.NewConversationHandler(convSvc, msgSvc, rosterSvc, publisher, logg)
	app := routes.New(logg)
	routes.Register(app, h, middleware.Auth(cfg.JWT.Secret))

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logg.Fatalw("server listen", "error", err)
		}
	}()
	logg.Infow("chat-service started", "port", cfg.Server.Port)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(shutdownCtx)
	logg.Info("chat-service stopped")
}
