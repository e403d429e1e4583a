package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/simasosial/simasosial-backend/internal/mailer"
	"github.com/simasosial/simasosial-backend/pkg/config"
	"github.com/simasosial/simasosial-backend/pkg/logger"
	"github.com/simasosial/simasosial-backend/pkg/mail"
	"github.com/simasosial/simasosial-backend/pkg/outbox/idempotency"
	"github.com/simasosial/simasosial-backend/pkg/pubsub"
	"github.com/simasosial/simasosial-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "mailer-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "mailer-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	sender, err := mail.NewSMTPSender(cfg.SMTP)
	if err != nil {
		logg.Error(context.Background(), "failed to create smtp sender", err)
		os.Exit(1)
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.IdempotencyTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency manager", err)
		os.Exit(1)
	}

	consumer, err := mailer.NewConsumer(sender, pubsubClient.ReceiptsSubscription(), manager, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer consumer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "mailer-worker",
	})
	logg.Info(ctx, "starting mailer worker")

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "mailer worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "mailer worker shutting down gracefully")
}
