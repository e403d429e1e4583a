package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/simasosial/simasosial-backend/api/routes"
	"github.com/simasosial/simasosial-backend/internal/activities"
	"github.com/simasosial/simasosial-backend/internal/certificates"
	"github.com/simasosial/simasosial-backend/internal/donations"
	"github.com/simasosial/simasosial-backend/internal/notifications"
	"github.com/simasosial/simasosial-backend/internal/reports"
	"github.com/simasosial/simasosial-backend/internal/users"
	midtranswebhook "github.com/simasosial/simasosial-backend/internal/webhooks/midtrans"
	"github.com/simasosial/simasosial-backend/pkg/config"
	"github.com/simasosial/simasosial-backend/pkg/db"
	"github.com/simasosial/simasosial-backend/pkg/logger"
	"github.com/simasosial/simasosial-backend/pkg/metrics"
	"github.com/simasosial/simasosial-backend/pkg/midtrans"
	"github.com/simasosial/simasosial-backend/pkg/migrate"
	"github.com/simasosial/simasosial-backend/pkg/outbox"
	"github.com/simasosial/simasosial-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

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

	midtransClient, err := midtrans.New(cfg.Midtrans)
	if err != nil {
		logg.Error(context.Background(), "failed to create midtrans client", err)
		os.Exit(1)
	}

	metricsRegistry := prometheus.NewRegistry()
	webhookMetrics := metrics.NewWebhookMetrics(metricsRegistry)

	userRepo := users.NewRepository(dbClient.DB())
	activityRepo := activities.NewRepository(dbClient.DB())
	registrationRepo := activities.NewRegistrationRepository(dbClient.DB())
	donationRepo := donations.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())
	certificateRepo := certificates.NewRepository(dbClient.DB())
	reportsRepo := reports.NewRepository(dbClient.DB())

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	webhookService, err := midtranswebhook.NewService(midtranswebhook.ServiceParams{
		DonationRepo:     donationRepo,
		ActivityRepo:     activityRepo,
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		Outbox:           outboxService,
		DB:               dbClient.DB(),
		Logger:           logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	activitiesService, err := activities.NewService(activities.ServiceParams{
		Repo:             activityRepo,
		RegistrationRepo: registrationRepo,
		NotificationRepo: notificationRepo,
		TxRunner:         dbClient,
		Logger:           logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create activities service", err)
		os.Exit(1)
	}

	donationsService, err := donations.NewService(donations.ServiceParams{
		Repo:         donationRepo,
		ActivityRepo: activityRepo,
		Snap:         midtransClient,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create donations service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	certificatesService, err := certificates.NewService(certificates.ServiceParams{
		Repo:             certificateRepo,
		RegistrationRepo: registrationRepo,
		ActivityRepo:     activityRepo,
		UserRepo:         userRepo,
		NotificationRepo: notificationRepo,
		Outbox:           outboxService,
		DB:               dbClient.DB(),
		Logger:           logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create certificates service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	reportsService, err := reports.NewService(reports.ServiceParams{
		Repo:         reportsRepo,
		ActivityRepo: activityRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			metricsRegistry,
			activitiesService,
			donationsService,
			notificationsService,
			certificatesService,
			reportsService,
			usersService,
			midtransClient,
			webhookService,
			webhookMetrics,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
