package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/simasosial/simasosial-backend/api/controllers"
	webhookcontrollers "github.com/simasosial/simasosial-backend/api/controllers/webhooks"
	"github.com/simasosial/simasosial-backend/api/middleware"
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
	"github.com/simasosial/simasosial-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	metricsRegistry *prometheus.Registry,
	activitiesService *activities.Service,
	donationsService *donations.Service,
	notificationsService notifications.Service,
	certificatesService *certificates.Service,
	reportsService *reports.Service,
	usersService *users.Service,
	midtransClient *midtrans.Client,
	webhookService *midtranswebhook.Service,
	webhookMetrics *metrics.WebhookMetrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/v1/certificates/{code}", controllers.VerifyCertificate(certificatesService, logg))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/midtrans", webhookcontrollers.MidtransWebhook(webhookService, midtransClient, webhookMetrics, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/v1/activities", func(r chi.Router) {
			r.Get("/", controllers.ListActivities(activitiesService, logg))
			r.Get("/{activityId}", controllers.GetActivity(activitiesService, logg))
			r.Post("/{activityId}/register", controllers.RegisterForActivity(activitiesService, logg))
		})
		r.Get("/v1/registrations/me", controllers.ListMyRegistrations(activitiesService, logg))

		r.Route("/v1/donations", func(r chi.Router) {
			r.Post("/", controllers.CreateDonation(donationsService, logg))
			r.Get("/", controllers.ListMyDonations(donationsService, logg))
			r.Get("/{orderId}", controllers.GetDonation(donationsService, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})

		r.Get("/v1/certificates/me", controllers.ListMyCertificates(certificatesService, logg))
		r.Get("/v1/reports/me", controllers.MyContribution(reportsService, logg))

		r.Route("/v1/profile", func(r chi.Router) {
			r.Get("/", controllers.GetMyProfile(usersService, logg))
			r.Patch("/", controllers.UpdateMyProfile(usersService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/v1/activities", func(r chi.Router) {
			r.Post("/", controllers.CreateActivity(activitiesService, logg))
			r.Patch("/{activityId}", controllers.UpdateActivity(activitiesService, logg))
			r.Delete("/{activityId}", controllers.DeleteActivity(activitiesService, logg))
			r.Get("/{activityId}/registrations", controllers.ListActivityRegistrations(activitiesService, logg))
			r.Post("/{activityId}/registrations/{registrationId}/attendance", controllers.MarkAttendance(activitiesService, logg))
			r.Post("/{activityId}/certificates", controllers.IssueActivityCertificates(certificatesService, logg))
		})

		r.Post("/v1/certificates", controllers.IssueCertificate(certificatesService, logg))

		r.Route("/v1/users", func(r chi.Router) {
			r.Get("/", controllers.ListUsers(usersService, logg))
			r.Put("/{userId}/role", controllers.UpdateUserRole(usersService, logg))
			r.Delete("/{userId}", controllers.DeleteUser(usersService, logg))
		})

		r.Route("/v1/reports", func(r chi.Router) {
			r.Get("/activities/{activityId}", controllers.ActivityReport(reportsService, logg))
			r.Get("/donations", controllers.DonationReport(reportsService, logg))
			r.Get("/volunteers", controllers.VolunteerReport(reportsService, logg))
			r.Get("/platform", controllers.PlatformReport(reportsService, logg))
		})
	})

	return r
}
