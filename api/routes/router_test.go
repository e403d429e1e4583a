package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/simasosial/simasosial-backend/internal/certificates"
	"github.com/simasosial/simasosial-backend/internal/notifications"
	"github.com/simasosial/simasosial-backend/internal/reports"
	"github.com/simasosial/simasosial-backend/internal/users"
	pkgAuth "github.com/simasosial/simasosial-backend/pkg/auth"
	"github.com/simasosial/simasosial-backend/pkg/config"
	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
	"github.com/simasosial/simasosial-backend/pkg/logger"
	"github.com/simasosial/simasosial-backend/pkg/metrics"
	"github.com/simasosial/simasosial-backend/pkg/outbox"
	"github.com/simasosial/simasosial-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type stubReportsRepo struct{}

func (stubReportsRepo) DonationSummary(ctx context.Context, activityID uuid.UUID) (*reports.DonationSummaryRow, error) {
	return &reports.DonationSummaryRow{}, nil
}

func (stubReportsRepo) AttendanceSummary(ctx context.Context, activityID uuid.UUID) (*reports.AttendanceSummaryRow, error) {
	return &reports.AttendanceSummaryRow{}, nil
}

func (stubReportsRepo) PlatformSummary(ctx context.Context) (*reports.PlatformSummaryRow, error) {
	return &reports.PlatformSummaryRow{}, nil
}

func (stubReportsRepo) UserContribution(ctx context.Context, userID uuid.UUID) (*reports.UserContributionRow, error) {
	return &reports.UserContributionRow{}, nil
}

func (stubReportsRepo) DonationRows(ctx context.Context, period reports.ReportPeriod) ([]reports.DonationReportRow, error) {
	return nil, nil
}

func (stubReportsRepo) VolunteerRows(ctx context.Context, period reports.ReportPeriod) ([]reports.VolunteerReportRow, error) {
	return nil, nil
}

type stubActivityReader struct{}

func (stubActivityReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	return &models.Activity{ID: id, Title: "Donor Darah Kampus"}, nil
}

type stubUserReader struct{}

func (stubUserReader) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return &models.User{ID: id, Name: "Siti"}, nil
}

type stubRegistrationReader struct{}

func (stubRegistrationReader) FindByUserAndActivity(ctx context.Context, userID, activityID uuid.UUID) (*models.ActivityRegistration, error) {
	return nil, nil
}

func (stubRegistrationReader) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]models.ActivityRegistration, error) {
	return nil, nil
}

type stubNotificationWriter struct{}

func (stubNotificationWriter) Create(ctx context.Context, notification *models.Notification) error {
	return nil
}

type stubEmitter struct{}

func (stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	return nil
}

type stubCertificateRepo struct{}

func (s stubCertificateRepo) WithTx(tx *gorm.DB) certificates.Repository {
	return s
}

func (stubCertificateRepo) Create(ctx context.Context, certificate *models.Certificate) error {
	return nil
}

func (stubCertificateRepo) FindByCode(ctx context.Context, code string) (*models.Certificate, error) {
	return &models.Certificate{ID: uuid.New(), UserID: uuid.New(), ActivityID: uuid.New(), Code: code}, nil
}

func (stubCertificateRepo) FindByUserAndActivity(ctx context.Context, userID, activityID uuid.UUID) (*models.Certificate, error) {
	return nil, nil
}

func (stubCertificateRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error) {
	return nil, nil
}

type stubUsersRepo struct{}

func (s stubUsersRepo) WithTx(tx *gorm.DB) users.Repository {
	return s
}

func (stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return &models.User{ID: id, Name: "Siti", Role: enums.UserRoleStudent}, nil
}

func (stubUsersRepo) List(ctx context.Context, params users.ListUsersParams) ([]models.User, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (stubUsersRepo) Update(ctx context.Context, user *models.User) error {
	return nil
}

func (stubUsersRepo) UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) (bool, error) {
	return true, nil
}

func (stubUsersRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return true, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret: "secret",
			Issuer: "simasosial",
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})

	certificatesService, err := certificates.NewService(certificates.ServiceParams{
		Repo:             stubCertificateRepo{},
		RegistrationRepo: stubRegistrationReader{},
		ActivityRepo:     stubActivityReader{},
		UserRepo:         stubUserReader{},
		NotificationRepo: stubNotificationWriter{},
		Outbox:           stubEmitter{},
		DB:               &gorm.DB{},
		Logger:           logg,
	})
	if err != nil {
		t.Fatalf("build certificates service: %v", err)
	}

	reportsService, err := reports.NewService(reports.ServiceParams{
		Repo:         stubReportsRepo{},
		ActivityRepo: stubActivityReader{},
	})
	if err != nil {
		t.Fatalf("build reports service: %v", err)
	}

	usersService, err := users.NewService(stubUsersRepo{})
	if err != nil {
		t.Fatalf("build users service: %v", err)
	}

	registry := prometheus.NewRegistry()
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		registry,
		nil, // activities
		nil, // donations
		stubNotificationsService{},
		certificatesService,
		reportsService,
		usersService,
		nil, // midtrans client
		nil, // webhook service
		metrics.NewWebhookMetrics(registry),
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	claims := pkgAuth.AccessTokenClaims{
		UserID: uuid.New(),
		Name:   "Siti",
		Email:  "siti@kampus.ac.id",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveAlwaysUp(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProtectedGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStudent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for notifications got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	student := httptest.NewRequest(http.MethodGet, "/api/admin/v1/reports/platform", nil)
	student.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStudent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, student)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/reports/platform", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestProfileRouteReturnsCaller(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStudent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for profile got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUserDirectoryIsAdminOnly(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	student := httptest.NewRequest(http.MethodGet, "/api/admin/v1/users", nil)
	student.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleStudent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, student)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/users", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPublicCertificateVerifyNeedsNoToken(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/v1/certificates/SIMA-CERT-AB12CD34", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public verification got %d: %s", resp.Code, resp.Body.String())
	}
}
