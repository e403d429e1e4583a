package certificates

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
	"github.com/simasosial/simasosial-backend/pkg/outbox"
)

type stubCertRepo struct {
	byCode  map[string]*models.Certificate
	byPair  map[string]*models.Certificate
	byUser  map[uuid.UUID][]models.Certificate
	created []*models.Certificate
}

func newStubCertRepo() *stubCertRepo {
	return &stubCertRepo{
		byCode: map[string]*models.Certificate{},
		byPair: map[string]*models.Certificate{},
		byUser: map[uuid.UUID][]models.Certificate{},
	}
}

func pairKey(userID, activityID uuid.UUID) string {
	return userID.String() + "/" + activityID.String()
}

func (s *stubCertRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubCertRepo) Create(_ context.Context, certificate *models.Certificate) error {
	certificate.ID = uuid.New()
	s.byCode[certificate.Code] = certificate
	s.byPair[pairKey(certificate.UserID, certificate.ActivityID)] = certificate
	s.byUser[certificate.UserID] = append(s.byUser[certificate.UserID], *certificate)
	s.created = append(s.created, certificate)
	return nil
}

func (s *stubCertRepo) FindByCode(_ context.Context, code string) (*models.Certificate, error) {
	return s.byCode[code], nil
}

func (s *stubCertRepo) FindByUserAndActivity(_ context.Context, userID, activityID uuid.UUID) (*models.Certificate, error) {
	return s.byPair[pairKey(userID, activityID)], nil
}

func (s *stubCertRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Certificate, error) {
	return s.byUser[userID], nil
}

type stubRegistrationReader struct {
	registration *models.ActivityRegistration
	byActivity   []models.ActivityRegistration
}

func (s *stubRegistrationReader) FindByUserAndActivity(_ context.Context, _, _ uuid.UUID) (*models.ActivityRegistration, error) {
	return s.registration, nil
}

func (s *stubRegistrationReader) ListByActivity(_ context.Context, activityID uuid.UUID) ([]models.ActivityRegistration, error) {
	if len(s.byActivity) > 0 {
		return s.byActivity, nil
	}
	if s.registration != nil && s.registration.ActivityID == activityID {
		return []models.ActivityRegistration{*s.registration}, nil
	}
	return nil, nil
}

type stubActivityReader struct {
	activity *models.Activity
}

func (s *stubActivityReader) FindByID(_ context.Context, id uuid.UUID) (*models.Activity, error) {
	if s.activity == nil || s.activity.ID != id {
		return nil, nil
	}
	return s.activity, nil
}

type stubUserReader struct {
	user *models.User
}

func (s *stubUserReader) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, nil
	}
	return s.user, nil
}

type stubNotificationWriter struct {
	created []models.Notification
}

func (s *stubNotificationWriter) Create(_ context.Context, notification *models.Notification) error {
	s.created = append(s.created, *notification)
	return nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type certFixture struct {
	repo          *stubCertRepo
	notifications *stubNotificationWriter
	emitter       *stubEmitter
	service       *Service
	user          *models.User
	activity      *models.Activity
}

func newCertFixture(t *testing.T, attendance enums.AttendanceStatus) *certFixture {
	t.Helper()

	user := &models.User{ID: uuid.New(), Name: "Budi Santoso", Email: "budi@kampus.ac.id"}
	activity := &models.Activity{ID: uuid.New(), Title: "Donor Darah", Type: enums.ActivityTypeVolunteer}
	registration := &models.ActivityRegistration{
		ID:         uuid.New(),
		UserID:     user.ID,
		ActivityID: activity.ID,
		Attendance: attendance,
	}

	f := &certFixture{
		repo:          newStubCertRepo(),
		notifications: &stubNotificationWriter{},
		emitter:       &stubEmitter{},
		user:          user,
		activity:      activity,
	}

	service, err := NewService(ServiceParams{
		Repo:             f.repo,
		RegistrationRepo: &stubRegistrationReader{registration: registration},
		ActivityRepo:     &stubActivityReader{activity: activity},
		UserRepo:         &stubUserReader{user: user},
		NotificationRepo: f.notifications,
		Outbox:           f.emitter,
		DB:               &gorm.DB{},
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	f.service = service
	return f
}

func TestService_IssueForAttendedVolunteer(t *testing.T) {
	f := newCertFixture(t, enums.AttendanceStatusAttended)

	certificate, err := f.service.Issue(context.Background(), f.user.ID, f.activity.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !strings.HasPrefix(certificate.Code, "SIMA-CERT-") {
		t.Fatalf("unexpected code %q", certificate.Code)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(certificate.Code, "SIMA-CERT-")); err != nil {
		t.Fatalf("expected uuid-based code, got %q", certificate.Code)
	}
	if len(f.notifications.created) != 1 {
		t.Fatalf("expected notification, got %d", len(f.notifications.created))
	}
	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventCertificateIssued {
		t.Fatalf("expected certificate event, got %+v", f.emitter.events)
	}
}

func TestService_IssueRejectsUnconfirmedAttendance(t *testing.T) {
	f := newCertFixture(t, enums.AttendanceStatusRegistered)

	_, err := f.service.Issue(context.Background(), f.user.ID, f.activity.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_IssueTwiceConflicts(t *testing.T) {
	f := newCertFixture(t, enums.AttendanceStatusAttended)

	if _, err := f.service.Issue(context.Background(), f.user.ID, f.activity.ID); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	_, err := f.service.Issue(context.Background(), f.user.ID, f.activity.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestService_IssueForActivityCoversAttendedOnly(t *testing.T) {
	user := &models.User{ID: uuid.New(), Name: "Budi Santoso", Email: "budi@kampus.ac.id"}
	activity := &models.Activity{ID: uuid.New(), Title: "Donor Darah", Type: enums.ActivityTypeVolunteer}
	registrations := []models.ActivityRegistration{
		{ID: uuid.New(), UserID: user.ID, ActivityID: activity.ID, Attendance: enums.AttendanceStatusAttended},
		{ID: uuid.New(), UserID: uuid.New(), ActivityID: activity.ID, Attendance: enums.AttendanceStatusAttended},
		{ID: uuid.New(), UserID: uuid.New(), ActivityID: activity.ID, Attendance: enums.AttendanceStatusAbsent},
	}

	repo := newStubCertRepo()
	notifications := &stubNotificationWriter{}
	service, err := NewService(ServiceParams{
		Repo:             repo,
		RegistrationRepo: &stubRegistrationReader{byActivity: registrations},
		ActivityRepo:     &stubActivityReader{activity: activity},
		UserRepo:         &stubUserReader{user: user},
		NotificationRepo: notifications,
		Outbox:           &stubEmitter{},
		DB:               &gorm.DB{},
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	result, err := service.IssueForActivity(context.Background(), activity.ID)
	if err != nil {
		t.Fatalf("bulk issue: %v", err)
	}
	if len(result.Issued) != 2 || result.Skipped != 1 {
		t.Fatalf("expected 2 issued / 1 skipped, got %d / %d", len(result.Issued), result.Skipped)
	}
	if len(notifications.created) != 2 {
		t.Fatalf("expected a notification per certificate, got %d", len(notifications.created))
	}

	// Re-running finds everyone certified already.
	result, err = service.IssueForActivity(context.Background(), activity.ID)
	if err != nil {
		t.Fatalf("second bulk issue: %v", err)
	}
	if len(result.Issued) != 0 || result.Skipped != 3 {
		t.Fatalf("expected idempotent re-run, got %d issued / %d skipped", len(result.Issued), result.Skipped)
	}
}

func TestService_VerifyResolvesCode(t *testing.T) {
	f := newCertFixture(t, enums.AttendanceStatusAttended)

	certificate, err := f.service.Issue(context.Background(), f.user.ID, f.activity.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	result, err := f.service.Verify(context.Background(), certificate.Code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.HolderName != "Budi Santoso" {
		t.Fatalf("unexpected holder %q", result.HolderName)
	}
	if result.Activity == nil || result.Activity.ID != f.activity.ID {
		t.Fatalf("expected activity resolved")
	}
}

func TestService_VerifyUnknownCode(t *testing.T) {
	f := newCertFixture(t, enums.AttendanceStatusAttended)

	_, err := f.service.Verify(context.Background(), "SIMA-CERT-DEADBEEF")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
