package certificates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
	"github.com/simasosial/simasosial-backend/pkg/logger"
	"github.com/simasosial/simasosial-backend/pkg/outbox"
	"github.com/simasosial/simasosial-backend/pkg/outbox/payloads"
)

type registrationReader interface {
	FindByUserAndActivity(ctx context.Context, userID, activityID uuid.UUID) (*models.ActivityRegistration, error)
	ListByActivity(ctx context.Context, activityID uuid.UUID) ([]models.ActivityRegistration, error)
}

type activityReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
}

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type notificationWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type ServiceParams struct {
	Repo             Repository
	RegistrationRepo registrationReader
	ActivityRepo     activityReader
	UserRepo         userReader
	NotificationRepo notificationWriter
	Outbox           eventEmitter
	DB               *gorm.DB
	Logger           *logger.Logger
}

type Service struct {
	repo             Repository
	registrationRepo registrationReader
	activityRepo     activityReader
	userRepo         userReader
	notificationRepo notificationWriter
	outbox           eventEmitter
	db               *gorm.DB
	logg             *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "certificates repo required")
	}
	if params.RegistrationRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "registrations repo required")
	}
	if params.ActivityRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "activities repo required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repo required")
	}
	if params.NotificationRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifications repo required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox emitter required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "db handle required")
	}
	return &Service{
		repo:             params.Repo,
		registrationRepo: params.RegistrationRepo,
		activityRepo:     params.ActivityRepo,
		userRepo:         params.UserRepo,
		notificationRepo: params.NotificationRepo,
		outbox:           params.Outbox,
		db:               params.DB,
		logg:             params.Logger,
	}, nil
}

// Issue creates a certificate for a volunteer whose attendance has been
// confirmed. Admin only. Issuing twice for the same user and activity is a
// conflict.
func (s *Service) Issue(ctx context.Context, userID, activityID uuid.UUID) (*models.Certificate, error) {
	registration, err := s.registrationRepo.FindByUserAndActivity(ctx, userID, activityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load registration")
	}
	if registration == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "registration not found")
	}
	if registration.Attendance != enums.AttendanceStatusAttended {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "attendance not confirmed")
	}

	existing, err := s.repo.FindByUserAndActivity(ctx, userID, activityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing certificate")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "certificate already issued")
	}

	certificate := &models.Certificate{
		UserID:     userID,
		ActivityID: activityID,
		Code:       generateCode(),
	}
	if err := s.repo.Create(ctx, certificate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create certificate")
	}

	s.announce(ctx, certificate)
	return certificate, nil
}

// BulkIssueResult summarizes one bulk issuance run.
type BulkIssueResult struct {
	Issued  []models.Certificate `json:"issued"`
	Skipped int                  `json:"skipped"`
}

// IssueForActivity issues a certificate to every attended registrant of an
// activity that does not hold one yet. Admin only. Registrants without a
// confirmed attendance and already-certified ones are counted as skipped,
// never as errors, so the operation can be re-run safely.
func (s *Service) IssueForActivity(ctx context.Context, activityID uuid.UUID) (*BulkIssueResult, error) {
	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load activity")
	}
	if activity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "activity not found")
	}

	registrations, err := s.registrationRepo.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list registrations")
	}

	result := &BulkIssueResult{}
	for i := range registrations {
		registration := &registrations[i]
		if registration.Attendance != enums.AttendanceStatusAttended {
			result.Skipped++
			continue
		}
		existing, err := s.repo.FindByUserAndActivity(ctx, registration.UserID, activityID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing certificate")
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		certificate := &models.Certificate{
			UserID:     registration.UserID,
			ActivityID: activityID,
			Code:       generateCode(),
		}
		if err := s.repo.Create(ctx, certificate); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create certificate")
		}
		s.announce(ctx, certificate)
		result.Issued = append(result.Issued, *certificate)
	}
	return result, nil
}

// announce notifies the recipient and queues the certificate email. Both are
// best-effort once the certificate row exists.
func (s *Service) announce(ctx context.Context, certificate *models.Certificate) {
	activity, err := s.activityRepo.FindByID(ctx, certificate.ActivityID)
	if err != nil || activity == nil {
		if s.logg != nil && err != nil {
			s.logg.Error(ctx, "certificate announcement skipped, activity load failed", err)
		}
		return
	}

	link := fmt.Sprintf("/certificates/%s", certificate.Code)
	notification := &models.Notification{
		UserID:  certificate.UserID,
		Type:    enums.NotificationTypeCertificateIssued,
		Title:   "Sertifikat terbit",
		Message: fmt.Sprintf("Sertifikat kegiatan %q sudah dapat diunduh.", activity.Title),
		Link:    &link,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil && s.logg != nil {
		s.logg.Error(ctx, "certificate notification failed", err)
	}

	user, err := s.userRepo.FindByID(ctx, certificate.UserID)
	if err != nil || user == nil {
		if s.logg != nil && err != nil {
			s.logg.Error(ctx, "certificate email skipped, user load failed", err)
		}
		return
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventCertificateIssued,
		AggregateType: enums.AggregateCertificate,
		AggregateID:   certificate.ID,
		Version:       1,
		Data: payloads.CertificateIssuedEvent{
			CertificateID: certificate.ID,
			UserID:        user.ID,
			UserName:      user.Name,
			UserEmail:     user.Email,
			ActivityID:    activity.ID,
			ActivityTitle: activity.Title,
			Code:          certificate.Code,
		},
	}
	if err := s.outbox.Emit(ctx, s.db, event); err != nil && s.logg != nil {
		s.logg.Error(ctx, "certificate event not queued", err)
	}
}

// VerificationResult is the public view returned for a certificate code.
type VerificationResult struct {
	Certificate *models.Certificate `json:"certificate"`
	Activity    *models.Activity    `json:"activity"`
	HolderName  string              `json:"holder_name"`
}

// Verify resolves a public certificate code. No authentication required; this
// is what employers scan.
func (s *Service) Verify(ctx context.Context, code string) (*VerificationResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "certificate code required")
	}

	certificate, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load certificate")
	}
	if certificate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "certificate not found")
	}

	result := &VerificationResult{Certificate: certificate}
	if activity, err := s.activityRepo.FindByID(ctx, certificate.ActivityID); err == nil && activity != nil {
		result.Activity = activity
	}
	if user, err := s.userRepo.FindByID(ctx, certificate.UserID); err == nil && user != nil {
		result.HolderName = user.Name
	}
	return result, nil
}

// ListMine returns the caller's certificates, newest first.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	certificates, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list certificates")
	}
	return certificates, nil
}

// generateCode mints the public verification code. Same shape as the
// donation order id: a fixed prefix over a fresh uuid.
func generateCode() string {
	return fmt.Sprintf("SIMA-CERT-%s", uuid.NewString())
}
