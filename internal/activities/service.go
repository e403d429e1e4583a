package activities

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simasosial/simasosial-backend/pkg/db"
	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
	"github.com/simasosial/simasosial-backend/pkg/logger"
	"github.com/simasosial/simasosial-backend/pkg/pagination"
)

const registrationUniqueConstraint = "idx_registrations_user_activity"

type notificationWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	Repo             Repository
	RegistrationRepo RegistrationRepository
	NotificationRepo notificationWriter
	TxRunner         txRunner
	Logger           *logger.Logger
}

type Service struct {
	repo             Repository
	registrationRepo RegistrationRepository
	notificationRepo notificationWriter
	txRunner         txRunner
	logg             *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "activities repo required")
	}
	if params.RegistrationRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "registrations repo required")
	}
	if params.NotificationRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifications repo required")
	}
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		repo:             params.Repo,
		registrationRepo: params.RegistrationRepo,
		notificationRepo: params.NotificationRepo,
		txRunner:         params.TxRunner,
		logg:             params.Logger,
	}, nil
}

// CreateParams describes a new activity. Admin only.
type CreateParams struct {
	Title             string
	Type              enums.ActivityType
	Description       *string
	Location          *string
	ImageURL          *string
	StartsAt          *time.Time
	DonationTarget    int64
	ParticipantTarget int
	ContributionHours int
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*models.Activity, error) {
	if params.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid activity type")
	}
	if params.Type == enums.ActivityTypeDonation && params.DonationTarget <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation target required for fundraising activities")
	}

	activity := &models.Activity{
		Title:             params.Title,
		Type:              params.Type,
		Description:       params.Description,
		Location:          params.Location,
		ImageURL:          params.ImageURL,
		StartsAt:          params.StartsAt,
		DonationTarget:    params.DonationTarget,
		ParticipantTarget: params.ParticipantTarget,
		ContributionHours: params.ContributionHours,
		Status:            enums.ActivityStatusDraft,
	}
	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create activity")
	}
	return activity, nil
}

// UpdateParams carries partial edits to an activity. Nil fields are untouched.
type UpdateParams struct {
	Title             *string
	Description       *string
	Location          *string
	ImageURL          *string
	StartsAt          *time.Time
	DonationTarget    *int64
	ParticipantTarget *int
	ContributionHours *int
	Status            *enums.ActivityStatus
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.Activity, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load activity")
	}
	if activity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "activity not found")
	}

	if params.Title != nil {
		if *params.Title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
		}
		activity.Title = *params.Title
	}
	if params.Description != nil {
		activity.Description = params.Description
	}
	if params.Location != nil {
		activity.Location = params.Location
	}
	if params.ImageURL != nil {
		activity.ImageURL = params.ImageURL
	}
	if params.StartsAt != nil {
		activity.StartsAt = params.StartsAt
	}
	if params.DonationTarget != nil {
		activity.DonationTarget = *params.DonationTarget
	}
	if params.ParticipantTarget != nil {
		activity.ParticipantTarget = *params.ParticipantTarget
	}
	if params.ContributionHours != nil {
		activity.ContributionHours = *params.ContributionHours
	}
	if params.Status != nil {
		if !params.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid activity status")
		}
		activity.Status = *params.Status
	}

	if err := s.repo.Update(ctx, activity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update activity")
	}
	return activity, nil
}

// Delete removes an activity outright. Admin only. Published activities must
// be archived first.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load activity")
	}
	if activity == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "activity not found")
	}
	if activity.Status == enums.ActivityStatusPublished {
		return pkgerrors.New(pkgerrors.CodeConflict, "archive the activity before deleting it")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete activity")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load activity")
	}
	if activity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "activity not found")
	}
	return activity, nil
}

// CatalogParams filters the public catalog. Students only see published
// activities; admins may pass an explicit status.
type CatalogParams struct {
	Type      *enums.ActivityType
	Status    *enums.ActivityStatus
	Limit     int
	Cursor    string
	AdminView bool
}

// CatalogResult wraps one catalog page.
type CatalogResult struct {
	Items  []models.Activity `json:"items"`
	Cursor string            `json:"cursor"`
}

func (s *Service) List(ctx context.Context, params CatalogParams) (*CatalogResult, error) {
	query := ListActivitiesParams{
		Type:  params.Type,
		Limit: params.Limit,
	}
	if params.AdminView {
		query.Status = params.Status
	} else {
		published := enums.ActivityStatusPublished
		query.Status = &published
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activities")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &CatalogResult{Items: rows, Cursor: cursor}, nil
}

// Register signs a student up for a volunteer activity. The registration row
// and the participant counter move in one transaction; the unique index on
// (user_id, activity_id) is the duplicate guard.
func (s *Service) Register(ctx context.Context, userID, activityID uuid.UUID) (*models.ActivityRegistration, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	activity, err := s.repo.FindByID(ctx, activityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load activity")
	}
	if activity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "activity not found")
	}
	if activity.Type != enums.ActivityTypeVolunteer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activity does not take volunteers")
	}
	if activity.Status != enums.ActivityStatusPublished {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activity is not open for registration")
	}
	if activity.ParticipantTarget > 0 && activity.ParticipantsRegistered >= activity.ParticipantTarget {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "activity is full")
	}

	registration := &models.ActivityRegistration{
		UserID:     userID,
		ActivityID: activityID,
		Attendance: enums.AttendanceStatusRegistered,
	}
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.registrationRepo.WithTx(tx).Create(ctx, registration); err != nil {
			if db.IsUniqueViolation(err, registrationUniqueConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "already registered for this activity")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create registration")
		}
		if err := s.repo.WithTx(tx).IncrementParticipants(ctx, activityID, 1); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment participants")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return registration, nil
}

// MarkAttendance records that a registered volunteer attended or was absent.
// Admin only. Only the registered→attended/absent edge is allowed; repeated
// marks are rejected as conflicts.
func (s *Service) MarkAttendance(ctx context.Context, activityID, registrationID uuid.UUID, status enums.AttendanceStatus) error {
	if status != enums.AttendanceStatusAttended && status != enums.AttendanceStatusAbsent {
		return pkgerrors.New(pkgerrors.CodeValidation, "attendance must be attended or absent")
	}

	registration, err := s.findRegistration(ctx, activityID, registrationID)
	if err != nil {
		return err
	}

	updated, err := s.registrationRepo.UpdateAttendanceIf(ctx, registration.ID, enums.AttendanceStatusRegistered, status)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark attendance")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeConflict, "attendance already recorded")
	}

	if status == enums.AttendanceStatusAttended {
		s.notifyAttendance(ctx, registration)
	}
	return nil
}

func (s *Service) findRegistration(ctx context.Context, activityID, registrationID uuid.UUID) (*models.ActivityRegistration, error) {
	registrations, err := s.registrationRepo.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list registrations")
	}
	for i := range registrations {
		if registrations[i].ID == registrationID {
			return &registrations[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "registration not found")
}

func (s *Service) notifyAttendance(ctx context.Context, registration *models.ActivityRegistration) {
	activity, err := s.repo.FindByID(ctx, registration.ActivityID)
	if err != nil || activity == nil {
		if s.logg != nil && err != nil {
			s.logg.Error(ctx, "attendance notification skipped, activity load failed", err)
		}
		return
	}
	link := fmt.Sprintf("/activities/%s", activity.ID)
	notification := &models.Notification{
		UserID:  registration.UserID,
		Type:    enums.NotificationTypeActivityUpdate,
		Title:   "Kehadiran tercatat",
		Message: fmt.Sprintf("Kehadiran Anda pada %q telah dikonfirmasi.", activity.Title),
		Link:    &link,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil && s.logg != nil {
		s.logg.Error(ctx, "attendance notification failed", err)
	}
}

// ListRegistrations returns every sign-up for an activity. Admin only.
func (s *Service) ListRegistrations(ctx context.Context, activityID uuid.UUID) ([]models.ActivityRegistration, error) {
	activity, err := s.repo.FindByID(ctx, activityID)
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
	return registrations, nil
}

// ListMyRegistrations returns the caller's volunteer history.
func (s *Service) ListMyRegistrations(ctx context.Context, userID uuid.UUID) ([]models.ActivityRegistration, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	registrations, err := s.registrationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list registrations")
	}
	return registrations, nil
}
