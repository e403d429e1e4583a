package activities

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
)

// RegistrationRepository persists volunteer sign-ups and attendance marks.
type RegistrationRepository interface {
	WithTx(tx *gorm.DB) RegistrationRepository
	Create(ctx context.Context, registration *models.ActivityRegistration) error
	FindByUserAndActivity(ctx context.Context, userID, activityID uuid.UUID) (*models.ActivityRegistration, error)
	ListByActivity(ctx context.Context, activityID uuid.UUID) ([]models.ActivityRegistration, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ActivityRegistration, error)
	UpdateAttendanceIf(ctx context.Context, id uuid.UUID, from, to enums.AttendanceStatus) (bool, error)
}

type registrationRepositoryImpl struct {
	db *gorm.DB
}

// NewRegistrationRepository returns a registration repository bound to the
// provided database.
func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepositoryImpl{db: db}
}

func (r *registrationRepositoryImpl) WithTx(tx *gorm.DB) RegistrationRepository {
	if tx == nil {
		return r
	}
	return &registrationRepositoryImpl{db: tx}
}

func (r *registrationRepositoryImpl) Create(ctx context.Context, registration *models.ActivityRegistration) error {
	return r.db.WithContext(ctx).Create(registration).Error
}

func (r *registrationRepositoryImpl) FindByUserAndActivity(ctx context.Context, userID, activityID uuid.UUID) (*models.ActivityRegistration, error) {
	var registration models.ActivityRegistration
	err := r.db.WithContext(ctx).
		First(&registration, "user_id = ? AND activity_id = ?", userID, activityID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &registration, nil
}

func (r *registrationRepositoryImpl) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]models.ActivityRegistration, error) {
	var registrations []models.ActivityRegistration
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("registered_at ASC").
		Find(&registrations).Error
	return registrations, err
}

func (r *registrationRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ActivityRegistration, error) {
	var registrations []models.ActivityRegistration
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("registered_at DESC").
		Find(&registrations).Error
	return registrations, err
}

// UpdateAttendanceIf flips attendance only when the row still carries the
// expected previous value, mirroring the conditional-write discipline used
// for donation status.
func (r *registrationRepositoryImpl) UpdateAttendanceIf(ctx context.Context, id uuid.UUID, from, to enums.AttendanceStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ActivityRegistration{}).
		Where("id = ? AND attendance = ?", id, from).
		UpdateColumn("attendance", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
