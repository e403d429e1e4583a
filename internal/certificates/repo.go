package certificates

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simasosial/simasosial-backend/pkg/db/models"
)

// Repository exposes persistence helpers for attendance certificates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, certificate *models.Certificate) error
	FindByCode(ctx context.Context, code string) (*models.Certificate, error)
	FindByUserAndActivity(ctx context.Context, userID, activityID uuid.UUID) (*models.Certificate, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a certificates repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, certificate *models.Certificate) error {
	return r.db.WithContext(ctx).Create(certificate).Error
}

func (r *repositoryImpl) FindByCode(ctx context.Context, code string) (*models.Certificate, error) {
	var certificate models.Certificate
	if err := r.db.WithContext(ctx).First(&certificate, "code = ?", code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &certificate, nil
}

func (r *repositoryImpl) FindByUserAndActivity(ctx context.Context, userID, activityID uuid.UUID) (*models.Certificate, error) {
	var certificate models.Certificate
	err := r.db.WithContext(ctx).
		First(&certificate, "user_id = ? AND activity_id = ?", userID, activityID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &certificate, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error) {
	var certificates []models.Certificate
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&certificates).Error
	return certificates, err
}
