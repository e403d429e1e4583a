package activities

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
	"github.com/simasosial/simasosial-backend/pkg/pagination"
)

// Repository exposes persistence helpers for activities and their running
// aggregates. Aggregate columns only ever move by relative increments so
// concurrent confirmations never clobber each other.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params ListActivitiesParams) ([]models.Activity, *pagination.Cursor, error)
	IncrementRaised(ctx context.Context, id uuid.UUID, delta int64) error
	IncrementParticipants(ctx context.Context, id uuid.UUID, delta int) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an activities repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ListActivitiesParams filters the activity catalog.
type ListActivitiesParams struct {
	Type   *enums.ActivityType
	Status *enums.ActivityStatus
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *repositoryImpl) Update(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Save(activity).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).First(&activity, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &activity, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Activity{}, "id = ?", id).Error
}

func (r *repositoryImpl) List(ctx context.Context, params ListActivitiesParams) ([]models.Activity, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Activity{})
	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		// Cursor names the first row of the requested page, so it is inclusive.
		query = query.Where("(created_at, id) <= (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var activities []models.Activity
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&activities).Error; err != nil {
		return nil, nil, err
	}

	if len(activities) > normalized {
		next := activities[normalized]
		activities = activities[:normalized]
		return activities, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return activities, nil, nil
}

func (r *repositoryImpl) IncrementRaised(ctx context.Context, id uuid.UUID, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("id = ?", id).
		UpdateColumn("amount_raised", gorm.Expr("amount_raised + ?", delta)).Error
}

func (r *repositoryImpl) IncrementParticipants(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("id = ?", id).
		UpdateColumn("participants_registered", gorm.Expr("participants_registered + ?", delta)).Error
}
