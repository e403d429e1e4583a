package donations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
	"github.com/simasosial/simasosial-backend/pkg/pagination"
)

// Repository exposes persistence helpers for donations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, donation *models.Donation) error
	FindByOrderID(ctx context.Context, orderID string) (*models.Donation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Donation, *pagination.Cursor, error)
	VerifiedTotalByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	UpdateStatusIf(ctx context.Context, orderID string, from, to enums.DonationStatus) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a donations repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, donation *models.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *repositoryImpl) FindByOrderID(ctx context.Context, orderID string) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.WithContext(ctx).First(&donation, "order_id = ?", orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &donation, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Donation, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).Model(&models.Donation{}).Where("user_id = ?", userID)
	if cursor != nil {
		// Cursor names the first row of the requested page, so it is inclusive.
		query = query.Where("(created_at, id) <= (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Donation
	if err := query.Order("created_at DESC, id DESC").Limit(buffered).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) VerifiedTotalByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("user_id = ? AND status = ?", userID, enums.DonationStatusVerified).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// UpdateStatusIf transitions the donation keyed by orderID from one status to
// another in a single conditional UPDATE. The row count is the only signal:
// zero rows means the donation is unknown or already left the expected
// status, and the caller treats that as an idempotent no-op.
func (r *repositoryImpl) UpdateStatusIf(ctx context.Context, orderID string, from, to enums.DonationStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("order_id = ? AND status = ?", orderID, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
