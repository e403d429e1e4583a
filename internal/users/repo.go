package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
	"github.com/simasosial/simasosial-backend/pkg/pagination"
)

// Repository exposes persistence helpers for campus accounts. Provisioning
// and credentials live in the identity system; this side manages the
// directory rows it mirrors (role, contact fields) and removes them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, params ListUsersParams) ([]models.User, *pagination.Cursor, error)
	Update(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a users repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ListUsersParams filters the account directory.
type ListUsersParams struct {
	Role   *enums.UserRole
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListUsersParams) ([]models.User, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.User{})
	if params.Role != nil {
		query = query.Where("role = ?", *params.Role)
	}
	if params.Cursor != nil {
		// Cursor names the first row of the requested page, so it is inclusive.
		query = query.Where("(created_at, id) <= (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var users []models.User
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, nil, err
	}

	if len(users) > normalized {
		next := users[normalized]
		users = users[:normalized]
		return users, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return users, nil, nil
}

func (r *repositoryImpl) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// UpdateRole flips the role in a single conditional UPDATE. Zero rows
// affected means the account is unknown or already carries the role.
func (r *repositoryImpl) UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role <> ?", id, role).
		UpdateColumn("role", role)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
