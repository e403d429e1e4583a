package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
	"github.com/simasosial/simasosial-backend/pkg/pagination"
)

// Service covers the account directory: the caller's own profile and the
// admin management operations behind the user administration page.
type Service struct {
	repo Repository
}

// NewService wires the users dependencies.
func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repo required")
	}
	return &Service{repo: repo}, nil
}

// ListParams configures the admin account directory page.
type ListParams struct {
	Role   *enums.UserRole
	Limit  int
	Cursor string
}

// ListResult wraps one directory page.
type ListResult struct {
	Items  []models.User `json:"items"`
	Cursor string        `json:"cursor"`
}

// List returns the account directory, newest first. Admin only.
func (s *Service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := ListUsersParams{
		Role:  params.Role,
		Limit: params.Limit,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// Profile returns the caller's own account row.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}

// UpdateProfileParams carries partial edits to the caller's contact fields.
// Nil fields are untouched. Name, student id, email, and credentials stay
// with the identity system.
type UpdateProfileParams struct {
	Phone      *string
	Department *string
	Cohort     *string
}

// UpdateProfile edits the caller's own contact fields.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Phone != nil {
		user.Phone = params.Phone
	}
	if params.Department != nil {
		user.Department = params.Department
	}
	if params.Cohort != nil {
		user.Cohort = params.Cohort
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return user, nil
}

// UpdateRole changes an account's role. Admin only. Admins cannot change
// their own role, so the last admin can never lock the console.
func (s *Service) UpdateRole(ctx context.Context, actorID, userID uuid.UUID, role enums.UserRole) error {
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if actorID == userID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot change own role")
	}

	updated, err := s.repo.UpdateRole(ctx, userID, role)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	if updated {
		return nil
	}

	// Zero rows flipped: either the account already carries the role (a
	// benign no-op) or it does not exist.
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}

// Delete removes an account. Admin only. Admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete own account")
	}

	deleted, err := s.repo.Delete(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}
