package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
	"github.com/simasosial/simasosial-backend/pkg/pagination"
)

type stubUsersRepo struct {
	users   map[uuid.UUID]*models.User
	listErr error
}

func newStubUsersRepo(users ...*models.User) *stubUsersRepo {
	byID := map[uuid.UUID]*models.User{}
	for _, user := range users {
		byID[user.ID] = user
	}
	return &stubUsersRepo{users: byID}
}

func (s *stubUsersRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubUsersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return s.users[id], nil
}

func (s *stubUsersRepo) List(_ context.Context, params ListUsersParams) ([]models.User, *pagination.Cursor, error) {
	if s.listErr != nil {
		return nil, nil, s.listErr
	}
	var rows []models.User
	for _, user := range s.users {
		if params.Role != nil && user.Role != *params.Role {
			continue
		}
		rows = append(rows, *user)
	}
	return rows, nil, nil
}

func (s *stubUsersRepo) Update(_ context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *stubUsersRepo) UpdateRole(_ context.Context, id uuid.UUID, role enums.UserRole) (bool, error) {
	user, ok := s.users[id]
	if !ok || user.Role == role {
		return false, nil
	}
	user.Role = role
	return true, nil
}

func (s *stubUsersRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

func newUsersService(t *testing.T, repo Repository) *Service {
	t.Helper()
	service, err := NewService(repo)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return service
}

func studentUser() *models.User {
	return &models.User{
		ID:        uuid.New(),
		Name:      "Siti Rahma",
		StudentID: "2110512345",
		Email:     "siti@kampus.ac.id",
		Role:      enums.UserRoleStudent,
	}
}

func TestService_ListFiltersByRole(t *testing.T) {
	student := studentUser()
	admin := studentUser()
	admin.Role = enums.UserRoleAdmin
	service := newUsersService(t, newStubUsersRepo(student, admin))

	role := enums.UserRoleAdmin
	result, err := service.List(context.Background(), ListParams{Role: &role})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ID != admin.ID {
		t.Fatalf("expected only the admin account, got %d rows", len(result.Items))
	}
}

func TestService_ListWrapsStoreErrors(t *testing.T) {
	repo := newStubUsersRepo()
	repo.listErr = errors.New("connection reset")
	service := newUsersService(t, repo)

	_, err := service.List(context.Background(), ListParams{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestService_UpdateProfileTouchesContactFieldsOnly(t *testing.T) {
	user := studentUser()
	service := newUsersService(t, newStubUsersRepo(user))

	phone := "081234567890"
	department := "Informatika"
	updated, err := service.UpdateProfile(context.Background(), user.ID, UpdateProfileParams{
		Phone:      &phone,
		Department: &department,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Phone == nil || *updated.Phone != phone {
		t.Fatalf("expected phone updated")
	}
	if updated.Department == nil || *updated.Department != department {
		t.Fatalf("expected department updated")
	}
	if updated.Cohort != nil {
		t.Fatalf("expected untouched cohort to stay nil")
	}
	if updated.Name != "Siti Rahma" || updated.Email != "siti@kampus.ac.id" {
		t.Fatalf("identity fields must not move")
	}
}

func TestService_ProfileUnknownUser(t *testing.T) {
	service := newUsersService(t, newStubUsersRepo())

	_, err := service.Profile(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_UpdateRolePromotesStudent(t *testing.T) {
	actor := uuid.New()
	user := studentUser()
	service := newUsersService(t, newStubUsersRepo(user))

	if err := service.UpdateRole(context.Background(), actor, user.ID, enums.UserRoleAdmin); err != nil {
		t.Fatalf("update role: %v", err)
	}
	if user.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin role, got %s", user.Role)
	}

	// Assigning the role it already carries is a benign no-op.
	if err := service.UpdateRole(context.Background(), actor, user.ID, enums.UserRoleAdmin); err != nil {
		t.Fatalf("repeated role assignment must be a no-op, got %v", err)
	}
}

func TestService_UpdateRoleRejectsSelf(t *testing.T) {
	user := studentUser()
	user.Role = enums.UserRoleAdmin
	service := newUsersService(t, newStubUsersRepo(user))

	err := service.UpdateRole(context.Background(), user.ID, user.ID, enums.UserRoleStudent)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if user.Role != enums.UserRoleAdmin {
		t.Fatalf("own role must not move")
	}
}

func TestService_UpdateRoleUnknownUser(t *testing.T) {
	service := newUsersService(t, newStubUsersRepo())

	err := service.UpdateRole(context.Background(), uuid.New(), uuid.New(), enums.UserRoleAdmin)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_DeleteRejectsSelf(t *testing.T) {
	user := studentUser()
	repo := newStubUsersRepo(user)
	service := newUsersService(t, repo)

	err := service.Delete(context.Background(), user.ID, user.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := repo.users[user.ID]; !ok {
		t.Fatalf("own account must not be removed")
	}

	if err := service.Delete(context.Background(), uuid.New(), user.ID); err != nil {
		t.Fatalf("delete by another admin: %v", err)
	}
	if _, ok := repo.users[user.ID]; ok {
		t.Fatalf("expected account removed")
	}
}

func TestService_DeleteUnknownUser(t *testing.T) {
	service := newUsersService(t, newStubUsersRepo())

	err := service.Delete(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
