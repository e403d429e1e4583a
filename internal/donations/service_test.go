package donations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
	midtransclient "github.com/simasosial/simasosial-backend/pkg/midtrans"
	"github.com/simasosial/simasosial-backend/pkg/pagination"
)

type stubRepo struct {
	created       []*models.Donation
	createErr     error
	byOrderID     map[string]*models.Donation
	listRows      []models.Donation
	verifiedTotal int64
}

func (s *stubRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubRepo) Create(_ context.Context, donation *models.Donation) error {
	if s.createErr != nil {
		return s.createErr
	}
	donation.ID = uuid.New()
	s.created = append(s.created, donation)
	return nil
}

func (s *stubRepo) FindByOrderID(_ context.Context, orderID string) (*models.Donation, error) {
	return s.byOrderID[orderID], nil
}

func (s *stubRepo) ListByUser(_ context.Context, _ uuid.UUID, _ int, _ *pagination.Cursor) ([]models.Donation, *pagination.Cursor, error) {
	return s.listRows, nil, nil
}

func (s *stubRepo) VerifiedTotalByUser(_ context.Context, _ uuid.UUID) (int64, error) {
	return s.verifiedTotal, nil
}

func (s *stubRepo) UpdateStatusIf(_ context.Context, _ string, _, _ enums.DonationStatus) (bool, error) {
	return false, nil
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

type stubSnap struct {
	lastOrderID string
	lastAmount  int64
	err         error
}

func (s *stubSnap) CreateTransaction(_ context.Context, orderID string, grossAmount int64, _, _ string) (*midtransclient.SnapTransaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastOrderID = orderID
	s.lastAmount = grossAmount
	return &midtransclient.SnapTransaction{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2"}, nil
}

func donationActivity() *models.Activity {
	return &models.Activity{
		ID:     uuid.New(),
		Title:  "Galang Dana Banjir",
		Type:   enums.ActivityTypeDonation,
		Status: enums.ActivityStatusPublished,
	}
}

func TestService_CreateOpensGatewayTransaction(t *testing.T) {
	activity := donationActivity()
	repo := &stubRepo{}
	snap := &stubSnap{}
	service, err := NewService(ServiceParams{Repo: repo, ActivityRepo: &stubActivityReader{activity: activity}, Snap: snap})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	result, err := service.Create(context.Background(), CreateParams{
		UserID:     uuid.New(),
		UserName:   "Siti Rahma",
		UserEmail:  "siti@kampus.ac.id",
		ActivityID: activity.ID,
		Amount:     50000,
	})
	if err != nil {
		t.Fatalf("create donation: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected one pending donation, got %d", len(repo.created))
	}
	donation := repo.created[0]
	if donation.Status != enums.DonationStatusPending {
		t.Fatalf("expected pending status, got %s", donation.Status)
	}
	if !strings.HasPrefix(donation.OrderID, "SIMA-DONASI-") {
		t.Fatalf("unexpected order id %q", donation.OrderID)
	}
	if snap.lastOrderID != donation.OrderID || snap.lastAmount != 50000 {
		t.Fatalf("gateway called with %q/%d", snap.lastOrderID, snap.lastAmount)
	}
	if result.Token != "snap-token" {
		t.Fatalf("unexpected token %q", result.Token)
	}
}

func TestService_CreateRejectsVolunteerActivity(t *testing.T) {
	activity := donationActivity()
	activity.Type = enums.ActivityTypeVolunteer
	service, err := NewService(ServiceParams{Repo: &stubRepo{}, ActivityRepo: &stubActivityReader{activity: activity}, Snap: &stubSnap{}})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	_, err = service.Create(context.Background(), CreateParams{
		UserID:     uuid.New(),
		ActivityID: activity.ID,
		Amount:     50000,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_CreateRejectsUnpublishedActivity(t *testing.T) {
	activity := donationActivity()
	activity.Status = enums.ActivityStatusDraft
	service, err := NewService(ServiceParams{Repo: &stubRepo{}, ActivityRepo: &stubActivityReader{activity: activity}, Snap: &stubSnap{}})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	_, err = service.Create(context.Background(), CreateParams{
		UserID:     uuid.New(),
		ActivityID: activity.ID,
		Amount:     50000,
	})
	if pkgerrors.As(err) == nil {
		t.Fatalf("expected error for draft activity")
	}
}

func TestService_CreateRejectsNonPositiveAmount(t *testing.T) {
	activity := donationActivity()
	service, err := NewService(ServiceParams{Repo: &stubRepo{}, ActivityRepo: &stubActivityReader{activity: activity}, Snap: &stubSnap{}})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	_, err = service.Create(context.Background(), CreateParams{
		UserID:     uuid.New(),
		ActivityID: activity.ID,
		Amount:     0,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_CreateSurfacesGatewayFailure(t *testing.T) {
	activity := donationActivity()
	repo := &stubRepo{}
	service, err := NewService(ServiceParams{
		Repo:         repo,
		ActivityRepo: &stubActivityReader{activity: activity},
		Snap:         &stubSnap{err: errors.New("midtrans unavailable")},
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	_, err = service.Create(context.Background(), CreateParams{
		UserID:     uuid.New(),
		ActivityID: activity.ID,
		Amount:     50000,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	// The pending row stays; it can never verify without a gateway transaction.
	if len(repo.created) != 1 {
		t.Fatalf("expected pending donation to remain recorded")
	}
}

func TestService_ListMineIncludesVerifiedTotal(t *testing.T) {
	owner := uuid.New()
	repo := &stubRepo{
		listRows:      []models.Donation{{ID: uuid.New(), UserID: owner, Amount: 50000}},
		verifiedTotal: 125000,
	}
	service, err := NewService(ServiceParams{Repo: repo, ActivityRepo: &stubActivityReader{}, Snap: &stubSnap{}})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	result, err := service.ListMine(context.Background(), ListMineParams{UserID: owner})
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected one donation, got %d", len(result.Items))
	}
	if result.VerifiedTotal != 125000 {
		t.Fatalf("unexpected verified total %d", result.VerifiedTotal)
	}
}

func TestService_GetByOrderIDScopedToOwner(t *testing.T) {
	owner := uuid.New()
	donation := &models.Donation{ID: uuid.New(), OrderID: "SIMA-DONASI-1", UserID: owner}
	repo := &stubRepo{byOrderID: map[string]*models.Donation{"SIMA-DONASI-1": donation}}
	service, err := NewService(ServiceParams{Repo: repo, ActivityRepo: &stubActivityReader{}, Snap: &stubSnap{}})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	got, err := service.GetByOrderID(context.Background(), owner, "SIMA-DONASI-1")
	if err != nil {
		t.Fatalf("get by order id: %v", err)
	}
	if got.ID != donation.ID {
		t.Fatalf("unexpected donation returned")
	}

	_, err = service.GetByOrderID(context.Background(), uuid.New(), "SIMA-DONASI-1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for other user, got %v", err)
	}
}
