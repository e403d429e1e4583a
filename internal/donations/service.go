package donations

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	midtransclient "github.com/simasosial/simasosial-backend/pkg/midtrans"

	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
	"github.com/simasosial/simasosial-backend/pkg/logger"
	"github.com/simasosial/simasosial-backend/pkg/pagination"
)

type activityReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
}

type snapClient interface {
	CreateTransaction(ctx context.Context, orderID string, grossAmount int64, customerName, customerEmail string) (*midtransclient.SnapTransaction, error)
}

type ServiceParams struct {
	Repo         Repository
	ActivityRepo activityReader
	Snap         snapClient
	Logger       *logger.Logger
}

type Service struct {
	repo         Repository
	activityRepo activityReader
	snap         snapClient
	logg         *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "donations repo required")
	}
	if params.ActivityRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "activity repo required")
	}
	if params.Snap == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "snap client required")
	}
	return &Service{
		repo:         params.Repo,
		activityRepo: params.ActivityRepo,
		snap:         params.Snap,
		logg:         params.Logger,
	}, nil
}

// CreateParams describes a checkout request.
type CreateParams struct {
	UserID     uuid.UUID
	UserName   string
	UserEmail  string
	ActivityID uuid.UUID
	Amount     int64
}

// CheckoutResult pairs the pending donation with the gateway token the
// frontend widget needs.
type CheckoutResult struct {
	Donation    *models.Donation `json:"donation"`
	Token       string           `json:"token"`
	RedirectURL string           `json:"redirect_url"`
}

// Create records a pending donation and opens a gateway transaction for it.
// The order id is the correlation key the confirmation webhook keys on.
func (s *Service) Create(ctx context.Context, params CreateParams) (*CheckoutResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if params.ActivityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activity id required")
	}
	if params.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	activity, err := s.activityRepo.FindByID(ctx, params.ActivityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load activity")
	}
	if activity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "activity not found")
	}
	if activity.Type != enums.ActivityTypeDonation {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activity does not accept donations")
	}
	if activity.Status != enums.ActivityStatusPublished {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activity is not open for donations")
	}

	donation := &models.Donation{
		OrderID:    fmt.Sprintf("SIMA-DONASI-%s", uuid.NewString()),
		UserID:     params.UserID,
		ActivityID: params.ActivityID,
		Amount:     params.Amount,
		Status:     enums.DonationStatusPending,
	}
	if err := s.repo.Create(ctx, donation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create donation")
	}

	// A pending row with no gateway transaction is harmless: it can never be
	// verified, and reconciliation can expire it later.
	transaction, err := s.snap.CreateTransaction(ctx, donation.OrderID, donation.Amount, params.UserName, params.UserEmail)
	if err != nil {
		if s.logg != nil {
			logCtx := s.logg.WithOrderID(ctx, donation.OrderID)
			s.logg.Error(logCtx, "snap transaction failed", err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway transaction")
	}

	return &CheckoutResult{
		Donation:    donation,
		Token:       transaction.Token,
		RedirectURL: transaction.RedirectURL,
	}, nil
}

// ListMineParams configures pagination for a donor's history.
type ListMineParams struct {
	UserID uuid.UUID
	Limit  int
	Cursor string
}

// ListResult wraps a page of donations, the next cursor, and the caller's
// running verified total.
type ListResult struct {
	Items         []models.Donation `json:"items"`
	Cursor        string            `json:"cursor"`
	VerifiedTotal int64             `json:"verified_total"`
}

// ListMine returns the caller's donation history, newest first.
func (s *Service) ListMine(ctx context.Context, params ListMineParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	rows, next, err := s.repo.ListByUser(ctx, params.UserID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list donations")
	}
	total, err := s.repo.VerifiedTotalByUser(ctx, params.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum verified donations")
	}

	encoded := ""
	if next != nil {
		encoded = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: encoded, VerifiedTotal: total}, nil
}

// GetByOrderID returns a single donation owned by the caller, used by the
// frontend to poll payment status after checkout.
func (s *Service) GetByOrderID(ctx context.Context, userID uuid.UUID, orderID string) (*models.Donation, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	donation, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation")
	}
	if donation == nil || donation.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
	}
	return donation, nil
}
