package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/simasosial/simasosial-backend/api/middleware"
	"github.com/simasosial/simasosial-backend/api/responses"
	"github.com/simasosial/simasosial-backend/api/validators"
	"github.com/simasosial/simasosial-backend/internal/donations"
	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
	"github.com/simasosial/simasosial-backend/pkg/logger"
	"github.com/simasosial/simasosial-backend/pkg/pagination"
)

type createDonationRequest struct {
	ActivityID uuid.UUID `json:"activity_id" validate:"required"`
	Amount     int64     `json:"amount" validate:"required,gt=0"`
}

// CreateDonation opens a checkout: a pending donation plus a gateway token.
func CreateDonation(svc *donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
			return
		}

		var req createDonationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), donations.CreateParams{
			UserID:     userID,
			UserName:   middleware.UserNameFromContext(r.Context()),
			UserEmail:  middleware.UserEmailFromContext(r.Context()),
			ActivityID: req.ActivityID,
			Amount:     req.Amount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListMyDonations returns the caller's donation history.
func ListMyDonations(svc *donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListMine(r.Context(), donations.ListMineParams{
			UserID: userID,
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetDonation returns one of the caller's donations by order id, used by the
// frontend to poll payment status.
func GetDonation(svc *donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donations service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
			return
		}

		donation, err := svc.GetByOrderID(r.Context(), userID, chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, donation)
	}
}
