package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/simasosial/simasosial-backend/api/middleware"
	"github.com/simasosial/simasosial-backend/api/responses"
	"github.com/simasosial/simasosial-backend/api/validators"
	"github.com/simasosial/simasosial-backend/internal/reports"
	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
	"github.com/simasosial/simasosial-backend/pkg/logger"
)

// ActivityReport returns donation and attendance aggregates for one
// activity. Admin only.
func ActivityReport(svc *reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		activityID, err := validators.ParsePathUUID(chi.URLParam(r, "activityId"), "activityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.ActivityReport(r.Context(), activityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// PlatformReport returns platform-wide aggregates. Admin only.
func PlatformReport(svc *reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		report, err := svc.PlatformReport(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func reportPeriodFromQuery(r *http.Request) (reports.PeriodParams, error) {
	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return reports.PeriodParams{}, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return reports.PeriodParams{}, err
	}
	activityID, err := validators.ParseQueryUUID(r, "activity_id")
	if err != nil {
		return reports.PeriodParams{}, err
	}
	return reports.PeriodParams{From: from, To: to, ActivityID: activityID}, nil
}

// DonationReport lists verified donations for a period, optionally scoped to
// one activity. Admin only.
func DonationReport(svc *reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		params, err := reportPeriodFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.DonationReport(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// VolunteerReport lists volunteer registrations for a period, optionally
// scoped to one activity. Admin only.
func VolunteerReport(svc *reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		params, err := reportPeriodFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.VolunteerReport(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// MyContribution returns the caller's contribution aggregates.
func MyContribution(svc *reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
			return
		}

		contribution, err := svc.MyContribution(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contribution)
	}
}
