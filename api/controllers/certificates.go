package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/simasosial/simasosial-backend/api/middleware"
	"github.com/simasosial/simasosial-backend/api/responses"
	"github.com/simasosial/simasosial-backend/api/validators"
	"github.com/simasosial/simasosial-backend/internal/certificates"
	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
	"github.com/simasosial/simasosial-backend/pkg/logger"
)

type issueCertificateRequest struct {
	UserID     uuid.UUID `json:"user_id" validate:"required"`
	ActivityID uuid.UUID `json:"activity_id" validate:"required"`
}

// IssueCertificate issues an attendance certificate. Admin only.
func IssueCertificate(svc *certificates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certificates service unavailable"))
			return
		}

		var req issueCertificateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		certificate, err := svc.Issue(r.Context(), req.UserID, req.ActivityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, certificate)
	}
}

// IssueActivityCertificates issues certificates for every attended registrant
// of an activity that is not certified yet. Admin only.
func IssueActivityCertificates(svc *certificates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certificates service unavailable"))
			return
		}

		activityID, err := validators.ParsePathUUID(chi.URLParam(r, "activityId"), "activityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.IssueForActivity(r.Context(), activityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// VerifyCertificate resolves a public certificate code. No auth.
func VerifyCertificate(svc *certificates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certificates service unavailable"))
			return
		}

		result, err := svc.Verify(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListMyCertificates returns the caller's certificates.
func ListMyCertificates(svc *certificates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certificates service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
			return
		}

		list, err := svc.ListMine(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
