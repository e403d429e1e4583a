package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/simasosial/simasosial-backend/api/middleware"
	"github.com/simasosial/simasosial-backend/api/responses"
	"github.com/simasosial/simasosial-backend/api/validators"
	"github.com/simasosial/simasosial-backend/internal/activities"
	"github.com/simasosial/simasosial-backend/pkg/enums"
	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
	"github.com/simasosial/simasosial-backend/pkg/logger"
	"github.com/simasosial/simasosial-backend/pkg/pagination"
)

type createActivityRequest struct {
	Title             string     `json:"title" validate:"required,min=3,max=200"`
	Type              string     `json:"type" validate:"required,oneof=volunteer donation"`
	Description       *string    `json:"description,omitempty"`
	Location          *string    `json:"location,omitempty"`
	ImageURL          *string    `json:"image_url,omitempty"`
	StartsAt          *time.Time `json:"starts_at,omitempty"`
	DonationTarget    int64      `json:"donation_target,omitempty"`
	ParticipantTarget int        `json:"participant_target,omitempty"`
	ContributionHours int        `json:"contribution_hours,omitempty"`
}

// CreateActivity registers a new draft activity. Admin only.
func CreateActivity(svc *activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activities service unavailable"))
			return
		}

		var req createActivityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		activityType, err := enums.ParseActivityType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid activity type"))
			return
		}

		activity, err := svc.Create(r.Context(), activities.CreateParams{
			Title:             req.Title,
			Type:              activityType,
			Description:       req.Description,
			Location:          req.Location,
			ImageURL:          req.ImageURL,
			StartsAt:          req.StartsAt,
			DonationTarget:    req.DonationTarget,
			ParticipantTarget: req.ParticipantTarget,
			ContributionHours: req.ContributionHours,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, activity)
	}
}

type updateActivityRequest struct {
	Title             *string    `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description       *string    `json:"description,omitempty"`
	Location          *string    `json:"location,omitempty"`
	ImageURL          *string    `json:"image_url,omitempty"`
	StartsAt          *time.Time `json:"starts_at,omitempty"`
	DonationTarget    *int64     `json:"donation_target,omitempty"`
	ParticipantTarget *int       `json:"participant_target,omitempty"`
	ContributionHours *int       `json:"contribution_hours,omitempty"`
	Status            *string    `json:"status,omitempty" validate:"omitempty,oneof=draft published archived"`
}

// UpdateActivity edits an activity, including publishing it. Admin only.
func UpdateActivity(svc *activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activities service unavailable"))
			return
		}

		activityID, err := validators.ParsePathUUID(chi.URLParam(r, "activityId"), "activityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateActivityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := activities.UpdateParams{
			Title:             req.Title,
			Description:       req.Description,
			Location:          req.Location,
			ImageURL:          req.ImageURL,
			StartsAt:          req.StartsAt,
			DonationTarget:    req.DonationTarget,
			ParticipantTarget: req.ParticipantTarget,
			ContributionHours: req.ContributionHours,
		}
		if req.Status != nil {
			status, err := enums.ParseActivityStatus(*req.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			params.Status = &status
		}

		activity, err := svc.Update(r.Context(), activityID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, activity)
	}
}

// DeleteActivity removes a draft or archived activity. Admin only.
func DeleteActivity(svc *activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activities service unavailable"))
			return
		}

		activityID, err := validators.ParsePathUUID(chi.URLParam(r, "activityId"), "activityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), activityID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"id": activityID.String()})
	}
}

// ListActivities returns the catalog. Students see published activities only;
// admins may filter by status.
func ListActivities(svc *activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activities service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := activities.CatalogParams{
			Limit:     limit,
			Cursor:    strings.TrimSpace(r.URL.Query().Get("cursor")),
			AdminView: middleware.RoleFromContext(r.Context()) == string(enums.UserRoleAdmin),
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			activityType, err := enums.ParseActivityType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type filter"))
				return
			}
			params.Type = &activityType
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" && params.AdminView {
			status, err := enums.ParseActivityStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			params.Status = &status
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetActivity returns a single activity.
func GetActivity(svc *activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activities service unavailable"))
			return
		}

		activityID, err := validators.ParsePathUUID(chi.URLParam(r, "activityId"), "activityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		activity, err := svc.Get(r.Context(), activityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, activity)
	}
}

// RegisterForActivity signs the caller up as a volunteer.
func RegisterForActivity(svc *activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activities service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
			return
		}

		activityID, err := validators.ParsePathUUID(chi.URLParam(r, "activityId"), "activityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		registration, err := svc.Register(r.Context(), userID, activityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, registration)
	}
}

// ListActivityRegistrations lists every sign-up for an activity. Admin only.
func ListActivityRegistrations(svc *activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activities service unavailable"))
			return
		}

		activityID, err := validators.ParsePathUUID(chi.URLParam(r, "activityId"), "activityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		registrations, err := svc.ListRegistrations(r.Context(), activityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, registrations)
	}
}

type markAttendanceRequest struct {
	Attendance string `json:"attendance" validate:"required,oneof=attended absent"`
}

// MarkAttendance records whether a registered volunteer showed up. Admin only.
func MarkAttendance(svc *activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activities service unavailable"))
			return
		}

		activityID, err := validators.ParsePathUUID(chi.URLParam(r, "activityId"), "activityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		registrationID, err := validators.ParsePathUUID(chi.URLParam(r, "registrationId"), "registrationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req markAttendanceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseAttendanceStatus(req.Attendance)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid attendance"))
			return
		}

		if err := svc.MarkAttendance(r.Context(), activityID, registrationID, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"attendance": string(status)})
	}
}

// ListMyRegistrations returns the caller's volunteer history.
func ListMyRegistrations(svc *activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activities service unavailable"))
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
			return
		}

		registrations, err := svc.ListMyRegistrations(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, registrations)
	}
}
