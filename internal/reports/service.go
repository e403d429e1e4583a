package reports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/simasosial/simasosial-backend/pkg/db/models"
	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
)

type activityReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
}

type ServiceParams struct {
	Repo         Repository
	ActivityRepo activityReader
}

type Service struct {
	repo         Repository
	activityRepo activityReader
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reports repo required")
	}
	if params.ActivityRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "activities repo required")
	}
	return &Service{repo: params.Repo, activityRepo: params.ActivityRepo}, nil
}

// ActivityReport combines donation and attendance aggregates for one activity.
type ActivityReport struct {
	Activity   *models.Activity      `json:"activity"`
	Donations  *DonationSummaryRow   `json:"donations"`
	Attendance *AttendanceSummaryRow `json:"attendance"`
}

// ActivityReport builds the per-activity report. Admin only.
func (s *Service) ActivityReport(ctx context.Context, activityID uuid.UUID) (*ActivityReport, error) {
	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load activity")
	}
	if activity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "activity not found")
	}

	donations, err := s.repo.DonationSummary(ctx, activityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "donation summary")
	}
	attendance, err := s.repo.AttendanceSummary(ctx, activityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attendance summary")
	}

	return &ActivityReport{
		Activity:   activity,
		Donations:  donations,
		Attendance: attendance,
	}, nil
}

// PeriodParams bounds a row-level report. To is inclusive by day, so a
// report for a single day passes the same date twice.
type PeriodParams struct {
	From       time.Time
	To         time.Time
	ActivityID *uuid.UUID
}

func (s *Service) resolvePeriod(ctx context.Context, params PeriodParams) (ReportPeriod, error) {
	if params.From.IsZero() || params.To.IsZero() {
		return ReportPeriod{}, pkgerrors.New(pkgerrors.CodeValidation, "from and to dates required")
	}
	if params.From.After(params.To) {
		return ReportPeriod{}, pkgerrors.New(pkgerrors.CodeValidation, "from date must not be after to date")
	}
	if params.ActivityID != nil {
		activity, err := s.activityRepo.FindByID(ctx, *params.ActivityID)
		if err != nil {
			return ReportPeriod{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load activity")
		}
		if activity == nil {
			return ReportPeriod{}, pkgerrors.New(pkgerrors.CodeNotFound, "activity not found")
		}
	}
	return ReportPeriod{
		From:       params.From,
		Until:      params.To.AddDate(0, 0, 1),
		ActivityID: params.ActivityID,
	}, nil
}

// DonationReportResult lists verified donations in a period with their total.
type DonationReportResult struct {
	Items []DonationReportRow `json:"items"`
	Count int                 `json:"count"`
	Total int64               `json:"total"`
}

// DonationReport lists verified donations received in the period, optionally
// scoped to one activity. Admin only.
func (s *Service) DonationReport(ctx context.Context, params PeriodParams) (*DonationReportResult, error) {
	period, err := s.resolvePeriod(ctx, params)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.DonationRows(ctx, period)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "donation report")
	}

	result := &DonationReportResult{Items: rows, Count: len(rows)}
	for i := range rows {
		result.Total += rows[i].Amount
	}
	return result, nil
}

// VolunteerReportResult lists registrations in a period.
type VolunteerReportResult struct {
	Items []VolunteerReportRow `json:"items"`
	Count int                  `json:"count"`
}

// VolunteerReport lists volunteer registrations made in the period,
// optionally scoped to one activity. Admin only.
func (s *Service) VolunteerReport(ctx context.Context, params PeriodParams) (*VolunteerReportResult, error) {
	period, err := s.resolvePeriod(ctx, params)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.VolunteerRows(ctx, period)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "volunteer report")
	}
	return &VolunteerReportResult{Items: rows, Count: len(rows)}, nil
}

// PlatformReport returns platform-wide aggregates. Admin only.
func (s *Service) PlatformReport(ctx context.Context) (*PlatformSummaryRow, error) {
	summary, err := s.repo.PlatformSummary(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "platform summary")
	}
	return summary, nil
}

// MyContribution returns the caller's own contribution aggregates.
func (s *Service) MyContribution(ctx context.Context, userID uuid.UUID) (*UserContributionRow, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	contribution, err := s.repo.UserContribution(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "user contribution")
	}
	return contribution, nil
}
