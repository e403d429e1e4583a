package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simasosial/simasosial-backend/pkg/enums"
)

// Repository runs the aggregate queries behind the reporting endpoints. All
// reads, no writes.
type Repository interface {
	DonationSummary(ctx context.Context, activityID uuid.UUID) (*DonationSummaryRow, error)
	AttendanceSummary(ctx context.Context, activityID uuid.UUID) (*AttendanceSummaryRow, error)
	PlatformSummary(ctx context.Context) (*PlatformSummaryRow, error)
	UserContribution(ctx context.Context, userID uuid.UUID) (*UserContributionRow, error)
	DonationRows(ctx context.Context, period ReportPeriod) ([]DonationReportRow, error)
	VolunteerRows(ctx context.Context, period ReportPeriod) ([]VolunteerReportRow, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a reports repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// DonationSummaryRow aggregates verified donations for one activity.
type DonationSummaryRow struct {
	TotalVerified int64 `json:"total_verified"`
	DonationCount int64 `json:"donation_count"`
	DonorCount    int64 `json:"donor_count"`
}

// AttendanceSummaryRow counts registrations per attendance status.
type AttendanceSummaryRow struct {
	Registered int64 `json:"registered"`
	Attended   int64 `json:"attended"`
	Absent     int64 `json:"absent"`
}

// PlatformSummaryRow aggregates across the whole platform.
type PlatformSummaryRow struct {
	ActivityCount      int64 `json:"activity_count"`
	TotalRaised        int64 `json:"total_raised"`
	VerifiedDonations  int64 `json:"verified_donations"`
	TotalRegistrations int64 `json:"total_registrations"`
	CertificatesIssued int64 `json:"certificates_issued"`
}

// UserContributionRow aggregates one student's social footprint.
type UserContributionRow struct {
	TotalDonated       int64 `json:"total_donated"`
	VerifiedDonations  int64 `json:"verified_donations"`
	ActivitiesAttended int64 `json:"activities_attended"`
	ContributionHours  int64 `json:"contribution_hours"`
}

// ReportPeriod bounds the row-level reports. Until is exclusive.
type ReportPeriod struct {
	From       time.Time
	Until      time.Time
	ActivityID *uuid.UUID
}

// DonationReportRow is one verified donation in the admin donation report.
type DonationReportRow struct {
	OrderID       string    `json:"order_id"`
	DonorName     string    `json:"donor_name"`
	ActivityTitle string    `json:"activity_title"`
	Amount        int64     `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}

// VolunteerReportRow is one registration in the admin volunteer report.
type VolunteerReportRow struct {
	VolunteerName string                 `json:"volunteer_name"`
	StudentID     string                 `json:"student_id"`
	ActivityTitle string                 `json:"activity_title"`
	Attendance    enums.AttendanceStatus `json:"attendance"`
	RegisteredAt  time.Time              `json:"registered_at"`
}

func (r *repositoryImpl) DonationSummary(ctx context.Context, activityID uuid.UUID) (*DonationSummaryRow, error) {
	var row DonationSummaryRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(amount), 0)        AS total_verified,
		       COUNT(*)                        AS donation_count,
		       COUNT(DISTINCT user_id)         AS donor_count
		FROM donations
		WHERE activity_id = ? AND status = ?`, activityID, enums.DonationStatusVerified).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) AttendanceSummary(ctx context.Context, activityID uuid.UUID) (*AttendanceSummaryRow, error) {
	var row AttendanceSummaryRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FILTER (WHERE attendance = 'registered') AS registered,
		       COUNT(*) FILTER (WHERE attendance = 'attended')   AS attended,
		       COUNT(*) FILTER (WHERE attendance = 'absent')     AS absent
		FROM activity_registrations
		WHERE activity_id = ?`, activityID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) PlatformSummary(ctx context.Context) (*PlatformSummaryRow, error) {
	var row PlatformSummaryRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT (SELECT COUNT(*) FROM activities)                                   AS activity_count,
		       (SELECT COALESCE(SUM(amount_raised), 0) FROM activities)            AS total_raised,
		       (SELECT COUNT(*) FROM donations WHERE status = 'verified')          AS verified_donations,
		       (SELECT COUNT(*) FROM activity_registrations)                       AS total_registrations,
		       (SELECT COUNT(*) FROM certificates)                                 AS certificates_issued`).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) DonationRows(ctx context.Context, period ReportPeriod) ([]DonationReportRow, error) {
	query := r.db.WithContext(ctx).
		Table("donations d").
		Select("d.order_id, u.name AS donor_name, a.title AS activity_title, d.amount, d.created_at").
		Joins("JOIN users u ON u.id = d.user_id").
		Joins("JOIN activities a ON a.id = d.activity_id").
		Where("d.status = ?", enums.DonationStatusVerified).
		Where("d.created_at >= ? AND d.created_at < ?", period.From, period.Until).
		Order("d.created_at ASC")
	if period.ActivityID != nil {
		query = query.Where("d.activity_id = ?", *period.ActivityID)
	}

	var rows []DonationReportRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) VolunteerRows(ctx context.Context, period ReportPeriod) ([]VolunteerReportRow, error) {
	query := r.db.WithContext(ctx).
		Table("activity_registrations reg").
		Select("u.name AS volunteer_name, u.student_id, a.title AS activity_title, reg.attendance, reg.registered_at").
		Joins("JOIN users u ON u.id = reg.user_id").
		Joins("JOIN activities a ON a.id = reg.activity_id").
		Where("reg.registered_at >= ? AND reg.registered_at < ?", period.From, period.Until).
		Order("reg.registered_at ASC")
	if period.ActivityID != nil {
		query = query.Where("reg.activity_id = ?", *period.ActivityID)
	}

	var rows []VolunteerReportRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) UserContribution(ctx context.Context, userID uuid.UUID) (*UserContributionRow, error) {
	var row UserContributionRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT (SELECT COALESCE(SUM(amount), 0) FROM donations
		          WHERE user_id = @user AND status = 'verified')                   AS total_donated,
		       (SELECT COUNT(*) FROM donations
		          WHERE user_id = @user AND status = 'verified')                   AS verified_donations,
		       (SELECT COUNT(*) FROM activity_registrations
		          WHERE user_id = @user AND attendance = 'attended')               AS activities_attended,
		       (SELECT COALESCE(SUM(a.contribution_hours), 0)
		          FROM activity_registrations r
		          JOIN activities a ON a.id = r.activity_id
		          WHERE r.user_id = @user AND r.attendance = 'attended')           AS contribution_hours`,
		map[string]any{"user": userID}).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
