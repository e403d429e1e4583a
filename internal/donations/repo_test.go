package donations

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
)

func setupDonationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	donations := `
CREATE TABLE IF NOT EXISTS donations (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  activity_id TEXT NOT NULL,
  amount INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME
);`
	require.NoError(t, db.Exec(donations).Error)
	return db
}

func newDonation(t *testing.T, db *gorm.DB, userID uuid.UUID, status enums.DonationStatus, created time.Time) *models.Donation {
	t.Helper()

	donation := &models.Donation{
		ID:         uuid.New(),
		OrderID:    fmt.Sprintf("SIMA-DONASI-%s", uuid.NewString()),
		UserID:     userID,
		ActivityID: uuid.New(),
		Amount:     50000,
		Status:     status,
		CreatedAt:  created,
	}
	require.NoError(t, db.Create(donation).Error)
	return donation
}

func TestRepositoryUpdateStatusIf_transitionsOnce(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	donation := newDonation(t, db, uuid.New(), enums.DonationStatusPending, time.Now())

	updated, err := repo.UpdateStatusIf(ctx, donation.OrderID, enums.DonationStatusPending, enums.DonationStatusVerified)
	require.NoError(t, err)
	assert.True(t, updated)

	// A redelivered confirmation finds no pending row to flip.
	updated, err = repo.UpdateStatusIf(ctx, donation.OrderID, enums.DonationStatusPending, enums.DonationStatusVerified)
	require.NoError(t, err)
	assert.False(t, updated)

	stored, err := repo.FindByOrderID(ctx, donation.OrderID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, enums.DonationStatusVerified, stored.Status)
}

func TestRepositoryUpdateStatusIf_unknownOrder(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)

	updated, err := repo.UpdateStatusIf(context.Background(), "SIMA-DONASI-missing", enums.DonationStatusPending, enums.DonationStatusVerified)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestRepositoryUpdateStatusIf_doesNotRevertVerified(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	donation := newDonation(t, db, uuid.New(), enums.DonationStatusVerified, time.Now())

	// A stale expiry notification must not undo a settled donation.
	updated, err := repo.UpdateStatusIf(ctx, donation.OrderID, enums.DonationStatusPending, enums.DonationStatusFailed)
	require.NoError(t, err)
	assert.False(t, updated)

	stored, err := repo.FindByOrderID(ctx, donation.OrderID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, enums.DonationStatusVerified, stored.Status)
}

func TestRepositoryVerifiedTotalByUser(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	newDonation(t, db, userID, enums.DonationStatusVerified, time.Now())
	newDonation(t, db, userID, enums.DonationStatusVerified, time.Now())
	// Pending rows and other donors stay out of the total.
	newDonation(t, db, userID, enums.DonationStatusPending, time.Now())
	newDonation(t, db, uuid.New(), enums.DonationStatusVerified, time.Now())

	total, err := repo.VerifiedTotalByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), total)

	total, err = repo.VerifiedTotalByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRepositoryListByUser_pagination(t *testing.T) {
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	oldest := newDonation(t, db, userID, enums.DonationStatusVerified, base)
	middle := newDonation(t, db, userID, enums.DonationStatusVerified, base.Add(time.Minute))
	newest := newDonation(t, db, userID, enums.DonationStatusPending, base.Add(2*time.Minute))

	rows, next, err := repo.ListByUser(ctx, userID, 2, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newest.OrderID, rows[0].OrderID)
	assert.Equal(t, middle.OrderID, rows[1].OrderID)
	require.NotNil(t, next)

	rows, next, err = repo.ListByUser(ctx, userID, 2, next)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, oldest.OrderID, rows[0].OrderID)
	assert.Nil(t, next)
}
