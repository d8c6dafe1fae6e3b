package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hindusthan/agriserve/internal/database/testutil"
	"github.com/hindusthan/agriserve/internal/models"
	"github.com/hindusthan/agriserve/internal/services"
)

func TestCleanerRunOncePurgesExpiredCodes(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	otps, err := services.NewOTPService(db, nil)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.OneTimeCode{
		Email:     "stale@example.com",
		Code:      "111111",
		ExpiresAt: now.Add(-time.Minute),
	}).Error)
	require.NoError(t, db.Create(&models.OneTimeCode{
		Email:     "fresh@example.com",
		Code:      "222222",
		ExpiresAt: now.Add(time.Minute),
	}).Error)

	cleaner, err := NewCleaner(otps, WithNow(func() time.Time { return now }))
	require.NoError(t, err)

	require.NoError(t, cleaner.RunOnce(context.Background()))

	var remaining []models.OneTimeCode
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, "fresh@example.com", remaining[0].Email)
}

func TestCleanerRequiresOTPService(t *testing.T) {
	_, err := NewCleaner(nil)
	require.Error(t, err)
}

func TestCleanerRejectsBadSchedule(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	otps, err := services.NewOTPService(db, nil)
	require.NoError(t, err)

	cleaner, err := NewCleaner(otps, WithPurgeSchedule("not-a-spec"))
	require.NoError(t, err)

	require.Error(t, cleaner.Start())
}
