package service

import (
	"testing"
	"time"

	"insightlink/backend/common"
	apperrors "insightlink/backend/common/errors"
	"insightlink/backend/model"

	"github.com/burugo/thing"
	"github.com/burugo/thing/drivers/db/sqlite"
	"github.com/stretchr/testify/assert"
)

// setupTestDB wires the ORM to a fresh in-memory database and reinitializes
// every model handle against it. Shared by the service tests that touch
// persistence.
func setupTestDB(t *testing.T) {
	t.Helper()
	dbAdapter, err := sqlite.NewSQLiteAdapter(":memory:")
	assert.NoError(t, err)
	thing.Configure(dbAdapter, nil)

	assert.NoError(t, model.UserInit())
	assert.NoError(t, model.OptionInit())
	assert.NoError(t, model.FileInit())
	assert.NoError(t, model.LinkInit())
	assert.NoError(t, model.VisitInit())
	assert.NoError(t, model.CardKeyInit())
	assert.NoError(t, model.PlanInit())
	assert.NoError(t, model.PaymentInit())
	assert.NoError(t, model.AuditLogInit())

	err = thing.AutoMigrate(
		&model.User{}, &model.Option{}, &model.File{}, &model.Link{},
		&model.Visit{}, &model.CardKey{}, &model.Plan{}, &model.Payment{},
		&model.AuditLog{},
	)
	assert.NoError(t, err)
}

func newTestUser(t *testing.T, tier string, expiresAt *time.Time) *model.User {
	t.Helper()
	user := &model.User{
		Username:      "user-" + common.GetRandomString(8),
		Password:      "irrelevant",
		Role:          common.RoleCommonUser,
		Status:        common.UserStatusEnabled,
		Tier:          tier,
		TierExpiresAt: expiresAt,
	}
	assert.NoError(t, model.UserDB.Save(user))
	return user
}

func createFileFor(t *testing.T, user *model.User, size int64) *model.File {
	t.Helper()
	file := &model.File{
		UserID:      user.ID,
		Name:        "f-" + common.GetRandomString(6),
		Size:        size,
		ContentType: "application/octet-stream",
		StorageKey:  "k-" + common.GetRandomString(6),
	}
	assert.NoError(t, model.FileDB.Save(file))
	return file
}

func TestCheckFileCount_FreeTierBoundary(t *testing.T) {
	setupTestDB(t)
	guard := NewQuotaGuard(NewLimitsProvider(emptyFetcher))
	now := time.Now()
	user := newTestUser(t, model.TierFree, nil)

	// FREE allows 2 files: below the limit both pass.
	result, err := guard.CheckFileCount(user, now, "en")
	assert.NoError(t, err)
	assert.True(t, result.Allowed)

	createFileFor(t, user, 10)
	result, err = guard.CheckFileCount(user, now, "en")
	assert.NoError(t, err)
	assert.True(t, result.Allowed)

	// At the limit the check denies.
	createFileFor(t, user, 10)
	result, err = guard.CheckFileCount(user, now, "en")
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, apperrors.ErrQuotaFiles, result.Code)
	assert.Equal(t, int64(2), result.Current)
	assert.Equal(t, int64(2), result.Limit)
}

func TestCheckFileCount_ProAllowsMore(t *testing.T) {
	setupTestDB(t)
	guard := NewQuotaGuard(NewLimitsProvider(emptyFetcher))
	now := time.Now()
	user := newTestUser(t, model.TierPro, timePtr(now.Add(24*time.Hour)))

	createFileFor(t, user, 10)
	createFileFor(t, user, 10)
	result, err := guard.CheckFileCount(user, now, "en")
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestCheckFileCount_LapsedTierUsesFreeLimits(t *testing.T) {
	setupTestDB(t)
	guard := NewQuotaGuard(NewLimitsProvider(emptyFetcher))
	now := time.Now()
	user := newTestUser(t, model.TierPro, timePtr(now.Add(-time.Hour)))

	createFileFor(t, user, 10)
	createFileFor(t, user, 10)
	result, err := guard.CheckFileCount(user, now, "en")
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, apperrors.ErrQuotaFiles, result.Code)
}

func TestCheckFileCount_BlockedUserDeniedOutright(t *testing.T) {
	setupTestDB(t)
	guard := NewQuotaGuard(NewLimitsProvider(emptyFetcher))
	user := newTestUser(t, model.TierMax, nil)
	user.Status = common.UserStatusBlocked
	assert.NoError(t, model.UserDB.Save(user))

	result, err := guard.CheckFileCount(user, time.Now(), "en")
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, apperrors.ErrUserBlocked, result.Code)
}

func TestCheckStorage_ExactHeadroomAllowed(t *testing.T) {
	setupTestDB(t)
	guard := NewQuotaGuard(NewLimitsProvider(emptyFetcher))
	now := time.Now()
	user := newTestUser(t, model.TierFree, nil)
	limit := guard.Limits.GetTierLimits(model.TierFree).MaxStorageBytes
	user.StorageUsed = limit - 100

	// Filling to exactly the limit is allowed.
	result, err := guard.CheckStorage(user, 100, 0, now, "en")
	assert.NoError(t, err)
	assert.True(t, result.Allowed)

	// One byte over is not.
	result, err = guard.CheckStorage(user, 101, 0, now, "en")
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, apperrors.ErrQuotaStorage, result.Code)
}

func TestCheckStorage_ReclaimedBytesLowerTheBaseline(t *testing.T) {
	setupTestDB(t)
	guard := NewQuotaGuard(NewLimitsProvider(emptyFetcher))
	now := time.Now()
	user := newTestUser(t, model.TierFree, nil)
	limit := guard.Limits.GetTierLimits(model.TierFree).MaxStorageBytes
	user.StorageUsed = limit

	// A replacement that releases as much as it adds fits even at the cap.
	result, err := guard.CheckStorage(user, 500, 500, now, "en")
	assert.NoError(t, err)
	assert.True(t, result.Allowed)

	// Reclaiming more than the counter shows clamps the baseline at zero
	// instead of going negative.
	result, err = guard.CheckStorage(user, limit, limit*2, now, "en")
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestCheckStorage_UnlimitedTierSkipsCounting(t *testing.T) {
	setupTestDB(t)
	guard := NewQuotaGuard(NewLimitsProvider(emptyFetcher))
	user := newTestUser(t, model.TierMax, nil)
	user.StorageUsed = int64(1) << 50

	result, err := guard.CheckStorage(user, int64(1)<<50, 0, time.Now(), "en")
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestCheckFileSize(t *testing.T) {
	setupTestDB(t)
	guard := NewQuotaGuard(NewLimitsProvider(emptyFetcher))
	now := time.Now()
	user := newTestUser(t, model.TierFree, nil)
	limit := guard.Limits.GetTierLimits(model.TierFree).MaxFileSizeBytes

	result, err := guard.CheckFileSize(user, limit, now, "en")
	assert.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = guard.CheckFileSize(user, limit+1, now, "en")
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, apperrors.ErrQuotaFileSize, result.Code)
}

func TestCheckLinkCount(t *testing.T) {
	setupTestDB(t)
	guard := NewQuotaGuard(NewLimitsProvider(emptyFetcher))
	now := time.Now()
	user := newTestUser(t, model.TierFree, nil)
	file := createFileFor(t, user, 10)

	for i := 0; i < 3; i++ {
		result, err := guard.CheckLinkCount(user, file.ID, now, "en")
		assert.NoError(t, err)
		assert.True(t, result.Allowed, "link %d should be allowed", i+1)
		link := &model.Link{
			FileID: file.ID,
			UserID: user.ID,
			Slug:   common.GetRandomString(8),
			Active: true,
		}
		assert.NoError(t, model.LinkDB.Save(link))
	}

	result, err := guard.CheckLinkCount(user, file.ID, now, "en")
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, apperrors.ErrQuotaLinks, result.Code)
	assert.Equal(t, int64(3), result.Current)
}

func TestCheckLinkCount_ProIsUnlimited(t *testing.T) {
	setupTestDB(t)
	guard := NewQuotaGuard(NewLimitsProvider(emptyFetcher))
	now := time.Now()
	user := newTestUser(t, model.TierPro, nil)
	file := createFileFor(t, user, 10)

	result, err := guard.CheckLinkCount(user, file.ID, now, "en")
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestQuotaDenialsAreAudited(t *testing.T) {
	setupTestDB(t)
	guard := NewQuotaGuard(NewLimitsProvider(emptyFetcher))
	now := time.Now()
	user := newTestUser(t, model.TierFree, nil)
	createFileFor(t, user, 10)
	createFileFor(t, user, 10)

	result, err := guard.CheckFileCount(user, now, "en")
	assert.NoError(t, err)
	assert.False(t, result.Allowed)

	logs, total, err := model.GetAuditLogs(model.AuditActionQuotaDeny, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, user.ID, logs[0].ActorID)
}
