package model

import (
	"sync"
	"testing"
	"time"

	"insightlink/backend/common"
	apperrors "insightlink/backend/common/errors"
	"insightlink/backend/common/i18n"

	"github.com/burugo/thing"
	"github.com/burugo/thing/drivers/db/sqlite"
	"github.com/stretchr/testify/assert"
)

func setupCardTestDB(t *testing.T) {
	t.Helper()
	dbAdapter, err := sqlite.NewSQLiteAdapter(":memory:")
	assert.NoError(t, err)
	thing.Configure(dbAdapter, nil)
	assert.NoError(t, UserInit())
	assert.NoError(t, CardKeyInit())
	assert.NoError(t, AuditLogInit())
	assert.NoError(t, thing.AutoMigrate(&User{}, &CardKey{}, &AuditLog{}))
}

func saveTestUser(t *testing.T, tier string, expiresAt *time.Time) *User {
	t.Helper()
	user := &User{
		Username:      "u-" + common.GetRandomString(8),
		Password:      "hash",
		Role:          common.RoleCommonUser,
		Status:        common.UserStatusEnabled,
		Tier:          tier,
		TierExpiresAt: expiresAt,
	}
	assert.NoError(t, UserDB.Save(user))
	return user
}

func saveTestCard(t *testing.T, tier string, days int) *CardKey {
	t.Helper()
	card := &CardKey{
		Code:         common.GetRandomString(24),
		Tier:         tier,
		DurationDays: days,
		BatchID:      "test-batch",
	}
	assert.NoError(t, CardKeyDB.Save(card))
	return card
}

func TestRedeemCardKey_NotFound(t *testing.T) {
	setupCardTestDB(t)
	user := saveTestUser(t, TierFree, nil)

	_, err := RedeemCardKey("does-not-exist", user.ID, time.Now(), "en")
	assert.Error(t, err)
	assert.True(t, i18n.IsErrorCode(err, apperrors.ErrCardNotFound))
}

func TestRedeemCardKey_FreshUpgrade(t *testing.T) {
	setupCardTestDB(t)
	now := time.Now()
	user := saveTestUser(t, TierFree, nil)
	card := saveTestCard(t, TierPro, 30)

	result, err := RedeemCardKey(card.Code, user.ID, now, "en")
	assert.NoError(t, err)
	assert.Equal(t, TierPro, result.Tier)
	assert.WithinDuration(t, now.AddDate(0, 0, 30), result.ExpiresAt, time.Second)

	updated, err := UserDB.ByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, TierPro, updated.Tier)
	assert.NotNil(t, updated.TierExpiresAt)

	claimed, err := CardKeyDB.ByID(card.ID)
	assert.NoError(t, err)
	assert.True(t, claimed.Used)
	assert.Equal(t, user.ID, claimed.UsedBy)
	assert.NotNil(t, claimed.UsedAt)
}

func TestRedeemCardKey_AlreadyUsed(t *testing.T) {
	setupCardTestDB(t)
	now := time.Now()
	first := saveTestUser(t, TierFree, nil)
	second := saveTestUser(t, TierFree, nil)
	card := saveTestCard(t, TierPro, 30)

	_, err := RedeemCardKey(card.Code, first.ID, now, "en")
	assert.NoError(t, err)

	_, err = RedeemCardKey(card.Code, second.ID, now, "en")
	assert.Error(t, err)
	assert.True(t, i18n.IsErrorCode(err, apperrors.ErrCardAlreadyUsed))

	// The second user must be untouched.
	unchanged, err := UserDB.ByID(second.ID)
	assert.NoError(t, err)
	assert.Equal(t, TierFree, unchanged.Tier)
}

func TestRedeemCardKey_SameTierStacks(t *testing.T) {
	setupCardTestDB(t)
	now := time.Now()
	existing := now.AddDate(0, 0, 10)
	user := saveTestUser(t, TierPro, &existing)
	card := saveTestCard(t, TierPro, 30)

	result, err := RedeemCardKey(card.Code, user.ID, now, "en")
	assert.NoError(t, err)
	// 10 remaining days plus 30 from the card.
	assert.WithinDuration(t, now.AddDate(0, 0, 40), result.ExpiresAt, time.Second)
}

func TestRedeemCardKey_LapsedTierStartsFromNow(t *testing.T) {
	setupCardTestDB(t)
	now := time.Now()
	lapsed := now.AddDate(0, 0, -5)
	user := saveTestUser(t, TierPro, &lapsed)
	card := saveTestCard(t, TierPro, 30)

	result, err := RedeemCardKey(card.Code, user.ID, now, "en")
	assert.NoError(t, err)
	assert.WithinDuration(t, now.AddDate(0, 0, 30), result.ExpiresAt, time.Second)
}

func TestRedeemCardKey_DifferentTierReplacesFromNow(t *testing.T) {
	setupCardTestDB(t)
	now := time.Now()
	existing := now.AddDate(0, 0, 100)
	user := saveTestUser(t, TierPro, &existing)
	card := saveTestCard(t, TierMax, 30)

	result, err := RedeemCardKey(card.Code, user.ID, now, "en")
	assert.NoError(t, err)
	assert.Equal(t, TierMax, result.Tier)
	// A different tier never stacks onto the old expiry.
	assert.WithinDuration(t, now.AddDate(0, 0, 30), result.ExpiresAt, time.Second)
}

func TestRedeemCardKey_ConcurrentSingleWinner(t *testing.T) {
	setupCardTestDB(t)
	now := time.Now()
	card := saveTestCard(t, TierPro, 30)

	const workers = 10
	users := make([]*User, workers)
	for i := range users {
		users[i] = saveTestUser(t, TierFree, nil)
	}

	var wg sync.WaitGroup
	successes := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(u *User) {
			defer wg.Done()
			if _, err := RedeemCardKey(card.Code, u.ID, now, "en"); err == nil {
				successes <- u.ID
			}
		}(users[i])
	}
	wg.Wait()
	close(successes)

	var winners []int64
	for id := range successes {
		winners = append(winners, id)
	}
	assert.Len(t, winners, 1, "exactly one redemption may succeed")

	claimed, err := CardKeyDB.ByID(card.ID)
	assert.NoError(t, err)
	assert.True(t, claimed.Used)
	assert.Equal(t, winners[0], claimed.UsedBy)
}

func TestGenerateCardKeys(t *testing.T) {
	setupCardTestDB(t)
	keys, err := GenerateCardKeys(5, TierMax, 365, "batch-42")
	assert.NoError(t, err)
	assert.Len(t, keys, 5)

	seen := map[string]bool{}
	for _, key := range keys {
		assert.Len(t, key.Code, 24)
		assert.False(t, key.Used)
		assert.False(t, seen[key.Code], "codes must be unique")
		seen[key.Code] = true
	}

	fetched, err := GetCardKeys("batch-42", 0, 10)
	assert.NoError(t, err)
	assert.Len(t, fetched, 5)
}

// A store failure during the lookup must surface as-is, not masquerade as a
// missing card.
func TestRedeemCardKey_StoreErrorIsNotNotFound(t *testing.T) {
	dbAdapter, err := sqlite.NewSQLiteAdapter(":memory:")
	assert.NoError(t, err)
	thing.Configure(dbAdapter, nil)
	assert.NoError(t, UserInit())
	assert.NoError(t, CardKeyInit())
	assert.NoError(t, AuditLogInit())
	// card_keys is left unmigrated so the code lookup fails at the store.
	assert.NoError(t, thing.AutoMigrate(&User{}, &AuditLog{}))

	_, err = RedeemCardKey("some-code", 1, time.Now(), "en")
	assert.Error(t, err)
	assert.False(t, i18n.IsErrorCode(err, apperrors.ErrCardNotFound))
	assert.False(t, i18n.IsErrorCode(err, apperrors.ErrCardAlreadyUsed))
}
