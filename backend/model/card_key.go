package model

import (
	"sync"
	"time"

	"insightlink/backend/common"
	apperrors "insightlink/backend/common/errors"
	"insightlink/backend/common/i18n"

	"github.com/burugo/thing"
)

// CardKey is a one-time redemption code granting a tier for a fixed number
// of days. Once Used is set the row is immutable.
type CardKey struct {
	thing.BaseModel
	Code         string     `db:"code,index" json:"code"`
	Tier         string     `db:"tier" json:"tier"`
	DurationDays int        `db:"duration_days" json:"duration_days"`
	Used         bool       `db:"used,index" json:"used"`
	UsedBy       int64      `db:"used_by" json:"used_by"`
	UsedAt       *time.Time `db:"used_at" json:"used_at"`
	BatchID      string     `db:"batch_id,index" json:"batch_id"`
}

func (k *CardKey) TableName() string {
	return "card_keys"
}

var CardKeyDB *thing.Thing[*CardKey]

func CardKeyInit() error {
	var err error
	CardKeyDB, err = thing.Use[*CardKey]()
	return err
}

// redeemMu serializes redemption so that a code is consumed at most once.
// The check-and-mark on the used flag must not interleave across requests.
var redeemMu sync.Mutex

// RedemptionResult is what a successful redemption yields.
type RedemptionResult struct {
	Tier         string    `json:"tier"`
	ExpiresAt    time.Time `json:"expires_at"`
	DurationDays int       `json:"duration_days"`
}

// RedeemCardKey consumes a card key for the given user and applies the tier
// upgrade. Both the card and the user mutate, or neither does: if the user
// update fails the card claim is rolled back before returning.
func RedeemCardKey(code string, userID int64, now time.Time, lang string) (*RedemptionResult, error) {
	redeemMu.Lock()
	defer redeemMu.Unlock()

	cards, err := CardKeyDB.Where("code = ?", code).Fetch(0, 1)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, i18n.New(apperrors.ErrCardNotFound, lang)
	}
	card := cards[0]
	if card.Used {
		return nil, i18n.New(apperrors.ErrCardAlreadyUsed, lang)
	}

	user, err := UserDB.ByID(userID)
	if err != nil {
		return nil, i18n.Wrap(err, apperrors.ErrUserNotFound, lang)
	}

	// Stacking: a card for the user's current, still-running tier extends the
	// existing expiry; anything else starts a fresh window from now.
	base := now
	if user.Tier == card.Tier && user.TierExpiresAt != nil && user.TierExpiresAt.After(now) {
		base = *user.TierExpiresAt
	}
	newExpiry := base.AddDate(0, 0, card.DurationDays)

	usedAt := now
	card.Used = true
	card.UsedBy = userID
	card.UsedAt = &usedAt
	if err := CardKeyDB.Save(card); err != nil {
		return nil, err
	}

	user.Tier = card.Tier
	user.TierExpiresAt = &newExpiry
	if err := UserDB.Save(user); err != nil {
		// Release the claim so the code stays redeemable.
		card.Used = false
		card.UsedBy = 0
		card.UsedAt = nil
		if rbErr := CardKeyDB.Save(card); rbErr != nil {
			common.SysError("failed to roll back card claim " + card.Code + ": " + rbErr.Error())
		}
		return nil, err
	}

	return &RedemptionResult{
		Tier:         card.Tier,
		ExpiresAt:    newExpiry,
		DurationDays: card.DurationDays,
	}, nil
}

// GenerateCardKeys creates a batch of unused codes and returns them.
func GenerateCardKeys(count int, tier string, durationDays int, batchID string) ([]*CardKey, error) {
	keys := make([]*CardKey, 0, count)
	for i := 0; i < count; i++ {
		key := &CardKey{
			Code:         common.GetRandomString(24),
			Tier:         tier,
			DurationDays: durationDays,
			BatchID:      batchID,
		}
		if err := CardKeyDB.Save(key); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func GetCardKeys(batchID string, startIdx int, num int) ([]*CardKey, error) {
	if batchID != "" {
		return CardKeyDB.Where("batch_id = ?", batchID).Order("id DESC").Fetch(startIdx, num)
	}
	return CardKeyDB.Order("id DESC").Fetch(startIdx, num)
}

func DeleteCardKeyById(id int64, lang string) error {
	if id == 0 {
		return i18n.New(apperrors.ErrEmptyID, lang)
	}
	card, err := CardKeyDB.ByID(id)
	if err != nil {
		return i18n.Wrap(err, apperrors.ErrCardNotFound, lang)
	}
	return CardKeyDB.Delete(card)
}
