package service

import (
	"fmt"
	"time"

	"insightlink/backend/common"
	"insightlink/backend/model"
)

// RedeemCard redeems a one-time code for the given user: the card is
// consumed, the user's tier and expiry move, a payment audit row is written.
// Failure modes surface as i18n errors (not-found, already-used).
func RedeemCard(code string, userID int64, now time.Time, lang string) (*model.RedemptionResult, error) {
	result, err := model.RedeemCardKey(code, userID, now, lang)
	if err != nil {
		model.RecordAudit(userID, model.AuditActionRedeem, "card", model.AuditLevelWarn,
			fmt.Sprintf("redemption rejected: %v", err))
		return nil, err
	}

	// Bookkeeping only; card redemptions carry no money.
	payment := &model.Payment{
		UserID:       userID,
		Type:         model.PaymentTypeCard,
		AmountCents:  0,
		Tier:         result.Tier,
		DurationDays: result.DurationDays,
		Reference:    code,
	}
	if err := model.CreatePayment(payment); err != nil {
		common.SysError("failed to record card payment entry: " + err.Error())
	}

	model.RecordAudit(userID, model.AuditActionRedeem, "card", model.AuditLevelInfo,
		fmt.Sprintf("tier %s for %d days, expires %s", result.Tier, result.DurationDays, common.FormatTime(result.ExpiresAt)))
	return result, nil
}
