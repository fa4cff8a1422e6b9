package model

import (
	"github.com/burugo/thing"
)

// Payment types
const (
	PaymentTypeCard = "card"
)

// Payment is an audit row for tier changes. Card redemptions are recorded
// with a zero amount; the row exists for bookkeeping, not billing.
type Payment struct {
	thing.BaseModel
	UserID       int64  `db:"user_id,index" json:"user_id"`
	Type         string `db:"type" json:"type"`
	AmountCents  int64  `db:"amount_cents" json:"amount_cents"`
	Tier         string `db:"tier" json:"tier"`
	DurationDays int    `db:"duration_days" json:"duration_days"`
	Reference    string `db:"reference" json:"reference"`
}

func (p *Payment) TableName() string {
	return "payments"
}

var PaymentDB *thing.Thing[*Payment]

func PaymentInit() error {
	var err error
	PaymentDB, err = thing.Use[*Payment]()
	return err
}

func CreatePayment(payment *Payment) error {
	return PaymentDB.Save(payment)
}

func GetPaymentsByUser(userID int64, startIdx int, num int) ([]*Payment, error) {
	return PaymentDB.Where("user_id = ?", userID).Order("id DESC").Fetch(startIdx, num)
}
