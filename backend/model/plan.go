package model

import (
	"github.com/burugo/thing"
)

// Plan is a purchasable pricing entry shown on the pricing page. Pricing is
// display-only; the actual upgrade path is card-key redemption.
type Plan struct {
	thing.BaseModel
	Name         string `db:"name" json:"name"`
	Tier         string `db:"tier" json:"tier"`
	PriceCents   int64  `db:"price_cents" json:"price_cents"`
	DurationDays int    `db:"duration_days" json:"duration_days"`
	Enabled      bool   `db:"enabled" json:"enabled"`
	Sort         int    `db:"sort" json:"sort"`
}

func (p *Plan) TableName() string {
	return "plans"
}

var PlanDB *thing.Thing[*Plan]

func PlanInit() error {
	var err error
	PlanDB, err = thing.Use[*Plan]()
	return err
}

func GetEnabledPlans() ([]*Plan, error) {
	return PlanDB.Where("enabled = ?", true).Order("sort ASC").Fetch(0, 100)
}

func GetAllPlans() ([]*Plan, error) {
	return PlanDB.Order("sort ASC").Fetch(0, 100)
}

func seedDefaultPlans() error {
	existing, err := PlanDB.Query(thing.QueryParams{}).Fetch(0, 1)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	defaults := []*Plan{
		{Name: "Pro Monthly", Tier: TierPro, PriceCents: 500, DurationDays: 30, Enabled: true, Sort: 1},
		{Name: "Pro Yearly", Tier: TierPro, PriceCents: 4800, DurationDays: 365, Enabled: true, Sort: 2},
		{Name: "Max Monthly", Tier: TierMax, PriceCents: 1500, DurationDays: 30, Enabled: true, Sort: 3},
		{Name: "Max Yearly", Tier: TierMax, PriceCents: 14400, DurationDays: 365, Enabled: true, Sort: 4},
	}
	for _, plan := range defaults {
		if err := PlanDB.Save(plan); err != nil {
			return err
		}
	}
	return nil
}
