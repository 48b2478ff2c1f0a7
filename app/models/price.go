package models

import "time"

const (
	PriceTypeRecurring = "recurring"
	PriceTypeOneTime   = "one_time"
)

// Price mirrors a Stripe price. The recurring fields are populated only for
// subscription-type prices.
type Price struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PriceID         string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_prices_price_id" json:"price_id"`
	ProductID       string    `gorm:"type:varchar(191);not null;index" json:"product_id"`
	Active          bool      `gorm:"default:false" json:"active"`
	Currency        string    `gorm:"type:varchar(10);not null" json:"currency"`
	Description     string    `gorm:"type:varchar(250)" json:"description"`
	Type            string    `gorm:"type:varchar(20);not null" json:"type"`
	UnitAmount      int64     `gorm:"default:0" json:"unit_amount"`
	Interval        string    `gorm:"type:varchar(16)" json:"interval"`
	IntervalCount   int       `gorm:"default:0" json:"interval_count"`
	TrialPeriodDays int       `gorm:"default:0" json:"trial_period_days"`
	Metadata        JSONMap   `gorm:"type:json" json:"metadata"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
