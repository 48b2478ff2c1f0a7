package models

import "time"

// Subscription mirrors a Stripe subscription and binds it to the owning local
// user. The period/cancellation timestamps arrive as Unix epoch seconds and
// are stored as RFC3339 UTC strings; absent values are stored as empty
// strings so the column type stays stable.
type Subscription struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	SubscriptionID     string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_subscriptions_subscription_id" json:"subscription_id"`
	UserID             uint      `gorm:"not null;index" json:"user_id"`
	Status             string    `gorm:"type:varchar(32);not null" json:"status"`
	PriceID            string    `gorm:"type:varchar(191);index" json:"price_id"`
	Quantity           int       `gorm:"default:0" json:"quantity"`
	CancelAtPeriodEnd  bool      `gorm:"default:false" json:"cancel_at_period_end"`
	CancelAt           string    `gorm:"type:varchar(40);not null;default:''" json:"cancel_at"`
	CanceledAt         string    `gorm:"type:varchar(40);not null;default:''" json:"canceled_at"`
	CurrentPeriodStart string    `gorm:"type:varchar(40);not null;default:''" json:"current_period_start"`
	CurrentPeriodEnd   string    `gorm:"type:varchar(40);not null;default:''" json:"current_period_end"`
	CreatedRemote      string    `gorm:"type:varchar(40);not null;default:''" json:"created"`
	EndedAt            string    `gorm:"type:varchar(40);not null;default:''" json:"ended_at"`
	TrialStart         string    `gorm:"type:varchar(40);not null;default:''" json:"trial_start"`
	TrialEnd           string    `gorm:"type:varchar(40);not null;default:''" json:"trial_end"`
	Metadata           JSONMap   `gorm:"type:json" json:"metadata"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
