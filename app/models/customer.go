package models

import "time"

// Customer links a local user to their Stripe customer. One row per user,
// created lazily on the first checkout request.
type Customer struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	StripeCustomerID string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_customers_stripe_customer_id" json:"stripe_customer_id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
