package models

import "time"

// Product mirrors a Stripe product. Upserted on product lifecycle events,
// keyed by the Stripe product id.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProductID   string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_products_product_id" json:"product_id"`
	Active      bool      `gorm:"default:false" json:"active"`
	Name        string    `gorm:"type:varchar(250);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Metadata    JSONMap   `gorm:"type:json" json:"metadata"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
