package billing

import (
	"errors"
	"time"

	"github.com/ManuelReschke/StripeSync/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service. Lookups by
// external id return (nil, nil) when no record exists; the unique indexes on
// the external-key columns are the actual guard against duplicate creation
// under concurrent deliveries.
type Repository interface {
	FindCustomerByStripeID(stripeCustomerID string) (*models.Customer, error)
	FindCustomerByUserID(userID uint) (*models.Customer, error)
	SaveCustomer(customer *models.Customer) error

	FindProductByProductID(productID string) (*models.Product, error)
	SaveProduct(product *models.Product) error

	FindPriceByPriceID(priceID string) (*models.Price, error)
	SavePrice(price *models.Price) error

	FindSubscriptionBySubscriptionID(subscriptionID string) (*models.Subscription, error)
	SaveSubscription(sub *models.Subscription) error

	GetUserByID(id uint) (*models.User, error)
	SaveUser(user *models.User) error

	CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) findFirst(dest interface{}, query string, args ...interface{}) (bool, error) {
	err := r.db.Where(query, args...).First(dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *gormRepository) FindCustomerByStripeID(stripeCustomerID string) (*models.Customer, error) {
	var customer models.Customer
	found, err := r.findFirst(&customer, "stripe_customer_id = ?", stripeCustomerID)
	if err != nil || !found {
		return nil, err
	}
	return &customer, nil
}

func (r *gormRepository) FindCustomerByUserID(userID uint) (*models.Customer, error) {
	var customer models.Customer
	found, err := r.findFirst(&customer, "user_id = ?", userID)
	if err != nil || !found {
		return nil, err
	}
	return &customer, nil
}

func (r *gormRepository) SaveCustomer(customer *models.Customer) error {
	return r.db.Save(customer).Error
}

func (r *gormRepository) FindProductByProductID(productID string) (*models.Product, error) {
	var product models.Product
	found, err := r.findFirst(&product, "product_id = ?", productID)
	if err != nil || !found {
		return nil, err
	}
	return &product, nil
}

func (r *gormRepository) SaveProduct(product *models.Product) error {
	return r.db.Save(product).Error
}

func (r *gormRepository) FindPriceByPriceID(priceID string) (*models.Price, error) {
	var price models.Price
	found, err := r.findFirst(&price, "price_id = ?", priceID)
	if err != nil || !found {
		return nil, err
	}
	return &price, nil
}

func (r *gormRepository) SavePrice(price *models.Price) error {
	return r.db.Save(price).Error
}

func (r *gormRepository) FindSubscriptionBySubscriptionID(subscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	found, err := r.findFirst(&sub, "subscription_id = ?", subscriptionID)
	if err != nil || !found {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) SaveSubscription(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

func (r *gormRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) SaveUser(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := r.db.Where("event_id = ?", event.EventID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
