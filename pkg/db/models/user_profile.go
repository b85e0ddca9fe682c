package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the app-side account record. ShopifyCustomerID links it to
// the commerce platform customer created at signup.
type UserProfile struct {
	ID                  uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopifyCustomerID   string     `gorm:"column:shopify_customer_id;uniqueIndex;not null"`
	Email               string     `gorm:"column:email;not null"`
	Phone               *string    `gorm:"column:phone"`
	FirstName           string     `gorm:"column:first_name"`
	LastName            string     `gorm:"column:last_name"`
	Ethnicity           *string    `gorm:"column:ethnicity"`
	Gender              *string    `gorm:"column:gender"`
	Zipcode             *string    `gorm:"column:zipcode"`
	DeviceToken         *string    `gorm:"column:device_token"`
	Points              int        `gorm:"column:points;not null;default:0"`
	SignupBonusReceived bool       `gorm:"column:signup_bonus_received;not null;default:false"`
	IsAdmin             bool       `gorm:"column:is_admin;not null;default:false"`
	PasswordHash        *string    `gorm:"column:password_hash"`
	LastLoginAt         *time.Time `gorm:"column:last_login_at"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
