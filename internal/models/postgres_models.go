package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, j)
}

// StringArray type for PostgreSQL arrays
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, s)
}

// User model - PostgreSQL
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone        string     `json:"phone"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         string     `gorm:"default:customer" json:"role"`   // customer, restaurant_owner, admin
	RestaurantID *uuid.UUID `gorm:"type:uuid" json:"restaurant_id"` // set for restaurant_owner accounts
	Status       string     `gorm:"default:active" json:"status"`   // active, inactive, suspended
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Restaurant model - PostgreSQL (directory entry shown on the storefront and
// managed from the super-admin console)
type Restaurant struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string      `gorm:"not null" json:"name"`
	Description  string      `json:"description"`
	Image        string      `json:"image"`
	CuisineTypes StringArray `gorm:"type:jsonb" json:"cuisine_types"`
	Rating       float64     `gorm:"default:0" json:"rating"`
	DeliveryTime string      `json:"delivery_time"`
	DeliveryFee  float64     `json:"delivery_fee"`
	IsOpen       bool        `gorm:"default:true" json:"is_open"`
	Status       string      `gorm:"default:active" json:"status"` // active, suspended, pending_approval
	OwnerID      uuid.UUID   `gorm:"type:uuid;not null" json:"owner_id"`
	Owner        User        `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Offers       string      `json:"offers,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Order model - PostgreSQL (local mirror of placed orders; the upstream order
// service stays the source of truth for status)
type Order struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	User            User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RestaurantID    uuid.UUID  `gorm:"type:uuid;not null" json:"restaurant_id"`
	Restaurant      Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	UpstreamOrderID string     `gorm:"index" json:"upstream_order_id"`
	Status          string     `gorm:"default:pending" json:"status"` // canonical workflow statuses
	Items           JSONB      `gorm:"type:jsonb" json:"items"`
	Subtotal        float64    `json:"subtotal"`
	DeliveryFee     float64    `json:"delivery_fee"`
	TotalAmount     float64    `json:"total_amount"`
	PaymentMethod   string     `json:"payment_method"`
	PaymentID       *uuid.UUID `gorm:"type:uuid" json:"payment_id"`
	DeliveryAddress JSONB      `gorm:"type:jsonb" json:"delivery_address"`
	StatusLog       JSONB      `gorm:"type:jsonb" json:"status_log"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Payment model - PostgreSQL
type Payment struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID       uuid.UUID `gorm:"type:uuid;not null" json:"order_id"`
	Order         Order     `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	UserID        uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Method        string    `gorm:"not null" json:"method"`        // UPI, card, wallet, cash
	Status        string    `gorm:"default:pending" json:"status"` // pending, completed, failed
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
	Metadata      JSONB     `gorm:"type:jsonb" json:"metadata"`
}
