package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProductStatusActive = 1
)

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"              json:"id"`
	FullName     string     `gorm:"size:100;not null"                     json:"full_name"`
	Username     string     `gorm:"size:50;uniqueIndex;not null"          json:"username"`
	Email        string     `gorm:"size:255;uniqueIndex;not null"         json:"email"`
	PasswordHash string     `gorm:"not null"                              json:"-"`
	Role         string     `gorm:"size:20;not null;default:user"         json:"role"`
	LastLogin    *time.Time `                                             json:"last_login"`
	CreatedAt    time.Time  `                                             json:"created_at"`
	UpdatedAt    time.Time  `                                             json:"updated_at"`
}

type Category struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name     string `gorm:"size:100;not null"         json:"name"`
	ParentID *uint  `gorm:"index"                     json:"parent_id"`
}

type Product struct {
	ID              uint                `gorm:"primaryKey;autoIncrement"          json:"id"`
	Name            string              `gorm:"size:255;not null"                 json:"name"`
	SKU             string              `gorm:"column:sku;size:64;index"          json:"sku"`
	Description     string              `gorm:"type:text"                         json:"description"`
	RegularPrice    decimal.Decimal     `gorm:"type:numeric(10,2);not null"       json:"regular_price"`
	DiscountPrice   decimal.NullDecimal `gorm:"type:numeric(10,2)"                json:"discount_price"`
	Quantity        int                 `gorm:"not null;default:0"                json:"quantity"`
	Taxable         bool                `gorm:"not null;default:false"            json:"taxable"`
	ProductStatusID int                 `gorm:"not null;default:1;index"          json:"product_status_id"`
	CategoryID      *uint               `gorm:"index"                             json:"category_id"`
	InsertedAt      time.Time           `gorm:"autoCreateTime"                    json:"inserted_at"`
	UpdatedAt       time.Time           `                                         json:"updated_at"`
}

// UnitPrice is what a cart line captures: the discount price when one is set
// and positive, the regular price otherwise.
func (p *Product) UnitPrice() decimal.Decimal {
	if p.DiscountPrice.Valid && p.DiscountPrice.Decimal.IsPositive() {
		return p.DiscountPrice.Decimal
	}
	return p.RegularPrice
}

type ProductImage struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	ProductID    uint   `gorm:"index;not null"            json:"product_id"`
	ImageURL     string `gorm:"not null"                  json:"image_url"`
	AltText      string `gorm:"size:255"                  json:"alt_text"`
	IsPrimary    bool   `gorm:"not null;default:false"    json:"is_primary"`
	DisplayOrder int    `gorm:"not null;default:0"        json:"display_order"`
}

type Cart struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null"      json:"user_id"`
	CreatedAt time.Time `                                 json:"created_at"`
	UpdatedAt time.Time `                                 json:"updated_at"`
}

type CartItem struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"                    json:"id"`
	CartID     uint            `gorm:"uniqueIndex:idx_cart_product;not null"       json:"cart_id"`
	ProductID  uint            `gorm:"uniqueIndex:idx_cart_product;not null"       json:"product_id"`
	Quantity   int             `gorm:"not null;check:quantity>0"                   json:"quantity"`
	Price      decimal.Decimal `gorm:"type:numeric(10,2);not null"                 json:"price"`
	InsertedAt time.Time       `gorm:"autoCreateTime"                              json:"inserted_at"`
	UpdatedAt  time.Time       `                                                   json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type Payment struct {
	ID                 uint            `gorm:"primaryKey;autoIncrement"          json:"id"`
	UserID             *uint           `gorm:"index"                             json:"user_id"`
	Amount             decimal.Decimal `gorm:"type:numeric(10,2);not null"       json:"amount"`
	PaymentDate        time.Time       `gorm:"not null"                          json:"payment_date"`
	PaymentMethod      string          `gorm:"size:50"                           json:"payment_method"`
	TransactionID      string          `gorm:"size:100;index"                    json:"transaction_id"`
	Status             string          `gorm:"size:50;not null"                  json:"status"`
	CardNumberLastFour string          `gorm:"size:4"                            json:"card_number_last_four"`
	CardBrand          string          `gorm:"size:50"                           json:"card_brand"`
	CardholderName     string          `gorm:"size:100"                          json:"cardholder_name"`
	CardExpiryMonth    string          `gorm:"size:2"                            json:"card_expiry_month"`
	CardExpiryYear     string          `gorm:"size:4"                            json:"card_expiry_year"`
	BillingAddress     string          `gorm:"type:text"                         json:"billing_address"`
}

type Session struct {
	ID        string    `gorm:"primaryKey;size:36"  json:"id"`
	UserID    uint      `gorm:"index;not null"      json:"user_id"`
	Role      string    `gorm:"size:20;not null"    json:"role"`
	ExpiresAt time.Time `gorm:"index;not null"      json:"expires_at"`
	CreatedAt time.Time `                           json:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// All lists every table in migration order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&ProductImage{},
		&Cart{},
		&CartItem{},
		&Payment{},
		&Session{},
	}
}
