package transport

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type AddItemRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  *int `json:"quantity"`
}

type UpdateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type CartItemView struct {
	ID         uint            `json:"id"`
	CartID     uint            `json:"cart_id"`
	ProductID  uint            `json:"product_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	InsertedAt time.Time       `json:"inserted_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku"`
	Image      *string         `json:"image"`
}

type CartView struct {
	ID        uint            `json:"id"`
	UserID    uint            `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Items     []CartItemView  `json:"items"`
	Total     decimal.Decimal `json:"total"`
}

// FlexString accepts a JSON string or number, the checkout form sends the
// card expiry year as a number and the month as a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

type PaymentRequest struct {
	Amount             decimal.Decimal `json:"amount"`
	PaymentMethod      string          `json:"paymentMethod"      validate:"max=50"`
	TransactionID      string          `json:"transactionId"      validate:"max=100"`
	Status             string          `json:"status"             validate:"max=50"`
	CardNumberLastFour string          `json:"cardNumberLastFour"`
	CardBrand          string          `json:"cardBrand"          validate:"max=50"`
	CardholderName     string          `json:"cardholderName"     validate:"max=100"`
	CardExpiryMonth    FlexString      `json:"cardExpiryMonth"    validate:"max=2"`
	CardExpiryYear     FlexString      `json:"cardExpiryYear"     validate:"max=4"`
	// Accepted so the checkout form can post as is; never stored.
	CardCVV        string `json:"cardCvv"`
	BillingAddress string `json:"billingAddress"`
}

type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email,max=255"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6,max=72"`
}

type RegisteredUser struct {
	ID        uint      `json:"id"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionUser struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type PrimaryImage struct {
	ImageURL  string `json:"imageUrl"`
	IsPrimary bool   `json:"isPrimary"`
}

type ProductSummary struct {
	ID            uint                `json:"id"`
	Name          string              `json:"name"`
	RegularPrice  decimal.Decimal     `json:"regularPrice"`
	DiscountPrice decimal.NullDecimal `json:"discountPrice"`
	Quantity      int                 `json:"quantity"`
	Description   string              `json:"description"`
	Category      *string             `json:"category"`
	PrimaryImage  *PrimaryImage       `json:"primaryImage"`
}

type ProductImage struct {
	ID        uint   `json:"id"`
	ImageURL  string `json:"imageUrl"`
	IsPrimary bool   `json:"isPrimary"`
	AltText   string `json:"altText"`
}

type ProductDetail struct {
	ID            uint                `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	RegularPrice  decimal.Decimal     `json:"regularPrice"`
	DiscountPrice decimal.NullDecimal `json:"discountPrice"`
	Quantity      int                 `json:"quantity"`
	Taxable       bool                `json:"taxable"`
	Category      *string             `json:"category"`
	Images        []ProductImage      `json:"images"`
}

type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
