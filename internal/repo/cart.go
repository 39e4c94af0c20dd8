package repo

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/local_store/internal/models"
)

// CartLine is a cart item joined with the product fields the cart view shows.
type CartLine struct {
	ID         uint
	CartID     uint
	ProductID  uint
	Quantity   int
	Price      decimal.Decimal
	InsertedAt time.Time
	UpdatedAt  time.Time
	Name       string
	SKU        string
	ImageURL   *string
}

func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart *models.Cart
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = getOrCreateCart(tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// getOrCreateCart relies on the unique index on carts.user_id: a concurrent
// insert loses the conflict and reads the winner's row.
func getOrCreateCart(tx *gorm.DB, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Where("user_id = ?", userID).Take(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error; err != nil {
		return nil, err
	}
	if cart.ID == 0 {
		if err := tx.Where("user_id = ?", userID).Take(&cart).Error; err != nil {
			return nil, err
		}
	}
	return &cart, nil
}

func (r *GormRepo) CartLines(ctx context.Context, cartID uint) ([]CartLine, error) {
	primaryImage := r.DB.Model(&models.ProductImage{}).
		Select("product_images.image_url").
		Where("product_images.product_id = cart_items.product_id AND product_images.is_primary = ?", true).
		Order("product_images.display_order ASC, product_images.id ASC").
		Limit(1)

	lines := make([]CartLine, 0)
	err := r.DB.WithContext(ctx).
		Table("cart_items").
		Select("cart_items.id, cart_items.cart_id, cart_items.product_id, cart_items.quantity, cart_items.price, "+
			"cart_items.inserted_at, cart_items.updated_at, products.name, products.sku, (?) AS image_url", primaryImage).
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartID).
		Order("cart_items.inserted_at ASC, cart_items.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// AddItem upserts on (cart_id, product_id): an existing line gets its
// quantity incremented and keeps the price it was first added at.
func (r *GormRepo) AddItem(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ?", productID).Take(&product).Error; err != nil {
			return err
		}

		cart, err := getOrCreateCart(tx, userID)
		if err != nil {
			return err
		}

		item = models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			Price:     product.UnitPrice(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).Create(&item).Error; err != nil {
			return err
		}

		return tx.Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).Take(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func ownedCarts(tx *gorm.DB, userID uint) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)
}

// UpdateItemQuantity returns gorm.ErrRecordNotFound when the item does not
// exist or belongs to another user's cart.
func (r *GormRepo) UpdateItemQuantity(ctx context.Context, userID, itemID uint, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("id = ? AND cart_id IN (?)", itemID, ownedCarts(tx, userID)).
			Updates(map[string]any{"quantity": quantity})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", itemID).Take(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) RemoveItem(ctx context.Context, userID, itemID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND cart_id IN (?)", itemID, ownedCarts(tx, userID)).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
