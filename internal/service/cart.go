package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/local_store/internal/assets"
	"github.com/Skotchmaster/local_store/internal/events"
	"github.com/Skotchmaster/local_store/internal/models"
	"github.com/Skotchmaster/local_store/internal/repo"
	"github.com/Skotchmaster/local_store/internal/transport"
	"github.com/Skotchmaster/local_store/pkg/logging"
)

const DefaultAddQuantity = 1

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Images assets.Resolver
}

func (s *CartService) GetOrCreateCart(ctx context.Context, auth AuthContext) (*transport.CartView, error) {
	if err := requireUser(auth); err != nil {
		return nil, err
	}

	cart, err := s.Repo.GetOrCreateCart(ctx, auth.UserID)
	if err != nil {
		return nil, err
	}
	lines, err := s.Repo.CartLines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	view := &transport.CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
		Items:     make([]transport.CartItemView, 0, len(lines)),
		Total:     decimal.Zero,
	}
	for _, ln := range lines {
		item := transport.CartItemView{
			ID:         ln.ID,
			CartID:     ln.CartID,
			ProductID:  ln.ProductID,
			Quantity:   ln.Quantity,
			Price:      ln.Price,
			InsertedAt: ln.InsertedAt,
			UpdatedAt:  ln.UpdatedAt,
			Name:       ln.Name,
			SKU:        ln.SKU,
		}
		if ln.ImageURL != nil {
			u := resolveImage(s.Images, *ln.ImageURL)
			item.Image = &u
		}
		view.Items = append(view.Items, item)
		view.Total = view.Total.Add(ln.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}
	return view, nil
}

func (s *CartService) AddItem(ctx context.Context, auth AuthContext, productID uint, quantity int) (*models.CartItem, error) {
	if err := requireUser(auth); err != nil {
		return nil, err
	}
	if productID == 0 {
		return nil, fmt.Errorf("product id is required: %w", ErrValidation)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}

	item, err := s.Repo.AddItem(ctx, auth.UserID, productID, quantity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %d not found: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "cart_item_added", auth.UserID, item)
	return item, nil
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, auth AuthContext, itemID uint, quantity int) (*models.CartItem, error) {
	if err := requireUser(auth); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}

	item, err := s.Repo.UpdateItemQuantity(ctx, auth.UserID, itemID, quantity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logging.FromContext(ctx).Warn("cart_item_not_owned", "item_id", itemID, "user_id", auth.UserID)
		return nil, fmt.Errorf("not authorized to modify cart item %d: %w", itemID, ErrForbidden)
	}
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "cart_item_updated", auth.UserID, item)
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, auth AuthContext, itemID uint) error {
	if err := requireUser(auth); err != nil {
		return err
	}

	err := s.Repo.RemoveItem(ctx, auth.UserID, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logging.FromContext(ctx).Warn("cart_item_not_owned", "item_id", itemID, "user_id", auth.UserID)
		return fmt.Errorf("not authorized to modify cart item %d: %w", itemID, ErrForbidden)
	}
	if err != nil {
		return err
	}

	s.emit(ctx, "cart_item_removed", auth.UserID, &models.CartItem{ID: itemID})
	return nil
}

func (s *CartService) emit(ctx context.Context, typ string, userID uint, item *models.CartItem) {
	events.Emit(ctx, s.Events, events.TopicCart, events.UserKey(userID), events.CartEvent{
		Type:       typ,
		UserID:     userID,
		CartID:     item.CartID,
		ItemID:     item.ID,
		ProductID:  item.ProductID,
		Quantity:   item.Quantity,
		Price:      item.Price,
		OccurredAt: time.Now().UTC(),
	})
}
