package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/local_store/internal/service"
	"github.com/Skotchmaster/local_store/internal/transport"
	"github.com/Skotchmaster/local_store/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func itemID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("itemId"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	return uint(id), nil
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	cart, err := h.Svc.GetOrCreateCart(ctx, AuthFrom(c))
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	var req transport.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "add_item_error", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("add_item_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	qty := service.DefaultAddQuantity
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	item, err := h.Svc.AddItem(ctx, AuthFrom(c), req.ProductID, qty)
	if err != nil {
		return fail(l, "add_item_error", err)
	}

	l.Info("item added to cart", "item_id", item.ID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	id, err := itemID(c)
	if err != nil {
		l.Warn("update_item_error", "status", http.StatusBadRequest, "param", c.Param("itemId"))
		return err
	}
	var req transport.UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_item_error", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("update_item_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	if _, err := h.Svc.UpdateItemQuantity(ctx, AuthFrom(c), id, *req.Quantity); err != nil {
		return fail(l, "update_item_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	id, err := itemID(c)
	if err != nil {
		l.Warn("remove_item_error", "status", http.StatusBadRequest, "param", c.Param("itemId"))
		return err
	}
	if err := h.Svc.RemoveItem(ctx, AuthFrom(c), id); err != nil {
		return fail(l, "remove_item_error", err)
	}

	l.Info("item removed from cart", "item_id", id)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
