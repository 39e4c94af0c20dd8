package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/local_store/internal/service"
	"github.com/Skotchmaster/local_store/internal/transport"
	"github.com/Skotchmaster/local_store/pkg/logging"
)

type CheckoutHTTP struct {
	Svc *service.CheckoutService
}

func (h *CheckoutHTTP) RecordPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.record_payment")

	var req transport.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "record_payment_error", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("record_payment_error", "status", http.StatusBadRequest, "error", err)
		return err
	}

	payment, err := h.Svc.RecordPayment(ctx, AuthFrom(c), req)
	if err != nil {
		return fail(l, "record_payment_error", err)
	}

	l.Info("payment recorded", "payment_id", payment.ID, "status", payment.Status)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Payment recorded successfully",
		"payment": payment,
	})
}
