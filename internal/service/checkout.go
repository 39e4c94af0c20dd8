package service

import (
	"context"
	"strings"
	"time"

	"github.com/Skotchmaster/local_store/internal/events"
	"github.com/Skotchmaster/local_store/internal/models"
	"github.com/Skotchmaster/local_store/internal/repo"
	"github.com/Skotchmaster/local_store/internal/transport"
	"github.com/Skotchmaster/local_store/pkg/logging"
)

type CheckoutService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func lastFour(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= 4 {
		return s
	}
	return string(r[len(r)-4:])
}

// RecordPayment stores the outcome the client reports for a checkout as is;
// only the column constraints apply. The card security code on the request is
// dropped here and never persisted.
func (s *CheckoutService) RecordPayment(ctx context.Context, auth AuthContext, req transport.PaymentRequest) (*models.Payment, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.record_payment")

	payment := &models.Payment{
		Amount:             req.Amount.Round(2),
		PaymentDate:        time.Now().UTC(),
		PaymentMethod:      req.PaymentMethod,
		TransactionID:      req.TransactionID,
		Status:             req.Status,
		CardNumberLastFour: lastFour(req.CardNumberLastFour),
		CardBrand:          req.CardBrand,
		CardholderName:     req.CardholderName,
		CardExpiryMonth:    string(req.CardExpiryMonth),
		CardExpiryYear:     string(req.CardExpiryYear),
		BillingAddress:     req.BillingAddress,
	}
	if auth.Authenticated() {
		uid := auth.UserID
		payment.UserID = &uid
	}

	stored, err := s.Repo.CreatePayment(ctx, payment)
	if err != nil {
		l.Error("record_payment_error", "error", err)
		return nil, err
	}

	key := stored.TransactionID
	if auth.Authenticated() {
		key = events.UserKey(auth.UserID)
	}
	events.Emit(ctx, s.Events, events.TopicPayment, key, events.PaymentEvent{
		Type:          "payment_recorded",
		PaymentID:     stored.ID,
		UserID:        stored.UserID,
		Amount:        stored.Amount,
		Status:        stored.Status,
		TransactionID: stored.TransactionID,
		OccurredAt:    time.Now().UTC(),
	})
	return stored, nil
}
