package transport

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRequest_AcceptsCheckoutFormPayload(t *testing.T) {
	t.Parallel()

	body := `{"amount":30,"paymentMethod":"card","transactionId":"TRANS_123","status":"Success",
		"cardNumberLastFour":"4242","cardExpiryMonth":"7","cardExpiryYear":2027,"cardCvv":"123"}`

	var req PaymentRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.True(t, decimal.NewFromInt(30).Equal(req.Amount))
	assert.Equal(t, FlexString("7"), req.CardExpiryMonth)
	assert.Equal(t, FlexString("2027"), req.CardExpiryYear)
	assert.Equal(t, "123", req.CardCVV)
}

func TestFlexString_Rejects(t *testing.T) {
	t.Parallel()

	var f FlexString
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &f))
	require.NoError(t, json.Unmarshal([]byte(`null`), &f))
	assert.Equal(t, FlexString(""), f)
}
