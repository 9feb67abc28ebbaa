package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCents(t *testing.T) {
	assert.EqualValues(t, 1999, ToCents(19.99))
	assert.EqualValues(t, 1, ToCents(0.005))
	assert.EqualValues(t, 5000, ToCents(50))
	assert.InDelta(t, 19.99, FromCents(1999), 1e-9)
	assert.InDelta(t, 3.3, Round2(3.2999999), 1e-9)
}

func TestItemsRoundTripThroughMetadata(t *testing.T) {
	items := []ItemRef{{VariantID: "v1", Quantity: 2, Price: 34.99}, {VariantID: "v2", Quantity: 1, Price: 5}}
	enc := EncodeItems(items)
	assert.Equal(t, "v1:2:34.99|v2:1:5.00", enc)

	dec, err := DecodeItems(enc)
	require.NoError(t, err)
	assert.Equal(t, items, dec)

	_, err = DecodeItems("v1:zero:1.00")
	assert.Error(t, err)
	none, err := DecodeItems("")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func sign(t *testing.T, secret string, payload []byte) string {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeParseWebhook(t *testing.T) {
	const secret = "whsec_test"
	s := NewStripe("sk_test_x", secret, "usd")
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{
		"id":"cs_test_1","object":"checkout.session","payment_intent":"pi_123","amount_total":5499,
		"customer_details":{"email":"angler@example.com","name":"Rio Angler"},
		"metadata":{"items":"v1:1:54.99","subtotal":"54.99"}}}}`)

	evt, err := s.ParseWebhook(payload, sign(t, secret, payload))
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, evt.Type)
	require.NotNil(t, evt.Checkout)
	assert.Equal(t, "cs_test_1", evt.Checkout.SessionID)
	assert.Equal(t, "pi_123", evt.Checkout.PaymentIntent)
	assert.Equal(t, "angler@example.com", evt.Checkout.CustomerEmail)
	assert.Equal(t, "Rio Angler", evt.Checkout.CustomerName)
	assert.Equal(t, "v1:1:54.99", evt.Checkout.Metadata["items"])

	_, err = s.ParseWebhook(payload, sign(t, "whsec_other", payload))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
