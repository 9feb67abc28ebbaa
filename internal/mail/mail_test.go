package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOrderConfirmationMessage(t *testing.T) {
	msg, err := OrderConfirmationMessage("a@b.com", OrderConfirmation{
		Name:         "<Rio>",
		OrderNumber:  "ABCD1234",
		Items:        []LineItem{{Name: "Hoodie", Quantity: 2, Total: 109.98}},
		Subtotal:     109.98,
		Total:        124.04,
		Conservation: 11,
	})
	require.NoError(t, err)
	assert.Equal(t, "Order Confirmation #ABCD1234 - La Pesqueria Outfitters", msg.Subject)
	assert.Contains(t, msg.HTML, "$109.98")
	assert.Contains(t, msg.HTML, "&lt;Rio&gt;")
	assert.NotContains(t, msg.HTML, "Discount:")
}

func TestNewsletterWelcomeMessage(t *testing.T) {
	msg, err := NewsletterWelcomeMessage("a@b.com", NewsletterWelcome{Returning: true})
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, "Welcome back")
	assert.Contains(t, msg.HTML, "Welcome back!")
}

func TestCampaignMessageKeepsTrustedHTML(t *testing.T) {
	msg, err := CampaignMessage("a@b.com", "Spring run", Campaign{Content: "<h2>Trout are in</h2>", UnsubscribeURL: "https://x/unsub"})
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "<h2>Trout are in</h2>")
	assert.Contains(t, msg.HTML, `href="https://x/unsub"`)
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, NewLogMailer(zap.NewNop()).Send(context.Background(), Message{To: "a@b.com"}))
}
