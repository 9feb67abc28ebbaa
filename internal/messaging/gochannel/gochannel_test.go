package gochannel

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBroker_DeliversAndStops(t *testing.T) {
	b := New(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	got := make(chan map[string]string, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.Consume(ctx, "orders.placed", "mailer", func(ctx context.Context, payload []byte) error {
			var m map[string]string
			if err := json.Unmarshal(payload, &m); err != nil {
				return err
			}
			select {
			case got <- m:
			default:
			}
			return nil
		})
	}()

	// Subscribe happens inside Consume; retry until the message lands.
	require.Eventually(t, func() bool {
		_ = b.PublishEvent(context.Background(), "orders.placed", "o1", map[string]string{"orderId": "o1"})
		select {
		case m := <-got:
			assert.Equal(t, "o1", m["orderId"])
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	wg.Wait()
	require.NoError(t, b.Close())
}
