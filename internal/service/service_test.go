package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/mail"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/payment"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository/postgres"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := postgres.Open(sqlite.Open("file::memory:?_foreign_keys=on"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, postgres.Migrate(context.Background(), db))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, slug string, price float64, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Name:      "Product " + slug,
		Slug:      slug,
		SKU:       "SKU-" + slug,
		BasePrice: price,
		IsActive:  true,
		Variants: []entity.ProductVariant{
			{Name: "M", SKU: "SKU-" + slug + "-M", Price: price, Stock: stock},
		},
	}
	require.NoError(t, postgres.NewProductRepository(db).Create(context.Background(), p))
	return p
}

type sentMail struct {
	mu   sync.Mutex
	msgs []mail.Message
	fail map[string]bool
}

func (m *sentMail) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[msg.To] {
		return errors.New("mailbox unavailable")
	}
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *sentMail) sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.msgs...)
}

type published struct {
	Topic string
	Key   string
	Event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *recordingPublisher) on(topic string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, e := range p.events {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}

type fakeGateway struct {
	req   payment.SessionRequest
	event *payment.Event
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	g.req = req
	return &payment.Session{ID: "cs_test_123", URL: "https://checkout.example/cs_test_123"}, nil
}

func (g *fakeGateway) ParseWebhook(_ []byte, signature string) (*payment.Event, error) {
	if signature != "valid" {
		return nil, payment.ErrInvalidSignature
	}
	return g.event, nil
}

type scriptedGenerator struct {
	out     string
	err     error
	prompts []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.out, g.err
}

func nopLogger() *zap.Logger { return zap.NewNop() }

func intPtr(n int) *int { return &n }
