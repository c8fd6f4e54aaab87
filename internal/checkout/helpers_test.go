package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/cart"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/command"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/RoyceAzure/lab/storefront/internal/payment"
	"github.com/RoyceAzure/lab/storefront/internal/profile"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, evt event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) types() []event.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type())
	}
	return out
}

func (p *recordingPublisher) last() event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}

type fixture struct {
	carts     *cart.Store
	profiles  *profile.Repository
	kv        *kv.MemoryStore
	publisher *recordingPublisher
	svc       *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := kv.NewMemoryStore()
	f := &fixture{
		carts:     cart.NewStore(cart.NewMemoryRepo(), nil),
		profiles:  profile.NewRepository(store),
		kv:        store,
		publisher: &recordingPublisher{},
	}
	gw := payment.NewGateway(payment.Config{PublicKey: "pk_test"})
	f.svc = NewService(f.carts, f.profiles, gw, f.publisher, nil)
	t.Cleanup(f.svc.Stop)
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }
	return f
}

func (f *fixture) addToCart(t *testing.T, sessionID string, id int, price string, qty int) model.CartState {
	t.Helper()
	p := model.Product{ID: id, Title: "item", Price: decimal.RequireFromString(price), Category: "electronics"}
	s, err := f.carts.Dispatch(context.Background(), sessionID, command.NewAddItemCommand(p, qty, "M", "Black"))
	require.NoError(t, err)
	return s
}

func completeShipping() model.ShippingInfo {
	return model.ShippingInfo{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "0800",
		Address:   "1 Analytical St",
		City:      "Lagos",
		State:     "Lagos",
		ZipCode:   "100001",
		Country:   "Nigeria",
	}
}
