package service

import (
	"context"
	"time"

	"github.com/example/candleshop/pkg/models"
	"github.com/example/candleshop/pkg/payment"
	"github.com/example/candleshop/pkg/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stores implementing the service store interfaces.

type mockOrderStore struct {
	orders       map[primitive.ObjectID]*models.Order
	insertErrs   []error
	insertCalls  int
	getCalls     int
	markPaidTime time.Time
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (m *mockOrderStore) Insert(_ context.Context, order *models.Order) error {
	m.insertCalls++
	if len(m.insertErrs) > 0 {
		err := m.insertErrs[0]
		m.insertErrs = m.insertErrs[1:]
		if err != nil {
			return err
		}
	}
	order.ID = primitive.NewObjectID()
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *mockOrderStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.getCalls++
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *mockOrderStore) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderStore) ListAll(_ context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	copied := *order
	return &copied, nil
}

func (m *mockOrderStore) MarkPaid(_ context.Context, id primitive.ObjectID, paymentID string) (*models.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	order.PaymentStatus = models.PaymentStatePaid
	order.PaymentID = paymentID
	order.Status = models.OrderStatusProcessing
	order.UpdatedAt = time.Now()
	m.markPaidTime = time.Now()
	copied := *order
	return &copied, nil
}

type mockPaymentStore struct {
	payments         map[string]*models.Payment
	markCapturedTime time.Time
	failedCalls      int
}

func newMockPaymentStore() *mockPaymentStore {
	return &mockPaymentStore{payments: make(map[string]*models.Payment)}
}

func (m *mockPaymentStore) Insert(_ context.Context, p *models.Payment) error {
	p.ID = primitive.NewObjectID()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	copied := *p
	m.payments[p.GatewayOrderID] = &copied
	return nil
}

func (m *mockPaymentStore) GetByGatewayOrderID(_ context.Context, gatewayOrderID string) (*models.Payment, error) {
	p, ok := m.payments[gatewayOrderID]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockPaymentStore) MarkCaptured(_ context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*models.Payment, error) {
	p, ok := m.payments[gatewayOrderID]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	p.GatewayPaymentID = gatewayPaymentID
	p.GatewaySignature = signature
	p.Status = models.PaymentStatusCaptured
	p.UpdatedAt = time.Now()
	m.markCapturedTime = time.Now()
	copied := *p
	return &copied, nil
}

func (m *mockPaymentStore) MarkFailed(_ context.Context, gatewayOrderID, reason string) (*models.Payment, error) {
	m.failedCalls++
	p, ok := m.payments[gatewayOrderID]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	p.Status = models.PaymentStatusFailed
	p.FailureReason = reason
	p.UpdatedAt = time.Now()
	copied := *p
	return &copied, nil
}

type mockTrackingStore struct {
	events    []models.TrackingEvent
	appendErr error
}

func (m *mockTrackingStore) Append(_ context.Context, event *models.TrackingEvent) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *mockTrackingStore) ListByOrder(_ context.Context, orderID primitive.ObjectID) ([]models.TrackingEvent, error) {
	var out []models.TrackingEvent
	for _, e := range m.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockProductStore struct {
	products []models.Product
}

func (m *mockProductStore) ListAll(_ context.Context) ([]models.Product, error) {
	return m.products, nil
}

type mockCache struct {
	entries     map[string]*models.Order
	cached      []string
	invalidated []string
	getErr      error
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]*models.Order)}
}

func (m *mockCache) CacheOrder(_ context.Context, order *models.Order) error {
	copied := *order
	m.entries[order.ID.Hex()] = &copied
	m.cached = append(m.cached, order.ID.Hex())
	return nil
}

func (m *mockCache) GetCachedOrder(_ context.Context, orderID string) (*models.Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	order, ok := m.entries[orderID]
	if !ok {
		return nil, repository.ErrOrderNotCached
	}
	copied := *order
	return &copied, nil
}

func (m *mockCache) InvalidateOrder(_ context.Context, orderID string) error {
	delete(m.entries, orderID)
	m.invalidated = append(m.invalidated, orderID)
	return nil
}

type fakeGateway struct {
	lastRequest *payment.CreateOrderRequest
	nextID      string
	err         error
}

func (g *fakeGateway) CreateOrder(_ context.Context, req *payment.CreateOrderRequest) (*payment.GatewayOrder, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.lastRequest = req
	id := g.nextID
	if id == "" {
		id = "order_FAKE123"
	}
	return &payment.GatewayOrder{
		ID:       id,
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}
