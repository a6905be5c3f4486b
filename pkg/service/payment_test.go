package service

import (
	"context"
	"testing"

	"github.com/example/candleshop/pkg/config"
	"github.com/example/candleshop/pkg/models"
	"github.com/example/candleshop/pkg/payment"
	"github.com/example/candleshop/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "test_key_secret"

type paymentFixture struct {
	orders   *mockOrderStore
	payments *mockPaymentStore
	tracking *mockTrackingStore
	cache    *mockCache
	gateway  *fakeGateway
	service  *PaymentService
	orderSvc *OrderService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		orders:   newMockOrderStore(),
		payments: newMockPaymentStore(),
		tracking: &mockTrackingStore{},
		cache:    newMockCache(),
		gateway:  &fakeGateway{},
	}
	cfg := &config.RazorpayConfig{KeyID: "rzp_test_key", Secret: testSecret}
	f.service = NewPaymentService(f.orders, f.payments, f.tracking, f.cache, f.gateway, cfg, zap.NewNop())
	f.orderSvc = NewOrderService(f.orders, f.tracking, f.cache, zap.NewNop())
	return f
}

func (f *paymentFixture) placedOrder(t *testing.T) *models.Order {
	t.Helper()
	order, err := f.orderSvc.CreateOrder(context.Background(), primitive.NewObjectID(), validInput())
	require.NoError(t, err)
	return order
}

func TestCreateIntent(t *testing.T) {
	f := newPaymentFixture()
	order := f.placedOrder(t)
	userID := order.UserID

	intent, err := f.service.CreateIntent(context.Background(), order.ID, userID)

	require.NoError(t, err)
	assert.Equal(t, "order_FAKE123", intent.GatewayOrderID)
	assert.Equal(t, int64(30000), intent.Amount) // 300.00 in paise
	assert.Equal(t, "INR", intent.Currency)
	assert.Equal(t, "rzp_test_key", intent.KeyID)
	assert.Equal(t, order.OrderNumber, intent.OrderNumber)

	require.NotNil(t, f.gateway.lastRequest)
	assert.Equal(t, order.OrderNumber, f.gateway.lastRequest.Receipt)
	assert.Equal(t, order.ID.Hex(), f.gateway.lastRequest.Notes["order_id"])

	record, err := f.payments.GetByGatewayOrderID(context.Background(), intent.GatewayOrderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCreated, record.Status)
	assert.Equal(t, order.Total, record.Amount)
}

func TestCreateIntent_OrderNotFound(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.service.CreateIntent(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())

	require.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestCreateIntent_GatewayTimeout(t *testing.T) {
	f := newPaymentFixture()
	order := f.placedOrder(t)
	f.gateway.err = payment.ErrGatewayTimeout

	_, err := f.service.CreateIntent(context.Background(), order.ID, order.UserID)

	require.ErrorIs(t, err, payment.ErrGatewayTimeout)
	// no payment record was written for the failed round trip
	assert.Empty(t, f.payments.payments)
}

func TestVerify_ValidSignature(t *testing.T) {
	f := newPaymentFixture()
	order := f.placedOrder(t)
	intent, err := f.service.CreateIntent(context.Background(), order.ID, order.UserID)
	require.NoError(t, err)

	signature := payment.Sign(intent.GatewayOrderID, "pay_001", testSecret)
	verified, err := f.service.Verify(context.Background(), intent.GatewayOrderID, "pay_001", signature)

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, verified.Status)
	assert.Equal(t, models.PaymentStatePaid, verified.PaymentStatus)
	assert.Equal(t, "pay_001", verified.PaymentID)

	record, err := f.payments.GetByGatewayOrderID(context.Background(), intent.GatewayOrderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCaptured, record.Status)
	assert.Equal(t, "pay_001", record.GatewayPaymentID)
	assert.Equal(t, signature, record.GatewaySignature)

	// payment capture is written before the order transition
	assert.False(t, f.payments.markCapturedTime.After(f.orders.markPaidTime))

	// automatic transition leaves an audit event
	events, err := f.tracking.ListByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "processing", events[1].Status)
}

func TestVerify_InvalidSignature(t *testing.T) {
	f := newPaymentFixture()
	order := f.placedOrder(t)
	intent, err := f.service.CreateIntent(context.Background(), order.ID, order.UserID)
	require.NoError(t, err)

	_, err = f.service.Verify(context.Background(), intent.GatewayOrderID, "pay_001", "forged-signature")

	require.ErrorIs(t, err, ErrSignatureMismatch)

	record, err := f.payments.GetByGatewayOrderID(context.Background(), intent.GatewayOrderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, record.Status)
	assert.Equal(t, "Invalid signature", record.FailureReason)

	// the order is untouched on mismatch
	unchanged, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, unchanged.Status)
	assert.Equal(t, models.PaymentStatePending, unchanged.PaymentStatus)
}

func TestVerify_Idempotent(t *testing.T) {
	f := newPaymentFixture()
	order := f.placedOrder(t)
	intent, err := f.service.CreateIntent(context.Background(), order.ID, order.UserID)
	require.NoError(t, err)

	signature := payment.Sign(intent.GatewayOrderID, "pay_001", testSecret)
	_, err = f.service.Verify(context.Background(), intent.GatewayOrderID, "pay_001", signature)
	require.NoError(t, err)

	eventsBefore := len(f.tracking.events)

	// duplicate callback must not regress state or duplicate events
	verified, err := f.service.Verify(context.Background(), intent.GatewayOrderID, "pay_001", signature)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, verified.Status)
	assert.Equal(t, models.PaymentStatePaid, verified.PaymentStatus)
	assert.Len(t, f.tracking.events, eventsBefore)
}

func TestVerify_UnknownGatewayOrder(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.service.Verify(context.Background(), "order_MISSING", "pay_001", "sig")

	require.ErrorIs(t, err, repository.ErrPaymentNotFound)
}

// Full checkout walk: place order, capture payment, deliver.
func TestCheckoutLifecycle(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	order, err := f.orderSvc.CreateOrder(ctx, primitive.NewObjectID(), validInput())
	require.NoError(t, err)
	assert.Equal(t, 250.0, order.Subtotal)
	assert.Equal(t, 300.0, order.Total)

	intent, err := f.service.CreateIntent(ctx, order.ID, order.UserID)
	require.NoError(t, err)

	signature := payment.Sign(intent.GatewayOrderID, "pay_123", testSecret)
	paid, err := f.service.Verify(ctx, intent.GatewayOrderID, "pay_123", signature)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, paid.Status)
	assert.Equal(t, models.PaymentStatePaid, paid.PaymentStatus)

	delivered, err := f.orderSvc.UpdateStatus(ctx, order.ID, models.OrderStatusDelivered, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, delivered.Status)
	// payment axis survives fulfillment transitions
	assert.Equal(t, models.PaymentStatePaid, delivered.PaymentStatus)
}

func TestVerify_ForgedCallbackAfterCapture(t *testing.T) {
	f := newPaymentFixture()
	order := f.placedOrder(t)
	intent, err := f.service.CreateIntent(context.Background(), order.ID, order.UserID)
	require.NoError(t, err)

	signature := payment.Sign(intent.GatewayOrderID, "pay_001", testSecret)
	_, err = f.service.Verify(context.Background(), intent.GatewayOrderID, "pay_001", signature)
	require.NoError(t, err)

	// a forged retry is rejected without touching the captured record
	_, err = f.service.Verify(context.Background(), intent.GatewayOrderID, "pay_999", "forged-signature")
	require.ErrorIs(t, err, ErrSignatureMismatch)

	record, err := f.payments.GetByGatewayOrderID(context.Background(), intent.GatewayOrderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCaptured, record.Status)
	assert.Zero(t, f.payments.failedCalls)

	refreshed, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatePaid, refreshed.PaymentStatus)
}
