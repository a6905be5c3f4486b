package service

import (
	"context"
	"math"

	"github.com/example/candleshop/pkg/config"
	"github.com/example/candleshop/pkg/models"
	"github.com/example/candleshop/pkg/payment"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type PaymentService struct {
	orders   OrderStore
	payments PaymentStore
	tracking TrackingStore
	cache    OrderCache
	gateway  payment.Gateway
	keyID    string
	secret   string
	logger   *zap.Logger
}

func NewPaymentService(
	orders OrderStore,
	payments PaymentStore,
	tracking TrackingStore,
	cache OrderCache,
	gateway payment.Gateway,
	cfg *config.RazorpayConfig,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		orders:   orders,
		payments: payments,
		tracking: tracking,
		cache:    cache,
		gateway:  gateway,
		keyID:    cfg.KeyID,
		secret:   cfg.Secret,
		logger:   logger,
	}
}

// PaymentIntent is what the checkout page needs to open the gateway
// widget. It carries the public key id, never the secret.
type PaymentIntent struct {
	GatewayOrderID string  `json:"gateway_order_id"`
	Amount         int64   `json:"amount"`
	Currency       string  `json:"currency"`
	KeyID          string  `json:"key_id"`
	OrderNumber    string  `json:"order_number"`
	Total          float64 `json:"total"`
}

// CreateIntent registers the order with the payment gateway and
// records a Payment in state "created". The amount is the order total
// in paise.
func (s *PaymentService) CreateIntent(ctx context.Context, orderID, userID primitive.ObjectID) (*PaymentIntent, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, &payment.CreateOrderRequest{
		Amount:   int64(math.Round(order.Total * 100)),
		Currency: "INR",
		Receipt:  order.OrderNumber,
		Notes: map[string]string{
			"order_id": order.ID.Hex(),
			"user_id":  userID.Hex(),
		},
	})
	if err != nil {
		s.logger.Error("Gateway order creation failed",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
		return nil, err
	}

	record := &models.Payment{
		OrderID:        order.ID,
		UserID:         userID,
		GatewayOrderID: gatewayOrder.ID,
		Amount:         order.Total,
		Currency:       gatewayOrder.Currency,
		Status:         models.PaymentStatusCreated,
	}
	if err := s.payments.Insert(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("Payment intent created",
		zap.String("order_number", order.OrderNumber),
		zap.String("gateway_order_id", gatewayOrder.ID),
		zap.Int64("amount_paise", gatewayOrder.Amount))

	return &PaymentIntent{
		GatewayOrderID: gatewayOrder.ID,
		Amount:         gatewayOrder.Amount,
		Currency:       gatewayOrder.Currency,
		KeyID:          s.keyID,
		OrderNumber:    order.OrderNumber,
		Total:          order.Total,
	}, nil
}

// Verify reconciles a gateway payment callback.
//
// On a valid signature the payment is marked captured before the
// order is touched, so a crash between the two writes leaves the
// order lagging rather than falsely advanced. A repeat callback for
// an already-captured payment is a no-op success. An invalid
// signature marks the payment failed and leaves the order unchanged.
func (s *PaymentService) Verify(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*models.Order, error) {
	record, err := s.payments.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}

	if !payment.VerifySignature(gatewayOrderID, gatewayPaymentID, signature, s.secret) {
		// A forged callback must not regress an already-captured
		// payment; the failure is only recorded pre-capture.
		if record.Status != models.PaymentStatusCaptured {
			if _, err := s.payments.MarkFailed(ctx, gatewayOrderID, "Invalid signature"); err != nil {
				s.logger.Error("Failed to record payment failure",
					zap.String("gateway_order_id", gatewayOrderID), zap.Error(err))
			}
		}
		s.logger.Warn("Payment signature mismatch",
			zap.String("gateway_order_id", gatewayOrderID))
		return nil, ErrSignatureMismatch
	}

	if record.Status == models.PaymentStatusCaptured {
		// Duplicate callback; the target state already holds.
		return s.orders.GetByID(ctx, record.OrderID)
	}

	if _, err := s.payments.MarkCaptured(ctx, gatewayOrderID, gatewayPaymentID, signature); err != nil {
		return nil, err
	}

	order, err := s.orders.MarkPaid(ctx, record.OrderID, gatewayPaymentID)
	if err != nil {
		return nil, err
	}

	event := &models.TrackingEvent{
		OrderID:     order.ID,
		Status:      models.OrderStatusProcessing.String(),
		Description: "Payment received, order is being processed",
	}
	if err := s.tracking.Append(ctx, event); err != nil {
		s.logger.Error("Failed to append tracking event",
			zap.String("order_id", order.ID.Hex()), zap.Error(err))
	}

	if err := s.cache.InvalidateOrder(ctx, order.ID.Hex()); err != nil {
		s.logger.Warn("Failed to invalidate order cache", zap.Error(err))
	}

	s.logger.Info("Payment captured",
		zap.String("order_number", order.OrderNumber),
		zap.String("gateway_payment_id", gatewayPaymentID))

	return order, nil
}
