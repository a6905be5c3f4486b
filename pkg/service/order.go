package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/example/candleshop/pkg/models"
	"github.com/example/candleshop/pkg/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// totals are compared with a small tolerance to absorb float noise
// from client-side arithmetic
const totalsEpsilon = 0.01

type OrderService struct {
	orders   OrderStore
	tracking TrackingStore
	cache    OrderCache
	logger   *zap.Logger
}

func NewOrderService(orders OrderStore, tracking TrackingStore, cache OrderCache, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		tracking: tracking,
		cache:    cache,
		logger:   logger,
	}
}

type CreateOrderInput struct {
	Items           []models.OrderItem
	CustomerInfo    models.CustomerInfo
	ShippingAddress models.ShippingAddress
	Subtotal        float64
	Tax             float64
	Shipping        float64
	Total           float64
}

// CreateOrder persists a new order from a checkout snapshot. Item
// prices and totals are trusted as given: they capture the price at
// the time of purchase and are never recomputed from the catalog.
func (s *OrderService) CreateOrder(ctx context.Context, userID primitive.ObjectID, input *CreateOrderInput) (*models.Order, error) {
	if err := validateOrderInput(input); err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderNumber:     newOrderNumber(),
		UserID:          userID,
		CustomerInfo:    input.CustomerInfo,
		Items:           input.Items,
		ShippingAddress: input.ShippingAddress,
		Subtotal:        input.Subtotal,
		Tax:             input.Tax,
		Shipping:        input.Shipping,
		Total:           input.Total,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatePending,
	}

	// Unique index on order_number catches the rare collision;
	// regenerate and retry instead of failing the checkout.
	for attempt := 0; ; attempt++ {
		err := s.orders.Insert(ctx, order)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateOrderNumber) && attempt < 3 {
			order.OrderNumber = newOrderNumber()
			continue
		}
		return nil, err
	}

	event := &models.TrackingEvent{
		OrderID:     order.ID,
		Status:      models.OrderStatusPending.String(),
		Description: "Order placed successfully",
	}
	if err := s.tracking.Append(ctx, event); err != nil {
		// The order exists; a missing first tracking event is worth a
		// log line, not a failed checkout.
		s.logger.Error("Failed to append initial tracking event",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
	}

	if err := s.cache.CacheOrder(ctx, order); err != nil {
		s.logger.Warn("Failed to cache order", zap.String("order_id", order.ID.Hex()), zap.Error(err))
	}

	s.logger.Info("Order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID.Hex()),
		zap.Float64("total", order.Total))

	return order, nil
}

// GetOrder reads through the cache: a hit skips MongoDB entirely, a
// miss (or a Redis failure) falls back and refreshes the entry.
func (s *OrderService) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	cached, err := s.cache.GetCachedOrder(ctx, id.Hex())
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, repository.ErrOrderNotCached) {
		s.logger.Warn("Order cache read failed", zap.String("order_id", id.Hex()), zap.Error(err))
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.CacheOrder(ctx, order); err != nil {
		s.logger.Warn("Failed to cache order", zap.String("order_id", id.Hex()), zap.Error(err))
	}
	return order, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.ListAll(ctx)
}

func (s *OrderService) OrderTimeline(ctx context.Context, orderID primitive.ObjectID) ([]models.TrackingEvent, error) {
	return s.tracking.ListByOrder(ctx, orderID)
}

// UpdateStatus applies an admin-driven fulfillment transition. The
// status set is a flat enum: any state may move to any other state.
// Every transition appends a tracking event and bumps updated_at.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, status models.OrderStatus, actorID primitive.ObjectID) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrValidation, status)
	}

	order, err := s.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}

	event := &models.TrackingEvent{
		OrderID:     order.ID,
		Status:      status.String(),
		Description: fmt.Sprintf("Order status updated to %s", status),
		UpdatedBy:   actorID,
	}
	if err := s.tracking.Append(ctx, event); err != nil {
		s.logger.Error("Failed to append tracking event",
			zap.String("order_id", order.ID.Hex()), zap.Error(err))
	}

	if err := s.cache.InvalidateOrder(ctx, order.ID.Hex()); err != nil {
		s.logger.Warn("Failed to invalidate order cache", zap.Error(err))
	}

	s.logger.Info("Order status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", status.String()),
		zap.String("updated_by", actorID.Hex()))

	return order, nil
}

func validateOrderInput(input *CreateOrderInput) error {
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: order has no items", ErrValidation)
	}
	for i, item := range input.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %d has quantity %d", ErrValidation, i, item.Quantity)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: item %d has negative price", ErrValidation, i)
		}
	}
	addr := input.ShippingAddress
	if addr.Street == "" || addr.City == "" || addr.State == "" || addr.Pincode == "" {
		return fmt.Errorf("%w: incomplete shipping address", ErrValidation)
	}
	if input.CustomerInfo.Name == "" || input.CustomerInfo.Email == "" {
		return fmt.Errorf("%w: incomplete customer info", ErrValidation)
	}
	if math.Abs(input.Total-(input.Subtotal+input.Shipping+input.Tax)) > totalsEpsilon {
		return fmt.Errorf("%w: total does not equal subtotal + shipping + tax", ErrValidation)
	}
	return nil
}

// newOrderNumber builds a human-readable, roughly chronological
// identifier: ORD-<last 6 digits of unix millis>-<3 random digits>.
func newOrderNumber() string {
	ts := fmt.Sprintf("%d", time.Now().UnixMilli())
	return fmt.Sprintf("ORD-%s-%03d", ts[len(ts)-6:], rand.Intn(1000))
}
