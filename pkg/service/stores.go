package service

import (
	"context"

	"github.com/example/candleshop/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces are satisfied by pkg/repository and by the mocks
// in the package tests.

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID, paymentID string) (*models.Order, error)
}

type PaymentStore interface {
	Insert(ctx context.Context, payment *models.Payment) error
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error)
	MarkCaptured(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*models.Payment, error)
	MarkFailed(ctx context.Context, gatewayOrderID, reason string) (*models.Payment, error)
}

type TrackingStore interface {
	Append(ctx context.Context, event *models.TrackingEvent) error
	ListByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.TrackingEvent, error)
}

type ProductStore interface {
	ListAll(ctx context.Context) ([]models.Product, error)
}

type OrderCache interface {
	CacheOrder(ctx context.Context, order *models.Order) error
	GetCachedOrder(ctx context.Context, orderID string) (*models.Order, error)
	InvalidateOrder(ctx context.Context, orderID string) error
}
