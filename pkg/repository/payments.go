package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/candleshop/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository struct {
	collection *mongo.Collection
}

func (r *PaymentRepository) Insert(ctx context.Context, payment *models.Payment) error {
	now := time.Now()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		payment.ID = oid
	}
	return nil
}

func (r *PaymentRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"gateway_order_id": gatewayOrderID}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

// MarkCaptured records the gateway payment id and signature along
// with the captured status. This write happens before the order is
// touched, so a crash between the two leaves the order lagging rather
// than falsely advanced.
func (r *PaymentRepository) MarkCaptured(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*models.Payment, error) {
	update := bson.M{"$set": bson.M{
		"gateway_payment_id": gatewayPaymentID,
		"gateway_signature":  signature,
		"status":             models.PaymentStatusCaptured,
		"updated_at":         time.Now(),
	}}
	return r.findOneAndUpdate(ctx, gatewayOrderID, update)
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, gatewayOrderID, reason string) (*models.Payment, error) {
	update := bson.M{"$set": bson.M{
		"status":         models.PaymentStatusFailed,
		"failure_reason": reason,
		"updated_at":     time.Now(),
	}}
	return r.findOneAndUpdate(ctx, gatewayOrderID, update)
}

func (r *PaymentRepository) findOneAndUpdate(ctx context.Context, gatewayOrderID string, update bson.M) (*models.Payment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var payment models.Payment
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"gateway_order_id": gatewayOrderID}, update, opts).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	return &payment, nil
}
