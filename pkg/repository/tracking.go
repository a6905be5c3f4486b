package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/example/candleshop/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TrackingRepository holds the append-only order audit trail. There
// is deliberately no update or delete here.
type TrackingRepository struct {
	collection *mongo.Collection
}

func (r *TrackingRepository) Append(ctx context.Context, event *models.TrackingEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	res, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to append tracking event: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		event.ID = oid
	}
	return nil
}

func (r *TrackingRepository) ListByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.TrackingEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []models.TrackingEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode tracking events: %w", err)
	}
	return events, nil
}
