package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrackingEvent is one entry in the append-only per-order audit trail.
// Events are never updated or deleted; Order.Status is the current
// projection of this log.
type TrackingEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID     primitive.ObjectID `bson:"order_id" json:"order_id"`
	Status      string             `bson:"status" json:"status"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Description string             `bson:"description" json:"description"`
	UpdatedBy   primitive.ObjectID `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}
