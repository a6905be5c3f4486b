package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentStatusCreated    PaymentStatus = "created"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusCaptured   PaymentStatus = "captured"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// Payment records one checkout attempt against the payment gateway.
// An order gets a second Payment record only when a prior attempt
// failed and checkout is retried.
type Payment struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID          primitive.ObjectID `bson:"order_id" json:"order_id"`
	UserID           primitive.ObjectID `bson:"user_id" json:"user_id"`
	GatewayOrderID   string             `bson:"gateway_order_id" json:"gateway_order_id"`
	GatewayPaymentID string             `bson:"gateway_payment_id,omitempty" json:"gateway_payment_id,omitempty"`
	GatewaySignature string             `bson:"gateway_signature,omitempty" json:"-"`
	Amount           float64            `bson:"amount" json:"amount"`
	Currency         string             `bson:"currency" json:"currency"`
	Status           PaymentStatus      `bson:"status" json:"status"`
	Method           string             `bson:"method,omitempty" json:"method,omitempty"`
	FailureReason    string             `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	RefundID         string             `bson:"refund_id,omitempty" json:"refund_id,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}
