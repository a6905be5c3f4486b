package repository

import (
	"context"
	"time"

	"github.com/example/candleshop/pkg/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collUsers    = "users"
	collProducts = "products"
	collOrders   = "orders"
	collPayments = "payments"
	collTracking = "order_tracking"
)

type MongoRepository struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoDBConfig
}

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return &MongoRepository{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

// EnsureIndexes creates the unique constraints the write paths rely
// on: user emails, order numbers and gateway order ids. Order-number
// uniqueness is enforced here rather than checked before insert, so a
// rare collision surfaces as a duplicate-key error and the insert is
// retried with a fresh number.
func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := m.database.Collection(collUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	_, err = m.database.Collection(collOrders).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "order_number", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	_, err = m.database.Collection(collPayments).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "gateway_order_id", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	_, err = m.database.Collection(collTracking).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	return err
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoRepository) Users() *UserRepository {
	return &UserRepository{collection: m.database.Collection(collUsers)}
}

func (m *MongoRepository) Products() *ProductRepository {
	return &ProductRepository{collection: m.database.Collection(collProducts)}
}

func (m *MongoRepository) Orders() *OrderRepository {
	return &OrderRepository{collection: m.database.Collection(collOrders)}
}

func (m *MongoRepository) Payments() *PaymentRepository {
	return &PaymentRepository{collection: m.database.Collection(collPayments)}
}

func (m *MongoRepository) Tracking() *TrackingRepository {
	return &TrackingRepository{collection: m.database.Collection(collTracking)}
}
