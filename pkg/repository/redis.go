package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/candleshop/pkg/config"
	"github.com/example/candleshop/pkg/models"
	"github.com/go-redis/redis/v8"
)

var ErrSessionNotFound = errors.New("session not found")

type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

// Session is the authenticated-user snapshot stored per login token.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (r *RedisRepository) SaveSession(ctx context.Context, token string, session *Session, ttl time.Duration) error {
	return r.SetJSON(ctx, sessionKey(token), session, ttl)
}

func (r *RedisRepository) GetSession(ctx context.Context, token string) (*Session, error) {
	var session Session
	err := r.GetJSON(ctx, sessionKey(token), &session)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *RedisRepository) DeleteSession(ctx context.Context, token string) error {
	return r.client.Del(ctx, sessionKey(token)).Err()
}

// ErrOrderNotCached reports an order cache miss. Callers fall back
// to MongoDB.
var ErrOrderNotCached = errors.New("order not cached")

const orderCacheTTL = 30 * time.Minute

func orderKey(orderID string) string {
	return fmt.Sprintf("order:%s", orderID)
}

func (r *RedisRepository) CacheOrder(ctx context.Context, order *models.Order) error {
	return r.SetJSON(ctx, orderKey(order.ID.Hex()), order, orderCacheTTL)
}

func (r *RedisRepository) GetCachedOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := r.GetJSON(ctx, orderKey(orderID), &order); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrOrderNotCached
		}
		return nil, err
	}
	return &order, nil
}

func (r *RedisRepository) InvalidateOrder(ctx context.Context, orderID string) error {
	return r.client.Del(ctx, orderKey(orderID)).Err()
}
