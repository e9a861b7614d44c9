package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/models"
)

// cartSchemaVersion tags the persisted envelope so a future format
// change can detect and discard stale carts instead of misreading them.
const cartSchemaVersion = 1

const cartKey = "storefront:cart"

// cartEnvelope is the persisted shape of the cart.
type cartEnvelope struct {
	Version   int               `json:"version"`
	Items     []models.CartItem `json:"items"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func encodeCartEnvelope(items []models.CartItem) ([]byte, error) {
	return json.Marshal(cartEnvelope{
		Version:   cartSchemaVersion,
		Items:     items,
		UpdatedAt: time.Now(),
	})
}

// decodeCartEnvelope rejects unreadable payloads and envelopes written
// by a different schema version.
func decodeCartEnvelope(data []byte) ([]models.CartItem, error) {
	var env cartEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("corrupt persisted cart: %w", err)
	}
	if env.Version != cartSchemaVersion {
		return nil, fmt.Errorf("persisted cart version %d, want %d", env.Version, cartSchemaVersion)
	}
	return env.Items, nil
}

// CartRepository persists the cart item list under one fixed key.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Load returns the persisted item list. A missing key, an unreadable
// value, or a version mismatch all yield an empty list: the persisted
// cart is a cache, not a system of record.
func (r *CartRepository) Load(ctx context.Context) ([]models.CartItem, error) {
	data, err := r.client.Get(ctx, cartKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return decodeCartEnvelope([]byte(data))
}

// Save overwrites the persisted item list.
func (r *CartRepository) Save(ctx context.Context, items []models.CartItem) error {
	data, err := encodeCartEnvelope(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, cartKey, data, r.ttl).Err()
}

// Delete removes the persisted cart.
func (r *CartRepository) Delete(ctx context.Context) error {
	return r.client.Del(ctx, cartKey).Err()
}
