package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"delivery-notify-service/internal/domain"
	"delivery-notify-service/internal/platform/obs"
	"delivery-notify-service/internal/services"

	"github.com/redis/go-redis/v9"
)

// RedisBatchStore keeps the flattened rows as one JSON document under Key,
// so a save is a single atomic SET.
type RedisBatchStore struct {
	Client *redis.Client
	Key    string
}

func NewRedisBatchStore(client *redis.Client, key string) *RedisBatchStore {
	if key == "" {
		key = "notify:rows"
	}
	return &RedisBatchStore{Client: client, Key: key}
}

func (s *RedisBatchStore) Load(ctx context.Context) (_ map[string]*domain.Batch, err error) {
	defer obs.Time(ctx, "redis.store.Load")(&err)

	raw, err := s.Client.Get(ctx, s.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[string]*domain.Batch{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load batches: redis get %q: %w", s.Key, err)
	}

	var rows []services.Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("load batches: decode %q: %w", s.Key, err)
	}
	return services.Unflatten(rows)
}

func (s *RedisBatchStore) Save(ctx context.Context, batches map[string]*domain.Batch) (err error) {
	defer obs.Time(ctx, "redis.store.Save")(&err)

	raw, err := json.Marshal(services.Flatten(batches))
	if err != nil {
		return fmt.Errorf("save batches: encode rows: %w", err)
	}
	if err := s.Client.Set(ctx, s.Key, raw, 0).Err(); err != nil {
		return fmt.Errorf("save batches: redis set %q: %w", s.Key, err)
	}
	return nil
}
