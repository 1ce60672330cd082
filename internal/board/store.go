package board

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FilterStore persists per-tab filter snapshots between sessions. Keys are
// opaque strings; the controller derives them from a fixed prefix plus the
// tab name.
type FilterStore interface {
	Get(ctx context.Context, key string) (Filters, bool, error)
	Set(ctx context.Context, key string, filters Filters) error
}

// MemoryFilterStore is a process-local FilterStore.
type MemoryFilterStore struct {
	mu        sync.RWMutex
	snapshots map[string]Filters
}

// NewMemoryFilterStore creates an empty MemoryFilterStore.
func NewMemoryFilterStore() *MemoryFilterStore {
	return &MemoryFilterStore{snapshots: make(map[string]Filters)}
}

func (s *MemoryFilterStore) Get(ctx context.Context, key string) (Filters, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filters, ok := s.snapshots[key]
	return filters, ok, nil
}

func (s *MemoryFilterStore) Set(ctx context.Context, key string, filters Filters) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[key] = filters
	return nil
}

// filterSnapshotTTL keeps abandoned snapshots from accumulating in Redis.
const filterSnapshotTTL = 30 * 24 * time.Hour

// RedisFilterStore persists snapshots in Redis so they survive restarts and
// follow the user across instances.
type RedisFilterStore struct {
	client *redis.Client
}

// NewRedisFilterStore creates a FilterStore backed by the given client.
func NewRedisFilterStore(client *redis.Client) *RedisFilterStore {
	return &RedisFilterStore{client: client}
}

func (s *RedisFilterStore) Get(ctx context.Context, key string) (Filters, bool, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return Filters{}, false, nil
	}
	if err != nil {
		return Filters{}, false, err
	}

	var filters Filters
	if err := json.Unmarshal([]byte(raw), &filters); err != nil {
		return Filters{}, false, err
	}
	return filters, true, nil
}

func (s *RedisFilterStore) Set(ctx context.Context, key string, filters Filters) error {
	raw, err := json.Marshal(filters)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, raw, filterSnapshotTTL).Err()
}
