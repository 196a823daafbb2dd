package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// StagingStore holds imports between extraction and commit.
type StagingStore interface {
	Save(ctx context.Context, imp *StagedImport, ttl time.Duration) error
	Get(ctx context.Context, id uuid.UUID) (*StagedImport, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStagingStore keeps imports in process. Entries are stored encoded so
// callers never share a mutable draft.
type MemoryStagingStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]memoryEntry
	now     func() time.Time
}

func NewMemoryStagingStore() *MemoryStagingStore {
	return &MemoryStagingStore{entries: make(map[uuid.UUID]memoryEntry), now: time.Now}
}

func (s *MemoryStagingStore) Save(_ context.Context, imp *StagedImport, ttl time.Duration) error {
	data, err := json.Marshal(imp)
	if err != nil {
		return fmt.Errorf("encode staged import: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
	s.entries[imp.ID] = memoryEntry{data: data, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStagingStore) Get(_ context.Context, id uuid.UUID) (*StagedImport, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok && s.now().After(e.expiresAt) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("import: %w", ErrNotFound)
	}
	var imp StagedImport
	if err := json.Unmarshal(e.data, &imp); err != nil {
		return nil, fmt.Errorf("decode staged import: %w", err)
	}
	return &imp, nil
}

func (s *MemoryStagingStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// RedisStagingStore shares staged imports between replicas.
type RedisStagingStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStagingStore(client *redis.Client) *RedisStagingStore {
	return &RedisStagingStore{client: client, prefix: "import:"}
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisStagingStore) key(id uuid.UUID) string { return s.prefix + id.String() }

func (s *RedisStagingStore) Save(ctx context.Context, imp *StagedImport, ttl time.Duration) error {
	data, err := json.Marshal(imp)
	if err != nil {
		return fmt.Errorf("encode staged import: %w", err)
	}
	if err := s.client.Set(ctx, s.key(imp.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStagingStore) Get(ctx context.Context, id uuid.UUID) (*StagedImport, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("import: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var imp StagedImport
	if err := json.Unmarshal(data, &imp); err != nil {
		return nil, fmt.Errorf("decode staged import: %w", err)
	}
	return &imp, nil
}

func (s *RedisStagingStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.Del(ctx, s.key(id)).Err()
}
