// Package redis stores saved workflows in Redis.
//
// Each workflow is a JSON string under <prefix>workflow:<id>; a hash at
// <prefix>workflows maps ids to JSON-encoded summaries.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/canicai/canicai/pkg/persist"
	"github.com/canicai/canicai/pkg/store"
)

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces all keys. Defaults to "canicai:".
	Prefix string
}

// Store implements store.Store on Redis.
type Store struct {
	client  redis.UniversalClient
	prefix  string
	owned   bool
	nowFunc func() time.Time
}

// New connects to Redis and returns a store that owns the client.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	s := NewWithClient(client, cfg.Prefix)
	s.owned = true
	return s, nil
}

// NewWithClient wraps an existing client. Close leaves the client open.
func NewWithClient(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "canicai:"
	}
	return &Store{client: client, prefix: prefix, nowFunc: time.Now}
}

func (s *Store) key(id string) string { return s.prefix + "workflow:" + id }
func (s *Store) indexKey() string     { return s.prefix + "workflows" }

func (s *Store) Load(ctx context.Context, id string) (*persist.SavedWorkflow, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: load %s: %w", id, err)
	}
	return persist.Unmarshal(data)
}

func (s *Store) Save(ctx context.Context, saved *persist.SavedWorkflow) error {
	if saved.ID == "" {
		return fmt.Errorf("redis: workflow has no id")
	}
	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("redis: marshal workflow: %w", err)
	}
	summary, err := json.Marshal(store.SummaryOf(saved, s.nowFunc()))
	if err != nil {
		return fmt.Errorf("redis: marshal summary: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(saved.ID), data, 0)
		pipe.HSet(ctx, s.indexKey(), saved.ID, summary)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: save %s: %w", saved.ID, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	entries, err := s.client.HGetAll(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list: %w", err)
	}
	out := make([]store.Summary, 0, len(entries))
	for id, raw := range entries {
		var sum store.Summary
		if err := json.Unmarshal([]byte(raw), &sum); err != nil {
			return nil, fmt.Errorf("redis: parse summary %s: %w", id, err)
		}
		out = append(out, sum)
	}
	store.SortSummaries(out)
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		pipe.HDel(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: delete %s: %w", id, err)
	}
	return nil
}

func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

var _ store.Store = (*Store)(nil)
