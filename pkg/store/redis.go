package store

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/pagepack/pagepack/pkg/doc"
	"github.com/pagepack/pagepack/pkg/docio"
	"github.com/pagepack/pagepack/pkg/observability"
)

// RedisStore keeps documents in Redis, one key per document plus a set
// indexing all IDs for List.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets an expiration on stored documents. Zero (the default)
// means no expiration. Expired documents also disappear from List.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// WithPrefix overrides the key prefix (default "pagepack:doc:").
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// NewRedisStore creates a Redis-backed store over an existing client.
// The caller keeps ownership of the client unless Close is used.
func NewRedisStore(client *backend.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "pagepack:doc:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) indexKey() string { return s.prefix + "index" }

// Get retrieves a document by ID.
func (s *RedisStore) Get(ctx context.Context, id string) (d *doc.Document, err error) {
	defer func() { observability.Store().OnLoad(ctx, "redis", id, err == nil, err) }()

	if err = ValidateID(id); err != nil {
		return nil, err
	}

	data, getErr := s.client.Get(ctx, s.key(id)).Bytes()
	if getErr == backend.Nil {
		// Expired or never stored; drop a stale index entry if present.
		s.client.SRem(ctx, s.indexKey(), id)
		err = ErrNotFound
		return nil, err
	}
	if getErr != nil {
		err = fmt.Errorf("redis get: %w", getErr)
		return nil, err
	}

	d, err = docio.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parse document %s: %w", id, err)
	}
	return d, nil
}

// Put stores a document under the given ID.
func (s *RedisStore) Put(ctx context.Context, id string, d *doc.Document) (err error) {
	defer func() { observability.Store().OnSave(ctx, "redis", id, err) }()

	if err = ValidateID(id); err != nil {
		return err
	}

	data, err := docio.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(id), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), id)
	if _, pipeErr := pipe.Exec(ctx); pipeErr != nil {
		err = fmt.Errorf("redis set: %w", pipeErr)
		return err
	}
	return nil
}

// Delete removes a document. Deleting a missing ID is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.SRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// List returns the IDs of all stored documents.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	return ids, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
