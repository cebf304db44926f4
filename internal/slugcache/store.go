package slugcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/notionblog/notionblog/internal/slugindex"
)

var (
	// ErrSnapshotNotFound is returned by a SnapshotStore holding no snapshot.
	ErrSnapshotNotFound = errors.New("slugcache: shared snapshot not found")

	// ErrSnapshotCorrupt is returned when a stored snapshot cannot be decoded.
	ErrSnapshotCorrupt = errors.New("slugcache: shared snapshot corrupt")
)

// SnapshotStore shares index snapshots between instances.
type SnapshotStore interface {
	Load(ctx context.Context) (*slugindex.Index, error)
	Save(ctx context.Context, idx *slugindex.Index) error
}

const (
	defaultStorePrefix    = "notionblog"
	defaultStoreRetention = 24 * time.Hour
	snapshotKey           = "slugindex:v1"
)

type storedSnapshot struct {
	BuiltAt time.Time         `json:"built_at"`
	Entries []slugindex.Entry `json:"entries"`
}

// RedisStore keeps the latest snapshot under a single Redis key.
type RedisStore struct {
	client    redis.UniversalClient
	key       string
	retention time.Duration
}

var _ SnapshotStore = (*RedisStore)(nil)

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the key namespace. Default is "notionblog".
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.key = prefix + ":" + snapshotKey
		}
	}
}

// WithRetention sets how long a saved snapshot is kept. A stale snapshot is
// still useful as an outage fallback, so this is normally much longer than
// the cache TTL.
func WithRetention(d time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

// NewRedisStore creates a RedisStore. The client should come from pkg/redis.Open.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		key:       defaultStorePrefix + ":" + snapshotKey,
		retention: defaultStoreRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the stored snapshot or ErrSnapshotNotFound.
func (s *RedisStore) Load(ctx context.Context) (*slugindex.Index, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}

	var snap storedSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Join(ErrSnapshotCorrupt, err)
	}
	idx, err := slugindex.New(snap.Entries, snap.BuiltAt)
	if err != nil {
		return nil, errors.Join(ErrSnapshotCorrupt, err)
	}
	return idx, nil
}

// Save replaces the stored snapshot.
func (s *RedisStore) Save(ctx context.Context, idx *slugindex.Index) error {
	data, err := json.Marshal(storedSnapshot{BuiltAt: idx.BuiltAt(), Entries: idx.Entries()})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, s.retention).Err()
}

// Delete removes the stored snapshot.
func (s *RedisStore) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
