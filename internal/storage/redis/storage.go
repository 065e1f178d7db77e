package redis

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/jukebox/internal/model"
	"github.com/mcoot/jukebox/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveSnapshot(ctx context.Context, name storage.SnapshotName, data []byte) error {
	// MULTI/EXEC so the blob and its index entry land together
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, snapshotKey(s.cfg.KeyPrefix, name), data, s.cfg.SnapshotTTL)
	pipe.SAdd(ctx, snapshotIndexKey(s.cfg.KeyPrefix), string(name))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) LoadSnapshot(ctx context.Context, name storage.SnapshotName) ([]byte, error) {
	data, err := s.client.Get(ctx, snapshotKey(s.cfg.KeyPrefix, name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSnapshotNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Storage) DeleteSnapshot(ctx context.Context, name storage.SnapshotName) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, snapshotKey(s.cfg.KeyPrefix, name))
	pipe.SRem(ctx, snapshotIndexKey(s.cfg.KeyPrefix), string(name))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListSnapshots(ctx context.Context) ([]storage.SnapshotName, error) {
	members, err := s.client.SMembers(ctx, snapshotIndexKey(s.cfg.KeyPrefix)).Result()
	if err != nil {
		return nil, err
	}

	if len(members) == 0 {
		return []storage.SnapshotName{}, nil
	}

	// Index entries can outlive blobs that expired via SnapshotTTL
	keys := make([]string, len(members))
	for i, member := range members {
		keys[i] = snapshotKey(s.cfg.KeyPrefix, storage.SnapshotName(member))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	names := make([]storage.SnapshotName, 0, len(members))
	for i, val := range values {
		if val == nil {
			continue
		}
		names = append(names, storage.SnapshotName(members[i]))
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names, nil
}
