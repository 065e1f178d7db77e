package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/jukebox/internal/model"
	"github.com/mcoot/jukebox/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu        sync.RWMutex
	snapshots map[storage.SnapshotName][]byte
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		snapshots: make(map[storage.SnapshotName][]byte),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveSnapshot(ctx context.Context, name storage.SnapshotName, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[name] = append([]byte(nil), data...)
	return nil
}

func (s *Storage) LoadSnapshot(ctx context.Context, name storage.SnapshotName) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.snapshots[name]
	if !ok {
		return nil, model.ErrSnapshotNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *Storage) DeleteSnapshot(ctx context.Context, name storage.SnapshotName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, name)
	return nil
}

func (s *Storage) ListSnapshots(ctx context.Context) ([]storage.SnapshotName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]storage.SnapshotName, 0, len(s.snapshots))
	for name := range s.snapshots {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names, nil
}

func (s *Storage) Close() error {
	return nil
}
