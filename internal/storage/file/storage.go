package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/jukebox/internal/model"
	"github.com/mcoot/jukebox/internal/storage"
)

const snapshotExt = ".snapshot"

// Storage keeps one file per snapshot under a directory.
// Saves go through a temp file and a rename so a reader never sees a torn blob.
type Storage struct {
	dir string
	mu  sync.Mutex
}

// New creates the directory if needed and returns a file-backed storage
func New(dir string) (*Storage, error) {
	if dir == "" {
		return nil, errors.New("file storage: directory is required")
	}
	if err := storage.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("file storage: create %s: %w", dir, err)
	}
	return &Storage{dir: dir}, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Dir returns the directory snapshots are written to
func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) path(name storage.SnapshotName) string {
	return filepath.Join(s.dir, string(name)+snapshotExt)
}

func (s *Storage) SaveSnapshot(ctx context.Context, name storage.SnapshotName, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+string(name)+"-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	committed = true
	return nil
}

func (s *Storage) LoadSnapshot(ctx context.Context, name storage.SnapshotName) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.ErrSnapshotNotFound
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return io.ReadAll(f)
}

func (s *Storage) DeleteSnapshot(ctx context.Context, name storage.SnapshotName) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Storage) ListSnapshots(ctx context.Context) ([]storage.SnapshotName, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	names := make([]storage.SnapshotName, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		base, ok := strings.CutSuffix(entry.Name(), snapshotExt)
		if !ok {
			continue
		}
		names = append(names, storage.SnapshotName(base))
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names, nil
}

// Close is a no-op; files are closed after every operation
func (s *Storage) Close() error {
	return nil
}
