package storage

import (
	"context"
)

// SnapshotName identifies one persisted sub-store image
type SnapshotName string

const (
	SnapshotAccounts SnapshotName = "accounts"
	SnapshotCatalog  SnapshotName = "catalog"
	SnapshotDay      SnapshotName = "day"
	SnapshotQueue    SnapshotName = "queue"
)

// AllSnapshots lists every snapshot the gateway writes, in restore order
var AllSnapshots = []SnapshotName{
	SnapshotCatalog,
	SnapshotAccounts,
	SnapshotDay,
	SnapshotQueue,
}

// Storage defines durable storage for opaque snapshot blobs.
// A blob is written whole or not at all.
type Storage interface {
	SaveSnapshot(ctx context.Context, name SnapshotName, data []byte) error
	// LoadSnapshot returns model.ErrSnapshotNotFound when nothing was saved under name
	LoadSnapshot(ctx context.Context, name SnapshotName) ([]byte, error)
	DeleteSnapshot(ctx context.Context, name SnapshotName) error
	ListSnapshots(ctx context.Context) ([]SnapshotName, error)
	Close() error
}
