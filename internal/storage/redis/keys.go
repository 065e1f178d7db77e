package redis

import (
	"fmt"

	"github.com/mcoot/jukebox/internal/storage"
)

// snapshotKey returns the Redis key for a snapshot blob
func snapshotKey(prefix string, name storage.SnapshotName) string {
	return fmt.Sprintf("%s:snapshot:%s", prefix, name)
}

// snapshotIndexKey returns the Redis key for the SET of saved snapshot names
func snapshotIndexKey(prefix string) string {
	return fmt.Sprintf("%s:idx:snapshots", prefix)
}
