package storage

import "os"

// EnsureDir ensures a snapshot directory exists with owner-only permissions.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}
