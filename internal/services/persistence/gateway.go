package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/jukebox/internal/dependencies/clock"
	"github.com/mcoot/jukebox/internal/metrics"
	"github.com/mcoot/jukebox/internal/model"
	"github.com/mcoot/jukebox/internal/services/accounts"
	"github.com/mcoot/jukebox/internal/services/catalog"
	"github.com/mcoot/jukebox/internal/services/dayclock"
	"github.com/mcoot/jukebox/internal/services/queue"
	"github.com/mcoot/jukebox/internal/storage"
)

const (
	opSnapshot = "snapshot"
	opRestore  = "restore"
	opDiscard  = "discard"
)

// Stores groups the sub-stores the gateway persists
type Stores struct {
	Accounts *accounts.Store
	Catalog  *catalog.Catalog
	Day      *dayclock.Boundary
	Queue    *queue.Queue
}

// Gateway saves and restores the kiosk state as one blob per sub-store.
// Each sub-store is restored all-or-nothing.
type Gateway struct {
	storage  storage.Storage
	stores   Stores
	counters *sync.RWMutex
	sealer   Sealer
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a Gateway. A nil sealer stores snapshots unsealed.
func New(
	store storage.Storage,
	stores Stores,
	counters *sync.RWMutex,
	sealer Sealer,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Gateway {
	if sealer == nil {
		sealer = PlainSealer{}
	}
	return &Gateway{
		storage:  store,
		stores:   stores,
		counters: counters,
		sealer:   sealer,
		clock:    clk,
		metrics:  m,
		logger:   logger.With(slog.String("component", "persistence")),
	}
}

// Encode returns the unsealed image of one sub-store.
// Hold the counter lock in read mode for a consistent image.
func (g *Gateway) Encode(name storage.SnapshotName) ([]byte, error) {
	schema, err := schemaFor(name)
	if err != nil {
		return nil, err
	}

	now := g.clock.Now()
	switch name {
	case storage.SnapshotAccounts:
		return encodeEnvelope(schema, now, accountsPayload{Accounts: g.stores.Accounts.Records()})
	case storage.SnapshotCatalog:
		return encodeEnvelope(schema, now, catalogPayload{Tracks: g.stores.Catalog.Records()})
	case storage.SnapshotDay:
		return encodeEnvelope(schema, now, g.stores.Day.Record())
	default:
		return encodeEnvelope(schema, now, queuePayload{Entries: g.stores.Queue.Items()})
	}
}

// Decode parses an unsealed image and returns a function installing it.
// Nothing is changed until the returned function runs.
func (g *Gateway) Decode(name storage.SnapshotName, data []byte) (func() error, error) {
	switch name {
	case storage.SnapshotAccounts:
		records, err := decodeAccounts(data)
		if err != nil {
			return nil, err
		}
		return func() error { return g.stores.Accounts.Replace(records) }, nil
	case storage.SnapshotCatalog:
		records, err := decodeCatalog(data)
		if err != nil {
			return nil, err
		}
		return func() error { return g.stores.Catalog.Replace(records) }, nil
	case storage.SnapshotDay:
		rec, err := decodeDay(data)
		if err != nil {
			return nil, err
		}
		return func() error { return g.stores.Day.Restore(rec) }, nil
	case storage.SnapshotQueue:
		entries, err := decodeQueue(data)
		if err != nil {
			return nil, err
		}
		return func() error { return g.stores.Queue.Replace(entries) }, nil
	default:
		return nil, fmt.Errorf("unknown snapshot %q", name)
	}
}

// Snapshot persists one sub-store
func (g *Gateway) Snapshot(ctx context.Context, name storage.SnapshotName) error {
	g.counters.RLock()
	data, err := g.Encode(name)
	g.counters.RUnlock()
	if err != nil {
		g.metrics.ObserveSnapshot(string(name), opSnapshot, err)
		return fmt.Errorf("%w: %s: %w", model.ErrPersistFailed, name, err)
	}
	return g.write(ctx, name, data)
}

// SnapshotAll captures every sub-store under one read lock, then writes each blob.
// A failed write leaves the in-memory state untouched.
func (g *Gateway) SnapshotAll(ctx context.Context) error {
	images := make(map[storage.SnapshotName][]byte, len(storage.AllSnapshots))
	var errs []error

	g.counters.RLock()
	for _, name := range storage.AllSnapshots {
		data, err := g.Encode(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", model.ErrPersistFailed, name, err))
			continue
		}
		images[name] = data
	}
	g.counters.RUnlock()

	for _, name := range storage.AllSnapshots {
		data, ok := images[name]
		if !ok {
			continue
		}
		if err := g.write(ctx, name, data); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	g.logger.Info("snapshot saved", slog.Int("stores", len(images)))
	return nil
}

// Restore loads one sub-store
func (g *Gateway) Restore(ctx context.Context, name storage.SnapshotName) error {
	install, err := g.read(ctx, name)
	if err == nil {
		g.counters.Lock()
		err = install()
		g.counters.Unlock()
	}
	return g.restored(name, err)
}

// RestoreAll loads every sub-store. Decoding happens first, then every
// decoded image is installed under one write lock. A sub-store that fails
// keeps its current state.
func (g *Gateway) RestoreAll(ctx context.Context) (RestoreReport, error) {
	report := RestoreReport{Failed: make(map[storage.SnapshotName]error)}
	installs := make(map[storage.SnapshotName]func() error, len(storage.AllSnapshots))
	saved := g.saved(ctx)

	for _, name := range storage.AllSnapshots {
		if saved != nil && !saved[name] {
			report.Failed[name] = g.restored(name, model.ErrSnapshotNotFound)
			continue
		}
		install, err := g.read(ctx, name)
		if err != nil {
			report.Failed[name] = g.restored(name, err)
			continue
		}
		installs[name] = install
	}

	g.counters.Lock()
	for _, name := range storage.AllSnapshots {
		install, ok := installs[name]
		if !ok {
			continue
		}
		if err := install(); err != nil {
			report.Failed[name] = g.restored(name, err)
			continue
		}
		report.Restored = append(report.Restored, name)
	}
	g.counters.Unlock()

	for _, name := range report.Restored {
		_ = g.restored(name, nil)
	}
	return report, report.Err()
}

// DiscardAll deletes every saved snapshot. The in-memory state is untouched.
func (g *Gateway) DiscardAll(ctx context.Context) error {
	var errs []error
	for _, name := range storage.AllSnapshots {
		err := g.storage.DeleteSnapshot(ctx, name)
		g.metrics.ObserveSnapshot(string(name), opDiscard, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: delete %s: %w", model.ErrPersistFailed, name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	g.logger.Info("saved state discarded")
	return nil
}

// saved returns the snapshots present in storage, or nil when they cannot
// be listed and every snapshot should be tried
func (g *Gateway) saved(ctx context.Context) map[storage.SnapshotName]bool {
	names, err := g.storage.ListSnapshots(ctx)
	if err != nil {
		g.logger.Warn("listing snapshots failed", slog.Any("error", err))
		return nil
	}
	saved := make(map[storage.SnapshotName]bool, len(names))
	for _, name := range names {
		saved[name] = true
	}
	return saved
}

func (g *Gateway) write(ctx context.Context, name storage.SnapshotName, data []byte) error {
	sealed, err := g.sealer.Seal(data)
	if err == nil {
		err = g.storage.SaveSnapshot(ctx, name, sealed)
	}
	g.metrics.ObserveSnapshot(string(name), opSnapshot, err)
	if err != nil {
		g.logger.Warn("snapshot failed", slog.String("store", string(name)), slog.Any("error", err))
		return fmt.Errorf("%w: %s: %w", model.ErrPersistFailed, name, err)
	}
	g.logger.Debug("snapshot written", slog.String("store", string(name)), slog.Int("bytes", len(sealed)))
	return nil
}

func (g *Gateway) read(ctx context.Context, name storage.SnapshotName) (func() error, error) {
	sealed, err := g.storage.LoadSnapshot(ctx, name)
	if err != nil {
		return nil, err
	}
	data, err := g.sealer.Open(sealed)
	if err != nil {
		return nil, err
	}
	return g.Decode(name, data)
}

// restored records the outcome of restoring one sub-store and wraps failures
func (g *Gateway) restored(name storage.SnapshotName, err error) error {
	g.metrics.ObserveSnapshot(string(name), opRestore, err)
	if err == nil {
		g.logger.Info("store restored", slog.String("store", string(name)))
		return nil
	}
	if errors.Is(err, model.ErrInvalidAccount) || errors.Is(err, model.ErrInvalidTrack) {
		err = fmt.Errorf("%w: %w", model.ErrCorruptSnapshot, err)
	}
	if errors.Is(err, model.ErrSnapshotNotFound) {
		g.logger.Info("no snapshot to restore", slog.String("store", string(name)))
	} else {
		g.logger.Warn("restore failed", slog.String("store", string(name)), slog.Any("error", err))
	}
	return fmt.Errorf("%w: %s: %w", model.ErrRestoreFailed, name, err)
}

// RestoreReport lists which sub-stores were restored and why others were not
type RestoreReport struct {
	Restored []storage.SnapshotName
	Failed   map[storage.SnapshotName]error
}

// Err joins the failures in restore order, or returns nil
func (r RestoreReport) Err() error {
	var errs []error
	for _, name := range storage.AllSnapshots {
		if err, ok := r.Failed[name]; ok {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Fresh reports whether nothing had been saved yet
func (r RestoreReport) Fresh() bool {
	if len(r.Restored) > 0 {
		return false
	}
	for _, err := range r.Failed {
		if !errors.Is(err, model.ErrSnapshotNotFound) {
			return false
		}
	}
	return true
}
