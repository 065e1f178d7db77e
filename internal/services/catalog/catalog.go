package catalog

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/jukebox/internal/model"
	"github.com/mcoot/jukebox/internal/services/reset"
)

// RegistryGroup is the reset registry group owned by the catalog
const RegistryGroup = "catalog"

// Catalog is the fixed, ordered set of playable tracks.
// Tracks are never added or removed at runtime; only a restore swaps them.
type Catalog struct {
	registry reset.Registry
	logger   *slog.Logger

	mu      sync.RWMutex
	tracks  []*model.Track
	byTitle map[string]*model.Track
}

// New creates a Catalog and registers every track for daily resets
func New(tracks []*model.Track, registry reset.Registry, logger *slog.Logger) (*Catalog, error) {
	c := &Catalog{
		registry: registry,
		logger:   logger.With(slog.String("component", "catalog")),
	}
	if err := c.install(tracks); err != nil {
		return nil, err
	}
	return c, nil
}

// FindByTitle returns the track whose title matches exactly
func (c *Catalog) FindByTitle(title string) (*model.Track, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	track, ok := c.byTitle[title]
	if !ok {
		return nil, model.ErrTrackNotFound
	}
	return track, nil
}

// All returns the tracks in insertion order
func (c *Catalog) All() []*model.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*model.Track, len(c.tracks))
	copy(result, c.tracks)
	return result
}

// Len returns the number of tracks
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tracks)
}

// Records returns the persisted form of every track, in order
func (c *Catalog) Records() []model.TrackRecord {
	tracks := c.All()
	records := make([]model.TrackRecord, 0, len(tracks))
	for _, track := range tracks {
		records = append(records, track.Record())
	}
	return records
}

// Replace swaps the catalog for the given records, all or nothing
func (c *Catalog) Replace(records []model.TrackRecord) error {
	tracks := make([]*model.Track, 0, len(records))
	for _, record := range records {
		track, err := model.TrackFromRecord(record)
		if err != nil {
			return err
		}
		tracks = append(tracks, track)
	}
	return c.install(tracks)
}

func (c *Catalog) install(tracks []*model.Track) error {
	byTitle := make(map[string]*model.Track, len(tracks))
	subs := make([]reset.Subscriber, 0, len(tracks))
	for _, track := range tracks {
		if _, dup := byTitle[track.Title()]; dup {
			return fmt.Errorf("%w: duplicate title %q", model.ErrInvalidTrack, track.Title())
		}
		byTitle[track.Title()] = track
		subs = append(subs, track)
	}

	c.mu.Lock()
	c.tracks = append([]*model.Track(nil), tracks...)
	c.byTitle = byTitle
	c.mu.Unlock()

	c.registry.Replace(RegistryGroup, subs)
	c.logger.Debug("catalog installed", slog.Int("count", len(tracks)))
	return nil
}
