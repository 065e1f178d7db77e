package queue

import (
	"log/slog"
	"sync"

	"github.com/mcoot/jukebox/internal/model"
)

// Queue is the FIFO of admitted tracks waiting for the external player.
// Entries are titles; resolving them to audio is the player's job.
type Queue struct {
	logger *slog.Logger

	mu      sync.Mutex
	entries []model.QueueEntry
}

// New creates an empty Queue
func New(logger *slog.Logger) *Queue {
	return &Queue{
		logger: logger.With(slog.String("component", "queue")),
	}
}

// Enqueue appends track to the back of the queue
func (q *Queue) Enqueue(track *model.Track) {
	if track == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, model.QueueEntry{
		Title:         track.Title(),
		Artist:        track.Artist(),
		AudioRef:      track.AudioRef(),
		LengthSeconds: track.LengthSeconds(),
	})
	q.logger.Debug("track enqueued",
		slog.String("track", track.Title()),
		slog.Int("length", len(q.entries)),
	)
}

// Peek returns the oldest entry without removing it
func (q *Queue) Peek() (model.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return model.QueueEntry{}, model.ErrQueueEmpty
	}
	return q.entries[0], nil
}

// Dequeue removes and returns the oldest entry
func (q *Queue) Dequeue() (model.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return model.QueueEntry{}, model.ErrQueueEmpty
	}
	entry := q.entries[0]
	q.entries[0] = model.QueueEntry{}
	q.entries = q.entries[1:]
	if len(q.entries) == 0 {
		q.entries = nil
	}
	return entry, nil
}

// Len returns the number of queued entries
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Items returns a copy of the queue, oldest first
func (q *Queue) Items() []model.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.QueueEntry(nil), q.entries...)
}

// Replace swaps the queue contents for restored entries
func (q *Queue) Replace(entries []model.QueueEntry) error {
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return err
		}
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append([]model.QueueEntry(nil), entries...)
	return nil
}
