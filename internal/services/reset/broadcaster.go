package reset

import (
	"log/slog"
	"sync"

	"github.com/mcoot/jukebox/internal/metrics"
)

// Subscriber is anything holding daily counters
type Subscriber interface {
	ResetDaily()
}

// Registry is the registration side of the broadcaster, used by the stores
// that own subscribers
type Registry interface {
	// Replace swaps every subscriber registered under group
	Replace(group string, subs []Subscriber)
}

// Broadcaster zeroes every registered counter holder when a day boundary
// is crossed. Subscribers are grouped by owner so a store can re-register
// its whole collection after a restore.
type Broadcaster struct {
	counters *sync.RWMutex
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu     sync.Mutex
	groups map[string][]Subscriber
	order  []string
}

// Ensure Broadcaster implements Registry
var _ Registry = (*Broadcaster)(nil)

// New creates a Broadcaster. counters is the lock shared with the
// authorizer; a broadcast holds it exclusively so no debit interleaves
// with a partial reset.
func New(counters *sync.RWMutex, m *metrics.Metrics, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		counters: counters,
		metrics:  m,
		logger:   logger.With(slog.String("component", "reset-broadcaster")),
		groups:   make(map[string][]Subscriber),
	}
}

// Register appends subscribers to group
func (b *Broadcaster) Register(group string, subs ...Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.groups[group]; !ok {
		b.order = append(b.order, group)
	}
	b.groups[group] = append(b.groups[group], subs...)
}

// Replace swaps every subscriber registered under group
func (b *Broadcaster) Replace(group string, subs []Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.groups[group]; !ok {
		b.order = append(b.order, group)
	}
	b.groups[group] = append([]Subscriber(nil), subs...)
	b.logger.Debug("subscribers registered",
		slog.String("group", group),
		slog.Int("count", len(subs)),
	)
}

// Count returns the number of registered subscribers
func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, subs := range b.groups {
		n += len(subs)
	}
	return n
}

// BroadcastReset calls ResetDaily on every subscriber and returns how many
// were reset. Call it exactly when the day boundary check reports a transition.
func (b *Broadcaster) BroadcastReset() int {
	b.counters.Lock()
	defer b.counters.Unlock()

	subs := b.snapshot()
	for _, sub := range subs {
		sub.ResetDaily()
	}

	b.metrics.ObserveReset(len(subs))
	b.logger.Info("daily counters reset", slog.Int("subscribers", len(subs)))
	return len(subs)
}

func (b *Broadcaster) snapshot() []Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	var subs []Subscriber
	for _, group := range b.order {
		subs = append(subs, b.groups[group]...)
	}
	return subs
}
