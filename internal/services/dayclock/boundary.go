package dayclock

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/jukebox/internal/dependencies/clock"
	"github.com/mcoot/jukebox/internal/model"
)

// Boundary tracks the last day for which daily resets were applied.
// It never schedules anything itself: callers invoke Check before every
// authorization and broadcast a reset when it returns true.
type Boundary struct {
	clock  clock.Clock
	logger *slog.Logger

	mu         sync.Mutex
	offsetDays int // simulated midnights
	currentDay model.Day
}

// New creates a Boundary whose current day is today
func New(clk clock.Clock, logger *slog.Logger) *Boundary {
	b := &Boundary{
		clock:  clk,
		logger: logger.With(slog.String("component", "dayclock")),
	}
	b.currentDay = b.today()
	return b
}

// Check returns true exactly once per day transition.
// Any change of day counts, including the clock moving backwards.
func (b *Boundary) Check() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.today()
	if now == b.currentDay {
		return false
	}

	b.logger.Info("day boundary crossed",
		slog.String("previous_day", string(b.currentDay)),
		slog.String("current_day", string(now)),
	)
	b.currentDay = now
	return true
}

// AdvanceSimulatedDay shifts "today" one day forward so the next Check
// detects a transition
func (b *Boundary) AdvanceSimulatedDay() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offsetDays++
	b.logger.Debug("simulated midnight", slog.Int("offset_days", b.offsetDays))
}

// CurrentDay returns the last day for which resets were applied
func (b *Boundary) CurrentDay() model.Day {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentDay
}

// Today returns the calendar day Check would compare against
func (b *Boundary) Today() model.Day {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.today()
}

// Record returns the persisted form of the day marker
func (b *Boundary) Record() model.DayRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return model.DayRecord{CurrentDay: b.currentDay, OffsetDays: b.offsetDays}
}

// Restore replaces the day marker and the simulated offset with persisted ones
func (b *Boundary) Restore(rec model.DayRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("restore day marker: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentDay = rec.CurrentDay
	b.offsetDays = rec.OffsetDays
	return nil
}

// today must be called with mu held
func (b *Boundary) today() model.Day {
	return model.DayOf(b.clock.Now().AddDate(0, 0, b.offsetDays))
}
