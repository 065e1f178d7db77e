package factory

import (
	"time"

	"github.com/mcoot/jukebox/internal/dependencies/mocks"
	"github.com/mcoot/jukebox/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	Memory    *memory.Storage
}

// NewTestApp creates an App over in-memory storage and a mock clock,
// seeded with the built-in accounts and catalog
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(Config{MetricsEnabled: true})
}

// NewTestAppWithConfig is NewTestApp with custom seed or sealing settings.
// Storage settings in cfg are ignored.
func NewTestAppWithConfig(cfg Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	app, err := newWithDependencies(store, mockClock, cfg)
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Memory:    store,
	}
}

// Restart builds a new App over the same storage and clock, as a process
// restart would
func (t *TestApp) Restart(cfg Config) *TestApp {
	app, err := newWithDependencies(t.Memory, t.MockClock, cfg)
	if err != nil {
		panic(err)
	}
	return &TestApp{
		App:       app,
		MockClock: t.MockClock,
		Memory:    t.Memory,
	}
}
