package kiosk

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/jukebox/internal/dependencies/mocks"
	"github.com/mcoot/jukebox/internal/metrics"
	"github.com/mcoot/jukebox/internal/model"
	"github.com/mcoot/jukebox/internal/seed"
	"github.com/mcoot/jukebox/internal/services/accounts"
	"github.com/mcoot/jukebox/internal/services/catalog"
	"github.com/mcoot/jukebox/internal/services/dayclock"
	"github.com/mcoot/jukebox/internal/services/persistence"
	"github.com/mcoot/jukebox/internal/services/playback"
	"github.com/mcoot/jukebox/internal/services/queue"
	"github.com/mcoot/jukebox/internal/services/reset"
	"github.com/mcoot/jukebox/internal/storage/memory"
	"github.com/mcoot/jukebox/internal/testutil"
)

type KioskSuite struct {
	suite.Suite
	ctx      context.Context
	clock    *mocks.MockClock
	storage  *memory.Storage
	accounts *accounts.Store
	catalog  *catalog.Catalog
	kiosk    *Kiosk
}

func TestKioskSuite(t *testing.T) {
	suite.Run(t, new(KioskSuite))
}

func (s *KioskSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC))
	s.storage = memory.New()
	s.kiosk = s.build()
}

// build wires a kiosk over the shared clock and storage
func (s *KioskSuite) build() *Kiosk {
	logger := testutil.NopLogger()
	counters := &sync.RWMutex{}
	m := metrics.New(prometheus.NewRegistry())
	broadcaster := reset.New(counters, m, logger)

	accountStore, err := accounts.New(seed.BuildAccounts(seed.DefaultAccounts(), model.DefaultDailyAllowance), broadcaster, m, logger)
	s.Require().NoError(err)
	trackCatalog, err := catalog.New(seed.BuildTracks(append(seed.DefaultCatalog(),
		seed.Track{Title: "Fifty", Artist: "Test", AudioRef: "fifty.mp3", LengthSeconds: 50},
	)), broadcaster, logger)
	s.Require().NoError(err)

	day := dayclock.New(s.clock, logger)
	playQueue := queue.New(logger)
	gateway := persistence.New(s.storage, persistence.Stores{
		Accounts: accountStore,
		Catalog:  trackCatalog,
		Day:      day,
		Queue:    playQueue,
	}, counters, nil, s.clock, m, logger)

	s.accounts = accountStore
	s.catalog = trackCatalog
	return New(accountStore, trackCatalog, day, broadcaster, playback.New(counters, m, logger), playQueue, gateway, counters, logger)
}

func (s *KioskSuite) signIn(username, credential string) *model.Account {
	account, err := s.kiosk.Authenticate(username, []byte(credential))
	s.Require().NoError(err)
	return account
}

func (s *KioskSuite) mustPlay(title string) {
	decision, _ := s.kiosk.Play(title)
	s.Require().Equal(model.DecisionAdmitted, decision, title)
}

// Session

func (s *KioskSuite) TestAuthenticateSetsSession() {
	account := s.signIn("Chris", "1")

	current, err := s.kiosk.CurrentAccount()
	s.Require().NoError(err)
	s.Same(account, current)
}

func (s *KioskSuite) TestWrongCredentialLengthFails() {
	_, err := s.kiosk.Authenticate("Chris", []byte("9"))
	s.ErrorIs(err, model.ErrAuthFailed)

	_, err = s.kiosk.Authenticate("River", []byte("3"))
	s.ErrorIs(err, model.ErrAuthFailed)

	_, err = s.kiosk.CurrentAccount()
	s.ErrorIs(err, model.ErrNoSession)
}

func (s *KioskSuite) TestFailedLoginKeepsExistingSession() {
	s.signIn("Devon", "22")
	_, err := s.kiosk.Authenticate("Chris", []byte("wrong"))
	s.Require().Error(err)

	current, err := s.kiosk.CurrentAccount()
	s.Require().NoError(err)
	s.Equal("Devon", current.Username())
}

func (s *KioskSuite) TestAuthenticateClearsCredentialBuffer() {
	credential := []byte("4444")
	_, err := s.kiosk.Authenticate("Ryan", credential)
	s.Require().NoError(err)
	s.Equal([]byte{0, 0, 0, 0}, credential)
}

func (s *KioskSuite) TestLogoutKeepsCounters() {
	account := s.signIn("Chris", "1")
	s.mustPlay("Fifty")

	s.kiosk.Logout()

	_, err := s.kiosk.CurrentAccount()
	s.ErrorIs(err, model.ErrNoSession)
	s.Equal(1, account.PlaysToday())
	s.Equal(model.DefaultDailyAllowance-50, account.TimeRemainingSeconds())
}

// Play

func (s *KioskSuite) TestChrisPlaysThreeThenIsExhausted() {
	account := s.signIn("Chris", "1")

	s.mustPlay("Fifty")
	s.Equal(89950, account.TimeRemainingSeconds())
	s.Equal(1, account.PlaysToday())

	s.mustPlay("Tada")
	s.mustPlay("Flute")
	s.Equal(3, account.PlaysToday())

	decision, _ := s.kiosk.Play("Space Music")
	s.Equal(model.DecisionDeniedAccountExhausted, decision)
	s.Equal(3, account.PlaysToday())
	s.Equal("Error: User is out of songs for today.", decision.Message())
}

func (s *KioskSuite) TestPlayWithoutSession() {
	decision, track := s.kiosk.Play("Tada")
	s.Equal(model.DecisionDeniedNoAccount, decision)
	s.Require().NotNil(track)
	s.Zero(track.PlaysToday())
	s.Empty(s.kiosk.Queued())
}

func (s *KioskSuite) TestPlayUnknownTitle() {
	s.signIn("Chris", "1")

	decision, track := s.kiosk.Play("Never Gonna")
	s.Equal(model.DecisionDeniedNoTrack, decision)
	s.Nil(track)
}

func (s *KioskSuite) TestTrackCapAcrossAccounts() {
	for _, user := range []struct{ name, credential string }{{"Chris", "1"}, {"Devon", "22"}, {"River", "333"}} {
		s.signIn(user.name, user.credential)
		s.mustPlay("Tada")
	}

	s.signIn("Ryan", "4444")
	decision, _ := s.kiosk.Play("Tada")
	s.Equal(model.DecisionDeniedTrackExhausted, decision)
}

func (s *KioskSuite) TestAdmittedPlaysAreQueued() {
	s.signIn("Chris", "1")
	s.mustPlay("Tada")
	s.mustPlay("Flute")

	queued := s.kiosk.Queued()
	s.Require().Len(queued, 2)
	s.Equal("Tada", queued[0].Title)

	next, err := s.kiosk.NextQueued()
	s.Require().NoError(err)
	s.Equal("Tada", next.Title)
	s.Len(s.kiosk.Queued(), 1)
}

// Day boundary

func (s *KioskSuite) TestResetIsIdempotentWithinDay() {
	s.signIn("Chris", "1")
	s.mustPlay("Tada")

	s.False(s.kiosk.CheckDayAndMaybeReset())
	s.False(s.kiosk.CheckDayAndMaybeReset())

	account, _ := s.kiosk.CurrentAccount()
	s.Equal(1, account.PlaysToday())
}

func (s *KioskSuite) TestMidnightResetsEverything() {
	for _, user := range []struct{ name, credential string }{{"Chris", "1"}, {"Devon", "22"}} {
		s.signIn(user.name, user.credential)
		s.mustPlay("Untameable Fire")
	}

	s.clock.Advance(5 * time.Hour)
	s.True(s.kiosk.CheckDayAndMaybeReset())

	for _, account := range s.accounts.All() {
		s.Zero(account.PlaysToday(), account.Username())
		s.Equal(model.DefaultDailyAllowance, account.TimeRemainingSeconds(), account.Username())
	}
	for _, track := range s.catalog.All() {
		s.Zero(track.PlaysToday(), track.Title())
	}
}

func (s *KioskSuite) TestTwoConsecutiveMidnights() {
	account := s.signIn("Chris", "1")

	s.kiosk.AdvanceSimulatedDay()
	s.True(s.kiosk.CheckDayAndMaybeReset())
	s.Zero(account.PlaysToday())

	s.mustPlay("Tada")
	s.Equal(1, account.PlaysToday())

	s.kiosk.AdvanceSimulatedDay()
	s.True(s.kiosk.CheckDayAndMaybeReset())
	s.Zero(account.PlaysToday())
}

func (s *KioskSuite) TestPlayChecksDayFirst() {
	account := s.signIn("Chris", "1")
	s.mustPlay("Tada")
	s.mustPlay("Flute")
	s.mustPlay("Space Music")

	s.clock.AdvanceDays(1)

	// The pending reset is applied before the decision
	s.mustPlay("Tada")
	s.Equal(1, account.PlaysToday())
}

// Status

func (s *KioskSuite) TestStatus() {
	s.signIn("Devon", "22")
	s.mustPlay("Untameable Fire")

	status, err := s.kiosk.Status()
	s.Require().NoError(err)
	s.Equal("Devon", status.Username)
	s.Equal(1, status.PlaysToday)
	s.Equal(model.DefaultDailyAllowance-282, status.TimeRemainingSeconds)
	s.Equal("Logged in as: Devon   Status: 1 times played, 24:55:18 remaining", status.String())
}

func (s *KioskSuite) TestStatusWithoutSession() {
	_, err := s.kiosk.Status()
	s.ErrorIs(err, model.ErrNoSession)
}

func (s *KioskSuite) TestCatalogInDisplayOrder() {
	entries := s.kiosk.Catalog()
	s.Require().Len(entries, 10)
	s.Equal("Danse Macabre", entries[0].Track.Title())
	s.Equal("Fifty", entries[9].Track.Title())
	for _, entry := range entries {
		s.Empty(entry.Decision, entry.Track.Title())
	}
}

func (s *KioskSuite) TestCatalogPreviewsDecisionsWithoutDebiting() {
	account := s.signIn("Chris", "1")
	for _, title := range []string{"Tada", "Flute", "Loping Sting"} {
		decision, _ := s.kiosk.Play(title)
		s.Require().Equal(model.DecisionAdmitted, decision, title)
	}
	s.signIn("Devon", "22")

	byTitle := make(map[string]model.Decision)
	for _, entry := range s.kiosk.Catalog() {
		byTitle[entry.Track.Title()] = entry.Decision
	}
	s.Equal(model.DecisionAdmitted, byTitle["Tada"])
	devon, err := s.accounts.Lookup("Devon")
	s.Require().NoError(err)
	s.Equal(0, devon.PlaysToday())

	s.signIn("Chris", "1")
	for _, entry := range s.kiosk.Catalog() {
		s.Equal(model.DecisionDeniedAccountExhausted, entry.Decision, entry.Track.Title())
	}
	s.Equal(3, account.PlaysToday())
}

// Persistence

func (s *KioskSuite) TestRestoreRebindsSession() {
	s.signIn("River", "333")
	s.mustPlay("Swing Cheese")
	s.Require().NoError(s.kiosk.SnapshotAll(s.ctx))

	_, err := s.kiosk.RestoreAll(s.ctx)
	s.Require().NoError(err)

	current, err := s.kiosk.CurrentAccount()
	s.Require().NoError(err)
	restored, _ := s.accounts.Lookup("River")
	s.Same(restored, current)
	s.Equal(1, current.PlaysToday())

	// Debits reach the restored account, not a stale one
	s.mustPlay("Tada")
	s.Equal(2, restored.PlaysToday())
}

func (s *KioskSuite) TestRestoreClearsSessionForVanishedAccount() {
	s.Require().NoError(s.kiosk.SnapshotAll(s.ctx))
	s.Require().NoError(s.accounts.Replace([]model.AccountRecord{{
		Username:             "Guest",
		Credential:           []byte("0"),
		DailyAllowance:       60,
		TimeRemainingSeconds: 60,
	}}))
	s.signIn("Guest", "0")

	_, err := s.kiosk.RestoreAll(s.ctx)
	s.Require().NoError(err)

	_, err = s.kiosk.CurrentAccount()
	s.ErrorIs(err, model.ErrNoSession)
}

func (s *KioskSuite) TestStateSurvivesRestart() {
	s.signIn("Chris", "1")
	s.mustPlay("Untameable Fire")
	s.Require().NoError(s.kiosk.SnapshotAll(s.ctx))

	s.kiosk = s.build()
	report, err := s.kiosk.RestoreAll(s.ctx)
	s.Require().NoError(err)
	s.False(report.Fresh())

	chris, _ := s.accounts.Lookup("Chris")
	s.Equal(1, chris.PlaysToday())
	fire, _ := s.catalog.FindByTitle("Untameable Fire")
	s.Equal(1, fire.PlaysToday())
	s.Len(s.kiosk.Queued(), 1)
}

func (s *KioskSuite) TestRestartAfterMidnightResetsOnFirstCheck() {
	s.signIn("Chris", "1")
	s.mustPlay("Tada")
	s.Require().NoError(s.kiosk.SnapshotAll(s.ctx))

	s.clock.AdvanceDays(1)
	s.kiosk = s.build()
	_, err := s.kiosk.RestoreAll(s.ctx)
	s.Require().NoError(err)

	chris, _ := s.accounts.Lookup("Chris")
	s.Equal(1, chris.PlaysToday())

	s.True(s.kiosk.CheckDayAndMaybeReset())
	s.Zero(chris.PlaysToday())
}
