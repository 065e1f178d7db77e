package kiosk

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/jukebox/internal/model"
	"github.com/mcoot/jukebox/internal/services/accounts"
	"github.com/mcoot/jukebox/internal/services/catalog"
	"github.com/mcoot/jukebox/internal/services/dayclock"
	"github.com/mcoot/jukebox/internal/services/persistence"
	"github.com/mcoot/jukebox/internal/services/playback"
	"github.com/mcoot/jukebox/internal/services/queue"
	"github.com/mcoot/jukebox/internal/services/reset"
)

// Kiosk is the caller-facing API of the jukebox. It holds the session
// context: at most one signed-in account at a time.
type Kiosk struct {
	accounts    *accounts.Store
	catalog     *catalog.Catalog
	day         *dayclock.Boundary
	broadcaster *reset.Broadcaster
	authorizer  *playback.Authorizer
	queue       *queue.Queue
	gateway     *persistence.Gateway
	counters    *sync.RWMutex
	logger      *slog.Logger

	mu      sync.Mutex
	session *model.Account
}

// New creates a Kiosk with nobody signed in
func New(
	accountStore *accounts.Store,
	trackCatalog *catalog.Catalog,
	day *dayclock.Boundary,
	broadcaster *reset.Broadcaster,
	authorizer *playback.Authorizer,
	playQueue *queue.Queue,
	gateway *persistence.Gateway,
	counters *sync.RWMutex,
	logger *slog.Logger,
) *Kiosk {
	return &Kiosk{
		accounts:    accountStore,
		catalog:     trackCatalog,
		day:         day,
		broadcaster: broadcaster,
		authorizer:  authorizer,
		queue:       playQueue,
		gateway:     gateway,
		counters:    counters,
		logger:      logger.With(slog.String("component", "kiosk")),
	}
}

// Authenticate signs username in, replacing any current session.
// The credential buffer is cleared before returning. On failure the
// current session is left as it was.
func (k *Kiosk) Authenticate(username string, credential []byte) (*model.Account, error) {
	account, err := k.accounts.Authenticate(username, credential)
	if err != nil {
		return nil, err
	}

	k.mu.Lock()
	k.session = account
	k.mu.Unlock()
	return account, nil
}

// Logout clears the session. Counters are not touched.
func (k *Kiosk) Logout() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.session != nil {
		k.logger.Info("signed out", slog.Any("account", k.session))
	}
	k.session = nil
}

// CurrentAccount returns the signed-in account
func (k *Kiosk) CurrentAccount() (*model.Account, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.session == nil {
		return nil, model.ErrNoSession
	}
	return k.session, nil
}

// CheckDayAndMaybeReset resets every daily counter when the day has
// changed since the last check. It returns true when a reset happened.
func (k *Kiosk) CheckDayAndMaybeReset() bool {
	if !k.day.Check() {
		return false
	}
	k.broadcaster.BroadcastReset()
	return true
}

// AdvanceSimulatedDay moves "today" forward one day. The reset happens on
// the next check.
func (k *Kiosk) AdvanceSimulatedDay() {
	k.day.AdvanceSimulatedDay()
}

// Authorize checks the day boundary, then decides whether account may play track.
// Either may be nil.
func (k *Kiosk) Authorize(account *model.Account, track *model.Track) model.Decision {
	k.CheckDayAndMaybeReset()
	return k.authorizer.Authorize(account, track)
}

// Play authorizes the signed-in account to play the track titled title and
// queues it when admitted. An unknown title is reported as no song selected.
func (k *Kiosk) Play(title string) (model.Decision, *model.Track) {
	var account *model.Account
	if current, err := k.CurrentAccount(); err == nil {
		account = current
	}

	var track *model.Track
	if found, err := k.catalog.FindByTitle(title); err == nil {
		track = found
	}

	decision := k.Authorize(account, track)
	if decision.IsAdmitted() {
		k.queue.Enqueue(track)
	}
	return decision, track
}

// Status returns the signed-in account's counters for display
func (k *Kiosk) Status() (model.AccountStatus, error) {
	account, err := k.CurrentAccount()
	if err != nil {
		return model.AccountStatus{}, err
	}

	k.counters.RLock()
	defer k.counters.RUnlock()
	return model.AccountStatus{
		Username:             account.Username(),
		PlaysToday:           account.PlaysToday(),
		TimeRemainingSeconds: account.TimeRemainingSeconds(),
	}, nil
}

// TrackAvailability is a catalog track with the decision a play request
// for it would get right now
type TrackAvailability struct {
	Track *model.Track
	// Decision is empty when nobody is signed in
	Decision model.Decision
}

// Catalog returns the tracks in display order. When someone is signed in
// each track carries the decision their request would get; nothing is debited.
func (k *Kiosk) Catalog() []TrackAvailability {
	account, err := k.CurrentAccount()
	tracks := k.catalog.All()
	result := make([]TrackAvailability, 0, len(tracks))
	for _, track := range tracks {
		entry := TrackAvailability{Track: track}
		if err == nil {
			entry.Decision = k.authorizer.Preview(account, track)
		}
		result = append(result, entry)
	}
	return result
}

// Queued returns the play queue, oldest first
func (k *Kiosk) Queued() []model.QueueEntry {
	return k.queue.Items()
}

// NextQueued removes and returns the track due to play next
func (k *Kiosk) NextQueued() (model.QueueEntry, error) {
	return k.queue.Dequeue()
}

// SnapshotAll persists every sub-store
func (k *Kiosk) SnapshotAll(ctx context.Context) error {
	return k.gateway.SnapshotAll(ctx)
}

// RestoreAll restores every sub-store it can and rebinds the session to
// the restored account of the same name. The session is cleared when that
// account no longer exists.
func (k *Kiosk) RestoreAll(ctx context.Context) (persistence.RestoreReport, error) {
	report, err := k.gateway.RestoreAll(ctx)

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.session == nil {
		return report, err
	}

	account, lookupErr := k.accounts.Lookup(k.session.Username())
	if lookupErr != nil {
		k.logger.Info("session cleared after restore", slog.Any("account", k.session))
		k.session = nil
		return report, err
	}
	k.session = account
	return report, err
}
