package playback

import (
	"log/slog"
	"sync"

	"github.com/mcoot/jukebox/internal/metrics"
	"github.com/mcoot/jukebox/internal/model"
)

// Authorizer decides whether an account may play a track and, on admission,
// debits both. The checks and debits run under the shared counter lock so
// that no partial debit is observable and no reset interleaves with one.
type Authorizer struct {
	counters *sync.RWMutex
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates an Authorizer sharing counters with the reset broadcaster
func New(counters *sync.RWMutex, m *metrics.Metrics, logger *slog.Logger) *Authorizer {
	return &Authorizer{
		counters: counters,
		metrics:  m,
		logger:   logger.With(slog.String("component", "playback")),
	}
}

// Authorize returns the decision for account playing track. The first failing
// condition wins: missing account, missing track, account out of plays, track
// out of plays, then insufficient time.
func (a *Authorizer) Authorize(account *model.Account, track *model.Track) model.Decision {
	decision := a.authorize(account, track)
	a.metrics.ObserveDecision(decision)

	attrs := []any{slog.String("decision", string(decision))}
	if account != nil {
		attrs = append(attrs, slog.Any("account", account))
	}
	if track != nil {
		attrs = append(attrs, slog.String("track", track.Title()))
	}
	if decision.IsAdmitted() {
		a.logger.Info("play admitted", attrs...)
	} else {
		a.logger.Info("play denied", attrs...)
	}
	return decision
}

// Preview returns the decision Authorize would make without debiting anything
func (a *Authorizer) Preview(account *model.Account, track *model.Track) model.Decision {
	a.counters.RLock()
	defer a.counters.RUnlock()
	return decide(account, track)
}

func (a *Authorizer) authorize(account *model.Account, track *model.Track) model.Decision {
	a.counters.Lock()
	defer a.counters.Unlock()

	decision := decide(account, track)
	if decision.IsAdmitted() {
		track.RecordPlay()
		account.RecordPlay(track.LengthSeconds())
	}
	return decision
}

func decide(account *model.Account, track *model.Track) model.Decision {
	switch {
	case account == nil:
		return model.DecisionDeniedNoAccount
	case track == nil:
		return model.DecisionDeniedNoTrack
	case !account.CanPlay():
		return model.DecisionDeniedAccountExhausted
	case !track.CanPlay():
		return model.DecisionDeniedTrackExhausted
	case !account.HasTimeFor(track.LengthSeconds()):
		return model.DecisionDeniedInsufficientTime
	default:
		return model.DecisionAdmitted
	}
}
