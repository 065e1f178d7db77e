package model

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sync"
)

// Account is a kiosk user with a daily time and play budget.
// Identity fields are immutable; counters are only changed through
// RecordPlay and ResetDaily.
type Account struct {
	username       string
	credential     []byte
	dailyAllowance int

	mu                   sync.Mutex
	timeRemainingSeconds int
	playsToday           int
}

// NewAccount creates an account with a full daily budget.
// The credential is copied, so the caller may clear its buffer.
func NewAccount(username string, credential []byte, dailyAllowance int) *Account {
	return &Account{
		username:             username,
		credential:           append([]byte(nil), credential...),
		dailyAllowance:       dailyAllowance,
		timeRemainingSeconds: dailyAllowance,
	}
}

// Username returns the account's identity key
func (a *Account) Username() string {
	return a.username
}

// DailyAllowance returns the seconds granted at each day boundary
func (a *Account) DailyAllowance() int {
	return a.dailyAllowance
}

// TimeRemainingSeconds returns the playback time left today
func (a *Account) TimeRemainingSeconds() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timeRemainingSeconds
}

// PlaysToday returns the number of admitted plays today
func (a *Account) PlaysToday() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playsToday
}

// CanPlay reports whether the account is under its daily play cap
func (a *Account) CanPlay() bool {
	return a.PlaysToday() < MaxPlaysPerAccount
}

// HasTimeFor reports whether enough time remains to play a track of the given length.
// Exactly enough time is sufficient.
func (a *Account) HasTimeFor(lengthSeconds int) bool {
	return a.TimeRemainingSeconds() >= lengthSeconds
}

// MatchesCredential compares guess against the stored credential over its full length.
// Inputs of a different length never match.
func (a *Account) MatchesCredential(guess []byte) bool {
	return subtle.ConstantTimeCompare(a.credential, guess) == 1
}

// RecordPlay debits one play and lengthSeconds of time.
// Callers must have checked CanPlay and HasTimeFor while holding the counter lock.
func (a *Account) RecordPlay(lengthSeconds int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playsToday++
	a.timeRemainingSeconds -= lengthSeconds
}

// ResetDaily restores the full allowance and clears the play count
func (a *Account) ResetDaily() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playsToday = 0
	a.timeRemainingSeconds = a.dailyAllowance
}

// LogValue keeps the credential out of structured logs
func (a *Account) LogValue() slog.Value {
	return slog.StringValue(a.username)
}

// String returns the username only
func (a *Account) String() string {
	return a.username
}

// Record returns a point-in-time copy suitable for persistence
func (a *Account) Record() AccountRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AccountRecord{
		Username:             a.username,
		Credential:           append([]byte(nil), a.credential...),
		DailyAllowance:       a.dailyAllowance,
		TimeRemainingSeconds: a.timeRemainingSeconds,
		PlaysToday:           a.playsToday,
	}
}

// AccountRecord is the persisted form of an Account
type AccountRecord struct {
	Username             string `json:"username"`
	Credential           []byte `json:"credential"`
	DailyAllowance       int    `json:"daily_allowance_seconds"`
	TimeRemainingSeconds int    `json:"time_remaining_seconds"`
	PlaysToday           int    `json:"plays_today"`
}

// Validate checks the record against the account invariants
func (r AccountRecord) Validate() error {
	switch {
	case r.Username == "":
		return fmt.Errorf("%w: empty username", ErrInvalidAccount)
	case len(r.Credential) == 0:
		return fmt.Errorf("%w: %s has an empty credential", ErrInvalidAccount, r.Username)
	case r.DailyAllowance <= 0:
		return fmt.Errorf("%w: %s has a non-positive allowance", ErrInvalidAccount, r.Username)
	case r.TimeRemainingSeconds < 0 || r.TimeRemainingSeconds > r.DailyAllowance:
		return fmt.Errorf("%w: %s time remaining %d outside [0, %d]",
			ErrInvalidAccount, r.Username, r.TimeRemainingSeconds, r.DailyAllowance)
	case r.PlaysToday < 0 || r.PlaysToday > MaxPlaysPerAccount:
		return fmt.Errorf("%w: %s plays today %d outside [0, %d]",
			ErrInvalidAccount, r.Username, r.PlaysToday, MaxPlaysPerAccount)
	}
	return nil
}

// AccountFromRecord rebuilds an Account from its persisted form
func AccountFromRecord(r AccountRecord) (*Account, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &Account{
		username:             r.Username,
		credential:           append([]byte(nil), r.Credential...),
		dailyAllowance:       r.DailyAllowance,
		timeRemainingSeconds: r.TimeRemainingSeconds,
		playsToday:           r.PlaysToday,
	}, nil
}
