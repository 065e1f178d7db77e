package accounts

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/jukebox/internal/metrics"
	"github.com/mcoot/jukebox/internal/model"
	"github.com/mcoot/jukebox/internal/services/reset"
)

// RegistryGroup is the reset registry group owned by the account store
const RegistryGroup = "accounts"

// unknownUserCredential is compared against when the username does not exist,
// so both failure paths do the same work
var unknownUserCredential = []byte("\x00unknown-user\x00")

// Store owns the collection of kiosk accounts
type Store struct {
	registry reset.Registry
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu       sync.RWMutex
	accounts map[string]*model.Account
	order    []string
}

// New creates a Store holding accounts and registers each of them for daily resets
func New(accounts []*model.Account, registry reset.Registry, m *metrics.Metrics, logger *slog.Logger) (*Store, error) {
	s := &Store{
		registry: registry,
		metrics:  m,
		logger:   logger.With(slog.String("component", "accounts")),
	}
	if err := s.install(accounts); err != nil {
		return nil, err
	}
	return s, nil
}

// Lookup returns the account with the given username
func (s *Store) Lookup(username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account, nil
}

// Authenticate returns the account when credential matches the stored secret
// byte for byte. Unknown usernames and wrong credentials both yield
// ErrAuthFailed. The credential buffer is cleared before returning.
func (s *Store) Authenticate(username string, credential []byte) (*model.Account, error) {
	defer clear(credential)

	account, err := s.Lookup(username)
	if err != nil {
		_ = subtle.ConstantTimeCompare(unknownUserCredential, credential)
		s.metrics.ObserveAuthentication(false)
		s.logger.Info("authentication failed", slog.String("username", username))
		return nil, model.ErrAuthFailed
	}

	if !account.MatchesCredential(credential) {
		s.metrics.ObserveAuthentication(false)
		s.logger.Info("authentication failed", slog.String("username", username))
		return nil, model.ErrAuthFailed
	}

	s.metrics.ObserveAuthentication(true)
	s.logger.Info("authenticated", slog.Any("account", account))
	return account, nil
}

// All returns the accounts in provisioning order
func (s *Store) All() []*model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.Account, 0, len(s.order))
	for _, username := range s.order {
		result = append(result, s.accounts[username])
	}
	return result
}

// Len returns the number of accounts
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Records returns the persisted form of every account, in order.
// Hold the counter lock for a consistent image across accounts.
func (s *Store) Records() []model.AccountRecord {
	accounts := s.All()
	records := make([]model.AccountRecord, 0, len(accounts))
	for _, account := range accounts {
		records = append(records, account.Record())
	}
	return records
}

// Replace swaps the whole collection for the given records. Nothing changes
// unless every record is valid. The new accounts replace the old ones in the
// reset registry.
func (s *Store) Replace(records []model.AccountRecord) error {
	accounts := make([]*model.Account, 0, len(records))
	for _, record := range records {
		account, err := model.AccountFromRecord(record)
		if err != nil {
			return err
		}
		accounts = append(accounts, account)
	}
	return s.install(accounts)
}

func (s *Store) install(accounts []*model.Account) error {
	byName := make(map[string]*model.Account, len(accounts))
	order := make([]string, 0, len(accounts))
	subs := make([]reset.Subscriber, 0, len(accounts))
	for _, account := range accounts {
		if _, dup := byName[account.Username()]; dup {
			return fmt.Errorf("%w: duplicate username %q", model.ErrInvalidAccount, account.Username())
		}
		byName[account.Username()] = account
		order = append(order, account.Username())
		subs = append(subs, account)
	}

	s.mu.Lock()
	s.accounts = byName
	s.order = order
	s.mu.Unlock()

	s.registry.Replace(RegistryGroup, subs)
	s.logger.Debug("accounts installed", slog.Int("count", len(order)))
	return nil
}
