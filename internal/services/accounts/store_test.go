package accounts

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/jukebox/internal/metrics"
	"github.com/mcoot/jukebox/internal/model"
	"github.com/mcoot/jukebox/internal/services/reset"
	internaltestutil "github.com/mcoot/jukebox/internal/testutil"
)

type StoreSuite struct {
	suite.Suite
	registry *reset.Broadcaster
	metrics  *metrics.Metrics
	store    *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	logger := internaltestutil.NopLogger()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.registry = reset.New(&sync.RWMutex{}, s.metrics, logger)

	store, err := New([]*model.Account{
		model.NewAccount("Chris", []byte("1"), model.DefaultDailyAllowance),
		model.NewAccount("Devon", []byte("22"), model.DefaultDailyAllowance),
		model.NewAccount("River", []byte("333"), model.DefaultDailyAllowance),
	}, s.registry, s.metrics, logger)
	s.Require().NoError(err)
	s.store = store
}

// Lookup tests

func (s *StoreSuite) TestLookupFindsAccount() {
	account, err := s.store.Lookup("Devon")
	s.Require().NoError(err)
	s.Equal("Devon", account.Username())
}

func (s *StoreSuite) TestLookupUnknownUser() {
	_, err := s.store.Lookup("Nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StoreSuite) TestLookupIsCaseSensitive() {
	_, err := s.store.Lookup("chris")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// Authenticate tests

func (s *StoreSuite) TestAuthenticateSucceeds() {
	account, err := s.store.Authenticate("Chris", []byte("1"))
	s.Require().NoError(err)
	s.Equal("Chris", account.Username())
}

func (s *StoreSuite) TestAuthenticateWrongCredential() {
	_, err := s.store.Authenticate("Chris", []byte("9"))
	s.ErrorIs(err, model.ErrAuthFailed)
}

func (s *StoreSuite) TestAuthenticateUnknownUserFailsTheSameWay() {
	_, errUnknown := s.store.Authenticate("Nobody", []byte("1"))
	_, errWrong := s.store.Authenticate("Chris", []byte("9"))

	s.ErrorIs(errUnknown, model.ErrAuthFailed)
	s.Equal(errWrong, errUnknown)
}

func (s *StoreSuite) TestAuthenticateRejectsPrefixOfCredential() {
	_, err := s.store.Authenticate("River", []byte("3"))
	s.ErrorIs(err, model.ErrAuthFailed)
}

func (s *StoreSuite) TestAuthenticateRejectsLongerCredential() {
	_, err := s.store.Authenticate("Chris", []byte("11"))
	s.ErrorIs(err, model.ErrAuthFailed)
}

func (s *StoreSuite) TestAuthenticateRejectsEmptyCredential() {
	_, err := s.store.Authenticate("Chris", nil)
	s.ErrorIs(err, model.ErrAuthFailed)
}

func (s *StoreSuite) TestAuthenticateClearsCredentialBuffer() {
	buf := []byte("22")

	_, err := s.store.Authenticate("Devon", buf)
	s.Require().NoError(err)
	s.Equal([]byte{0, 0}, buf)
}

func (s *StoreSuite) TestAuthenticateClearsBufferOnFailure() {
	buf := []byte("wrong")

	_, _ = s.store.Authenticate("Devon", buf)
	s.Equal(make([]byte, 5), buf)
}

func (s *StoreSuite) TestAuthenticateRecordsMetrics() {
	_, _ = s.store.Authenticate("Chris", []byte("1"))
	_, _ = s.store.Authenticate("Chris", []byte("2"))

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Authentication.WithLabelValues("ok")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Authentication.WithLabelValues("failed")))
}

// Collection tests

func (s *StoreSuite) TestAllKeepsProvisioningOrder() {
	var names []string
	for _, account := range s.store.All() {
		names = append(names, account.Username())
	}
	s.Equal([]string{"Chris", "Devon", "River"}, names)
}

func (s *StoreSuite) TestAccountsRegisteredForReset() {
	s.Equal(3, s.registry.Count())
}

func (s *StoreSuite) TestNewRejectsDuplicateUsernames() {
	_, err := New([]*model.Account{
		model.NewAccount("Chris", []byte("1"), 10),
		model.NewAccount("Chris", []byte("2"), 10),
	}, s.registry, nil, internaltestutil.NopLogger())
	s.ErrorIs(err, model.ErrInvalidAccount)
}

// Replace tests

func (s *StoreSuite) TestReplaceRoundTripsRecords() {
	account, _ := s.store.Lookup("Chris")
	account.RecordPlay(50)
	records := s.store.Records()

	other, err := New(nil, reset.New(&sync.RWMutex{}, nil, internaltestutil.NopLogger()), nil, internaltestutil.NopLogger())
	s.Require().NoError(err)
	s.Require().NoError(other.Replace(records))

	s.Equal(records, other.Records())
	restored, err := other.Authenticate("Chris", []byte("1"))
	s.Require().NoError(err)
	s.Equal(89950, restored.TimeRemainingSeconds())
	s.Equal(1, restored.PlaysToday())
}

func (s *StoreSuite) TestReplaceReregistersSubscribers() {
	old, _ := s.store.Lookup("Chris")
	old.RecordPlay(10)

	err := s.store.Replace([]model.AccountRecord{
		{Username: "Ryan", Credential: []byte("4444"), DailyAllowance: 100, TimeRemainingSeconds: 40, PlaysToday: 2},
	})
	s.Require().NoError(err)
	s.Equal(1, s.registry.Count())

	s.registry.BroadcastReset()

	ryan, _ := s.store.Lookup("Ryan")
	s.Equal(0, ryan.PlaysToday())
	s.Equal(100, ryan.TimeRemainingSeconds())
	s.Equal(1, old.PlaysToday()) // no longer registered
}

func (s *StoreSuite) TestReplaceIsAllOrNothing() {
	err := s.store.Replace([]model.AccountRecord{
		{Username: "Ryan", Credential: []byte("4444"), DailyAllowance: 100, TimeRemainingSeconds: 100},
		{Username: "Bad", Credential: []byte("x"), DailyAllowance: 100, TimeRemainingSeconds: -1},
	})
	s.ErrorIs(err, model.ErrInvalidAccount)

	s.Equal(3, s.store.Len())
	_, err = s.store.Lookup("Ryan")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StoreSuite) TestReplaceRejectsDuplicates() {
	rec := model.AccountRecord{Username: "Ryan", Credential: []byte("4444"), DailyAllowance: 100, TimeRemainingSeconds: 100}

	err := s.store.Replace([]model.AccountRecord{rec, rec})
	s.ErrorIs(err, model.ErrInvalidAccount)
	s.Equal(3, s.store.Len())
}

func (s *StoreSuite) TestCredentialsNeverLogged() {
	logger, logs := internaltestutil.CaptureLogger()
	store, err := New([]*model.Account{
		model.NewAccount("Ryan", []byte("4444"), model.DefaultDailyAllowance),
	}, s.registry, s.metrics, logger)
	s.Require().NoError(err)

	_, err = store.Authenticate("Ryan", []byte("4444"))
	s.Require().NoError(err)
	_, err = store.Authenticate("Ryan", []byte("5555"))
	s.Require().Error(err)

	s.Contains(logs.String(), `"account":"Ryan"`)
	s.NotContains(logs.String(), "4444")
	s.NotContains(logs.String(), "5555")
}
