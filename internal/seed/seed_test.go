package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/jukebox/internal/model"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	titles := make(map[string]bool)
	for _, track := range BuildTracks(DefaultCatalog()) {
		assert.NoError(t, track.Record().Validate())
		assert.False(t, titles[track.Title()], "duplicate title %s", track.Title())
		titles[track.Title()] = true
	}
	assert.Len(t, titles, 9)
}

func TestDefaultAccountsAreValid(t *testing.T) {
	accounts := BuildAccounts(DefaultAccounts(), model.DefaultDailyAllowance)
	require.Len(t, accounts, 4)
	for _, account := range accounts {
		assert.NoError(t, account.Record().Validate())
		assert.Equal(t, model.DefaultDailyAllowance, account.TimeRemainingSeconds())
	}
	assert.True(t, accounts[0].MatchesCredential([]byte("1")))
	assert.Equal(t, "Ryan", accounts[3].Username())
}

func TestUntameableFireLength(t *testing.T) {
	tracks := BuildTracks(DefaultCatalog())
	last := tracks[len(tracks)-1]
	assert.Equal(t, "Untameable Fire", last.Title())
	assert.Equal(t, 282, last.LengthSeconds())
	assert.Equal(t, "4:42 Untameable Fire by Pierre Langer", last.String())
}
