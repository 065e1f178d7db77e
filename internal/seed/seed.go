// Package seed holds the built-in accounts and catalog a fresh kiosk starts with.
package seed

import "github.com/mcoot/jukebox/internal/model"

// Account is a provisioned username and credential
type Account struct {
	Username   string `mapstructure:"username"`
	Credential string `mapstructure:"credential"`
}

// Track is a catalog entry before any plays
type Track struct {
	Title         string `mapstructure:"title"`
	Artist        string `mapstructure:"artist"`
	AudioRef      string `mapstructure:"audio_ref"`
	LengthSeconds int    `mapstructure:"length_seconds"`
}

// DefaultAccounts returns the kiosk's built-in accounts
func DefaultAccounts() []Account {
	return []Account{
		{Username: "Chris", Credential: "1"},
		{Username: "Devon", Credential: "22"},
		{Username: "River", Credential: "333"},
		{Username: "Ryan", Credential: "4444"},
	}
}

// DefaultCatalog returns the kiosk's built-in tracks, in display order
func DefaultCatalog() []Track {
	return []Track{
		{Title: "Danse Macabre", Artist: "Kevin MacLeod", AudioRef: "DanseMacabreViolinHook.mp3", LengthSeconds: 34},
		{Title: "Determined Tumbao", Artist: "FreePlay Music", AudioRef: "DeterminedTumbao.mp3", LengthSeconds: 20},
		{Title: "Flute", Artist: "Sun Microsystems", AudioRef: "flute.aif", LengthSeconds: 5},
		{Title: "Loping Sting", Artist: "Kevin MacLeod", AudioRef: "LopingSting.mp3", LengthSeconds: 4},
		{Title: "Space Music", Artist: "Unknown", AudioRef: "spacemusic.au", LengthSeconds: 6},
		{Title: "Swing Cheese", Artist: "FreePlay Music", AudioRef: "SwingCheese.mp3", LengthSeconds: 15},
		{Title: "Tada", Artist: "Microsoft", AudioRef: "tada.wav", LengthSeconds: 2},
		{Title: "The Curtain Rises", Artist: "Kevin MacLeod", AudioRef: "TheCurtainRises.mp3", LengthSeconds: 28},
		{Title: "Untameable Fire", Artist: "Pierre Langer", AudioRef: "UntameableFire.mp3", LengthSeconds: 282},
	}
}

// BuildAccounts creates fresh accounts, each granted allowance seconds a day
func BuildAccounts(list []Account, allowance int) []*model.Account {
	result := make([]*model.Account, 0, len(list))
	for _, a := range list {
		result = append(result, model.NewAccount(a.Username, []byte(a.Credential), allowance))
	}
	return result
}

// BuildTracks creates tracks with no plays today
func BuildTracks(list []Track) []*model.Track {
	result := make([]*model.Track, 0, len(list))
	for _, t := range list {
		result = append(result, model.NewTrack(t.Title, t.Artist, t.AudioRef, t.LengthSeconds))
	}
	return result
}
