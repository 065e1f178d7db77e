package model

// Daily limits shared by every account and track
const (
	MaxPlaysPerAccount = 3
	MaxPlaysPerTrack   = 3

	// DefaultDailyAllowance is 1500 minutes of playback, in seconds
	DefaultDailyAllowance = 90000
)
