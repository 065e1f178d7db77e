package model

import "fmt"

// Decision is the outcome of a play request
type Decision string

const (
	DecisionAdmitted               Decision = "admitted"
	DecisionDeniedNoAccount        Decision = "denied_no_account"
	DecisionDeniedNoTrack          Decision = "denied_no_track"
	DecisionDeniedAccountExhausted Decision = "denied_account_exhausted"
	DecisionDeniedTrackExhausted   Decision = "denied_track_exhausted"
	DecisionDeniedInsufficientTime Decision = "denied_insufficient_time"
)

// IsAdmitted returns true if the play was admitted and debited
func (d Decision) IsAdmitted() bool {
	return d == DecisionAdmitted
}

// Err returns nil for an admission and the matching denial error otherwise
func (d Decision) Err() error {
	switch d {
	case DecisionAdmitted:
		return nil
	case DecisionDeniedNoAccount:
		return ErrDeniedNoAccount
	case DecisionDeniedNoTrack:
		return ErrDeniedNoTrack
	case DecisionDeniedAccountExhausted:
		return ErrDeniedAccountExhausted
	case DecisionDeniedTrackExhausted:
		return ErrDeniedTrackExhausted
	case DecisionDeniedInsufficientTime:
		return ErrDeniedInsufficientTime
	default:
		return fmt.Errorf("unknown decision %q", string(d))
	}
}

// Message returns the text shown to the kiosk user
func (d Decision) Message() string {
	switch d {
	case DecisionAdmitted:
		return "Song added to the queue."
	case DecisionDeniedNoAccount:
		return "Error: No user is signed in."
	case DecisionDeniedNoTrack:
		return "Error: No song selected."
	case DecisionDeniedAccountExhausted:
		return "Error: User is out of songs for today."
	case DecisionDeniedTrackExhausted:
		return "Error: Song has reached its daily limit."
	case DecisionDeniedInsufficientTime:
		return "Error: User has insufficient time remaining."
	default:
		return "Error: " + string(d)
	}
}
