package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAuthFailed      = errors.New("invalid username or credential")
	ErrNoSession       = errors.New("no account is signed in")
	ErrInvalidAccount  = errors.New("invalid account")

	// Catalog errors
	ErrTrackNotFound = errors.New("track not found")
	ErrInvalidTrack  = errors.New("invalid track")

	// Playback denials, for callers that prefer error flow over Decision values
	ErrDeniedNoAccount        = errors.New("no user is signed in")
	ErrDeniedNoTrack          = errors.New("no song selected")
	ErrDeniedAccountExhausted = errors.New("user is out of songs for today")
	ErrDeniedTrackExhausted   = errors.New("song has reached its daily limit")
	ErrDeniedInsufficientTime = errors.New("user has insufficient time remaining")

	// Queue errors
	ErrQueueEmpty = errors.New("play queue is empty")

	// Persistence errors
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrSchemaMismatch   = errors.New("snapshot schema mismatch")
	ErrCorruptSnapshot  = errors.New("snapshot is corrupt")
	ErrRestoreFailed    = errors.New("restore failed")
	ErrPersistFailed    = errors.New("persist failed")
)
