package model

import (
	"fmt"
	"sync"
)

// Track is a catalog entry with a per-day play counter. Its metadata is
// fixed at construction.
type Track struct {
	title         string
	artist        string
	audioRef      string // resolved by the external player
	lengthSeconds int

	mu         sync.Mutex
	playsToday int
}

// NewTrack creates a track with no plays today
func NewTrack(title, artist, audioRef string, lengthSeconds int) *Track {
	return &Track{
		title:         title,
		artist:        artist,
		audioRef:      audioRef,
		lengthSeconds: lengthSeconds,
	}
}

func (t *Track) Title() string {
	return t.title
}

func (t *Track) Artist() string {
	return t.artist
}

// AudioRef returns the reference handed to the external player
func (t *Track) AudioRef() string {
	return t.audioRef
}

func (t *Track) LengthSeconds() int {
	return t.lengthSeconds
}

// PlaysToday returns the number of admitted plays today
func (t *Track) PlaysToday() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playsToday
}

// CanPlay reports whether the track is under its daily cap.
// This only considers the track, not the account requesting it.
func (t *Track) CanPlay() bool {
	return t.PlaysToday() < MaxPlaysPerTrack
}

// RecordPlay counts one admitted play
func (t *Track) RecordPlay() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playsToday++
}

// ResetDaily clears the play count
func (t *Track) ResetDaily() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playsToday = 0
}

// String formats the track as "m:ss Title by Artist"
func (t *Track) String() string {
	return fmt.Sprintf("%d:%02d %s by %s", t.lengthSeconds/60, t.lengthSeconds%60, t.title, t.artist)
}

// Record returns a point-in-time copy suitable for persistence
func (t *Track) Record() TrackRecord {
	return TrackRecord{
		Title:         t.title,
		Artist:        t.artist,
		AudioRef:      t.audioRef,
		LengthSeconds: t.lengthSeconds,
		PlaysToday:    t.PlaysToday(),
	}
}

// TrackRecord is the persisted form of a Track
type TrackRecord struct {
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	AudioRef      string `json:"audio_ref"`
	LengthSeconds int    `json:"length_seconds"`
	PlaysToday    int    `json:"plays_today"`
}

// Validate checks the record against the track invariants
func (r TrackRecord) Validate() error {
	switch {
	case r.Title == "":
		return fmt.Errorf("%w: empty title", ErrInvalidTrack)
	case r.LengthSeconds <= 0:
		return fmt.Errorf("%w: %s has non-positive length %d", ErrInvalidTrack, r.Title, r.LengthSeconds)
	case r.PlaysToday < 0 || r.PlaysToday > MaxPlaysPerTrack:
		return fmt.Errorf("%w: %s plays today %d outside [0, %d]",
			ErrInvalidTrack, r.Title, r.PlaysToday, MaxPlaysPerTrack)
	}
	return nil
}

// TrackFromRecord rebuilds a Track from its persisted form
func TrackFromRecord(r TrackRecord) (*Track, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	t := NewTrack(r.Title, r.Artist, r.AudioRef, r.LengthSeconds)
	t.playsToday = r.PlaysToday
	return t, nil
}
