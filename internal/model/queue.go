package model

import "fmt"

// QueueEntry is an admitted track waiting to be played
type QueueEntry struct {
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	AudioRef      string `json:"audio_ref"`
	LengthSeconds int    `json:"length_seconds"`
}

// Validate checks that the entry refers to a playable track
func (e QueueEntry) Validate() error {
	if e.Title == "" || e.LengthSeconds <= 0 {
		return fmt.Errorf("%w: queue entry %q", ErrInvalidTrack, e.Title)
	}
	return nil
}
