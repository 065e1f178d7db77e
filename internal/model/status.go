package model

import "fmt"

// FormatRemaining renders seconds as h:mm:ss
func FormatRemaining(seconds int) string {
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}

// AccountStatus is a consistent read of one account's counters
type AccountStatus struct {
	Username             string `json:"username"`
	PlaysToday           int    `json:"plays_today"`
	TimeRemainingSeconds int    `json:"time_remaining_seconds"`
}

// String formats the status line shown while signed in
func (s AccountStatus) String() string {
	return fmt.Sprintf("Logged in as: %s   Status: %d times played, %s remaining",
		s.Username, s.PlaysToday, FormatRemaining(s.TimeRemainingSeconds))
}
