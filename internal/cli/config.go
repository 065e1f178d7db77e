package cli

import (
	"os"
)

// Config holds CLI configuration
type Config struct {
	ConfigFile string
	Output     string
	Verbose    bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ConfigFile: os.Getenv("JUKEBOX_CONFIG"),
		Output:     "text",
		Verbose:    false,
	}
}
