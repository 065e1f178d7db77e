package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/jukebox/internal/model"
)

type ConfigSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.T().Chdir(s.dir)
}

func (s *ConfigSuite) writeConfig(body string) string {
	path := filepath.Join(s.dir, "custom.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(body), 0o600))
	return path
}

func (s *ConfigSuite) TestDefaultsWithoutFile() {
	cfg, err := Load("")
	s.Require().NoError(err)

	s.Equal(model.DefaultDailyAllowance, cfg.Jukebox.DailyAllowanceSeconds)
	s.Len(cfg.Jukebox.Accounts, 4)
	s.Len(cfg.Jukebox.Catalog, 9)
	s.Equal(StorageTypeFile, cfg.Storage.Type)
	s.Equal("./data", cfg.Storage.Path)
	s.Equal("info", cfg.Logging.Level)
	s.True(cfg.Metrics.Enabled)
}

func (s *ConfigSuite) TestLoadFromFile() {
	path := s.writeConfig(`
jukebox:
  daily_allowance_seconds: 600
  accounts:
    - username: Sam
      credential: "77"
  catalog:
    - title: Jingle
      artist: Someone
      audio_ref: jingle.wav
      length_seconds: 12
storage:
  type: memory
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	s.Require().NoError(err)

	s.Equal(600, cfg.Jukebox.DailyAllowanceSeconds)
	s.Require().Len(cfg.Jukebox.Accounts, 1)
	s.Equal("Sam", cfg.Jukebox.Accounts[0].Username)
	s.Equal("77", cfg.Jukebox.Accounts[0].Credential)
	s.Require().Len(cfg.Jukebox.Catalog, 1)
	s.Equal("jingle.wav", cfg.Jukebox.Catalog[0].AudioRef)
	s.Equal(12, cfg.Jukebox.Catalog[0].LengthSeconds)
	s.Equal(StorageTypeMemory, cfg.Storage.Type)
	s.Equal("text", cfg.Logging.Format)
}

func (s *ConfigSuite) TestDefaultFileInWorkingDirectory() {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, "jukebox.yaml"), []byte("storage:\n  type: memory\n"), 0o600))

	cfg, err := Load("")
	s.Require().NoError(err)
	s.Equal(StorageTypeMemory, cfg.Storage.Type)
}

func (s *ConfigSuite) TestEnvironmentOverrides() {
	s.T().Setenv("JUKEBOX_STORAGE_TYPE", "redis")
	s.T().Setenv("JUKEBOX_STORAGE_REDIS_URL", "redis://cache:6379/2")
	s.T().Setenv("JUKEBOX_JUKEBOX_DAILY_ALLOWANCE_SECONDS", "1200")

	cfg, err := Load("")
	s.Require().NoError(err)
	s.Equal(StorageTypeRedis, cfg.Storage.Type)
	s.Equal("redis://cache:6379/2", cfg.Storage.RedisURL)
	s.Equal(1200, cfg.Jukebox.DailyAllowanceSeconds)
}

func (s *ConfigSuite) TestMissingExplicitFileFails() {
	_, err := Load(filepath.Join(s.dir, "nope.yaml"))
	s.Error(err)
}

func (s *ConfigSuite) TestValidation() {
	cases := map[string]string{
		"non-positive allowance": "jukebox:\n  daily_allowance_seconds: 0\n",
		"duplicate account":      "jukebox:\n  accounts:\n    - {username: A, credential: '1'}\n    - {username: A, credential: '2'}\n",
		"empty credential":       "jukebox:\n  accounts:\n    - {username: A, credential: ''}\n",
		"duplicate track":        "jukebox:\n  catalog:\n    - {title: T, length_seconds: 1}\n    - {title: T, length_seconds: 2}\n",
		"zero length":            "jukebox:\n  catalog:\n    - {title: T, length_seconds: 0}\n",
		"unknown storage":        "storage:\n  type: floppy\n",
		"bad level":              "logging:\n  level: loud\n",
		"bad format":             "logging:\n  format: xml\n",
	}
	for name, body := range cases {
		s.Run(name, func() {
			_, err := Load(s.writeConfig(body))
			s.Error(err)
		})
	}
}

func (s *ConfigSuite) TestNewLogger() {
	var buf bytes.Buffer
	logger := LoggingConfig{Level: "warn", Format: "text"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown")

	s.NotContains(buf.String(), "hidden")
	s.Contains(buf.String(), "msg=shown")
}
