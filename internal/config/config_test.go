package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestServerDefaults() {
	cfg, err := LoadServer()
	s.Require().NoError(err)

	s.Equal(8080, cfg.Port)
	s.Equal(":8080", cfg.Addr())
	s.Equal("default", cfg.DefaultSession)
	s.Equal(ArchiveMemory, cfg.Archive)
	s.Equal(24*time.Hour, cfg.ArchiveTTL)
	s.Equal(50.0, cfg.MessageRate)
	s.Equal(100, cfg.MessageBurst)
	s.Equal(10, cfg.BcryptCost)
	s.Equal(slog.LevelInfo, cfg.SlogLevel())
	s.Empty(cfg.OTelEndpoint)
}

func (s *ConfigSuite) TestServerFromEnv() {
	s.T().Setenv("CARDBOARD_HOST", "127.0.0.1")
	s.T().Setenv("CARDBOARD_PORT", "9000")
	s.T().Setenv("CARDBOARD_LOG_LEVEL", "debug")
	s.T().Setenv("CARDBOARD_ARCHIVE", "redis")
	s.T().Setenv("CARDBOARD_REDIS_URL", "redis://localhost:6379/1")
	s.T().Setenv("CARDBOARD_ARCHIVE_TTL", "1h")

	cfg, err := LoadServer()
	s.Require().NoError(err)

	s.Equal("127.0.0.1:9000", cfg.Addr())
	s.Equal(slog.LevelDebug, cfg.SlogLevel())
	s.Equal(ArchiveRedis, cfg.Archive)
	s.Equal("redis://localhost:6379/1", cfg.RedisURL)
	s.Equal(time.Hour, cfg.ArchiveTTL)
}

func (s *ConfigSuite) TestParseError() {
	s.T().Setenv("CARDBOARD_PORT", "not-an-int")

	_, err := LoadServer()
	s.Require().Error(err)
	s.Contains(err.Error(), "parse env:")
}

func (s *ConfigSuite) TestRedisArchiveRequiresURL() {
	s.T().Setenv("CARDBOARD_ARCHIVE", "redis")

	_, err := LoadServer()
	s.Require().Error(err)
	s.Contains(err.Error(), "CARDBOARD_REDIS_URL")
}

func (s *ConfigSuite) TestInvalidArchive() {
	s.T().Setenv("CARDBOARD_ARCHIVE", "postgres")

	_, err := LoadServer()
	s.Require().Error(err)
}

func (s *ConfigSuite) TestClientDefaults() {
	s.T().Setenv("CARDBOARD_CLIENT_ID", "abc")

	cfg, err := LoadClient()
	s.Require().NoError(err)

	s.Equal("http://localhost:8080", cfg.Server)
	s.Equal("abc", cfg.ClientID)
}
