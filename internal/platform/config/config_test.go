package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/galapa/internal/model"
)

type SettingsSuite struct {
	suite.Suite
}

func TestSettingsSuite(t *testing.T) {
	suite.Run(t, new(SettingsSuite))
}

func (s *SettingsSuite) setPaths() string {
	dir := s.T().TempDir()
	s.T().Setenv("GALAPA_APP_DATA", filepath.Join(dir, "app"))
	s.T().Setenv("GALAPA_SAVE_DIR", filepath.Join(dir, "save"))
	s.T().Setenv("GALAPA_USERNAME", "emma")
	return dir
}

func (s *SettingsSuite) TestDefaults() {
	dir := s.setPaths()

	settings, err := Load()
	s.Require().NoError(err)
	s.Equal(VaultMemory, settings.Vault)
	s.Equal("127.0.0.1:8080", settings.APIAddr)
	s.Equal("redis://localhost:6379", settings.RedisURL)
	s.Equal("emma", settings.Username)
	s.Equal(filepath.Join(dir, "app", "Cache"), settings.CacheDir())
}

func (s *SettingsSuite) TestOverrides() {
	s.setPaths()
	s.T().Setenv("GALAPA_VAULT", "file")
	s.T().Setenv("GALAPA_VAULT_PASSPHRASE", "secret")
	s.T().Setenv("GALAPA_GAME_DIR", "/games/dqx")
	s.T().Setenv("GALAPA_API_ADDR", ":9000")

	settings, err := Load()
	s.Require().NoError(err)
	s.Equal(VaultFile, settings.Vault)
	s.Equal("secret", settings.VaultPassphrase)
	s.Equal("/games/dqx", settings.GameDir)
	s.Equal(":9000", settings.APIAddr)
}

func (s *SettingsSuite) TestUnsetPathsGetPlatformDefaults() {
	s.T().Setenv("GALAPA_APP_DATA", "")
	s.T().Setenv("GALAPA_SAVE_DIR", "")
	s.T().Setenv("HOME", s.T().TempDir())
	s.T().Setenv("XDG_CONFIG_HOME", "")

	settings, err := Load()
	s.Require().NoError(err)
	s.Equal("GalapaLauncher", filepath.Base(settings.AppData))
	s.Equal(filepath.Join("My Games", "Dragon Quest X"), filepath.Join(filepath.Base(filepath.Dir(settings.SaveDir)), filepath.Base(settings.SaveDir)))
	s.NotEmpty(settings.Username)
}

func (s *SettingsSuite) TestSealedVaultNeedsPassphrase() {
	s.setPaths()
	s.T().Setenv("GALAPA_VAULT", "redis")

	_, err := Load()
	s.ErrorIs(err, model.ErrInvalidConfig)
}

func (s *SettingsSuite) TestUnknownVault() {
	s.setPaths()
	s.T().Setenv("GALAPA_VAULT", "keychain")

	_, err := Load()
	s.ErrorIs(err, model.ErrInvalidConfig)
}

type envTestConfig struct {
	Port int `env:"GALAPA_TEST_PORT" envDefault:"123"`
}

func (s *SettingsSuite) TestParseEnvError() {
	var cfg envTestConfig
	s.T().Setenv("GALAPA_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	s.ErrorContains(err, "parse env:")
}
