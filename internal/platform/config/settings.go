package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"slices"

	"github.com/mcoot/galapa/internal/model"
)

// Vault backends
const (
	VaultMemory = "memory"
	VaultFile   = "file"
	VaultRedis  = "redis"
)

var vaultBackends = []string{VaultMemory, VaultFile, VaultRedis}

// Settings is the launcher configuration read from the environment
type Settings struct {
	// AppData holds the launcher's own files: the JSON player cache, cookie
	// jars and the file vault
	AppData string `env:"GALAPA_APP_DATA"`
	// SaveDir is the game's save folder holding the obfuscated XML files
	SaveDir string `env:"GALAPA_SAVE_DIR"`
	GameDir string `env:"GALAPA_GAME_DIR"`
	// GameWrapper is prepended to the game command line
	GameWrapper string `env:"GALAPA_GAME_WRAPPER"`
	// Username keys the player list codec. Defaults to the OS user.
	Username string `env:"GALAPA_USERNAME"`

	Vault           string `env:"GALAPA_VAULT" envDefault:"memory"`
	VaultPassphrase string `env:"GALAPA_VAULT_PASSPHRASE"`
	RedisURL        string `env:"GALAPA_REDIS_URL" envDefault:"redis://localhost:6379"`

	LoginURL       string `env:"GALAPA_LOGIN_URL"`
	MaintenanceURL string `env:"GALAPA_MAINTENANCE_URL"`
	BannerURL      string `env:"GALAPA_BANNER_URL"`
	APIAddr        string `env:"GALAPA_API_ADDR" envDefault:"127.0.0.1:8080"`
	// APIToken, when set, must be sent as a bearer token to the local API
	APIToken string `env:"GALAPA_API_TOKEN"`
}

// Load reads the settings from the environment and fills in platform
// defaults for anything left unset
func Load() (Settings, error) {
	var s Settings
	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	if err := s.applyDefaults(); err != nil {
		return Settings{}, err
	}
	return s, s.Validate()
}

func (s *Settings) applyDefaults() error {
	if s.AppData == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("locate app data: %w", err)
		}
		s.AppData = filepath.Join(dir, "GalapaLauncher")
	}
	if s.SaveDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("locate save folder: %w", err)
		}
		s.SaveDir = filepath.Join(home, "Documents", "My Games", "Dragon Quest X")
	}
	if s.Username == "" {
		u, err := user.Current()
		if err != nil {
			return fmt.Errorf("current user: %w", err)
		}
		s.Username = filepath.Base(u.Username)
	}
	return nil
}

// Validate checks that the settings can be used together
func (s Settings) Validate() error {
	if !slices.Contains(vaultBackends, s.Vault) {
		return fmt.Errorf("%w: unknown vault backend %q", model.ErrInvalidConfig, s.Vault)
	}
	if s.Vault != VaultMemory && s.VaultPassphrase == "" {
		return fmt.Errorf("%w: vault %q needs GALAPA_VAULT_PASSPHRASE", model.ErrInvalidConfig, s.Vault)
	}
	return nil
}

// CacheDir is where cookie jars are kept
func (s Settings) CacheDir() string {
	return filepath.Join(s.AppData, "Cache")
}
