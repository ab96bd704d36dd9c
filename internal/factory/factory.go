package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/galapa/internal/api"
	"github.com/mcoot/galapa/internal/configfile"
	"github.com/mcoot/galapa/internal/cookiejar"
	"github.com/mcoot/galapa/internal/dependencies/clock"
	"github.com/mcoot/galapa/internal/dependencies/random"
	"github.com/mcoot/galapa/internal/game"
	"github.com/mcoot/galapa/internal/hiroba"
	"github.com/mcoot/galapa/internal/login"
	"github.com/mcoot/galapa/internal/platform/config"
	"github.com/mcoot/galapa/internal/playerlist"
	"github.com/mcoot/galapa/internal/services/flows"
	"github.com/mcoot/galapa/internal/vault"
	filevault "github.com/mcoot/galapa/internal/vault/file"
	"github.com/mcoot/galapa/internal/vault/memory"
	redisvault "github.com/mcoot/galapa/internal/vault/redis"
	"github.com/mcoot/galapa/internal/webclient"
)

// Cookie jar names
const (
	loginJar  = "login"
	bannerJar = "banners"
)

// App contains all wired application components
type App struct {
	Settings config.Settings

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Storage
	Vault   vault.Store
	Cookies *cookiejar.Registry

	// Services
	LoginClient *webclient.Client
	Players     *playerlist.List
	Flows       *flows.Service
	Launcher    *game.Launcher
	Maintenance *game.MaintenanceChecker
	Banners     *hiroba.Client

	logger  *slog.Logger
	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	Settings config.Settings
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Transport carries every outbound request (optional)
	// If nil, http.DefaultTransport is used
	Transport http.RoundTripper
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}

	clk := clock.New()
	rnd := random.New()

	store, closer, err := newVault(cfg.Settings, rnd)
	if err != nil {
		return nil, err
	}

	app, err := newWithDependencies(cfg.Settings, store, clk, rnd, cfg.Transport, game.NewLauncher, logger)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

func newVault(settings config.Settings, rnd random.Random) (vault.Store, io.Closer, error) {
	if settings.Vault == config.VaultMemory {
		return memory.New(), nil, nil
	}

	sealer, err := vault.NewSealer(settings.VaultPassphrase, vault.DefaultSealerConfig(), rnd)
	if err != nil {
		return nil, nil, err
	}

	switch settings.Vault {
	case config.VaultFile:
		return filevault.New(settings.AppData, sealer), nil, nil
	case config.VaultRedis:
		redisCfg := redisvault.DefaultConfig()
		redisCfg.URL = settings.RedisURL
		store, err := redisvault.New(redisCfg, sealer)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis vault: %w", err)
		}
		return store, store, nil
	default:
		return nil, nil, errors.New("invalid vault backend: must be 'memory', 'file' or 'redis'")
	}
}

// launcherFunc builds the game launcher, swapped in tests
type launcherFunc func(cfg game.Config, clk clock.Clock, logger *slog.Logger) *game.Launcher

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(settings config.Settings, store vault.Store, clk clock.Clock, rnd random.Random, transport http.RoundTripper, newLauncher launcherFunc, logger *slog.Logger) (*App, error) {
	if transport == nil {
		transport = http.DefaultTransport
	}

	cookies := cookiejar.NewRegistry(settings.CacheDir(), transport, clk, logger)
	userAgent := webclient.UserAgent(webclient.ComputerID())

	jar, err := cookies.Jar(loginJar)
	if err != nil {
		return nil, err
	}
	loginClient := webclient.New(jar, userAgent, logger)

	bannerCookies, err := cookies.Jar(bannerJar)
	if err != nil {
		return nil, err
	}
	bannerClient := webclient.New(bannerCookies, userAgent, logger)

	loginCfg := login.DefaultConfig()
	if settings.LoginURL != "" {
		loginCfg.LoginURL = settings.LoginURL
	}

	players := playerlist.New(
		configfile.NewPlayerListFile(settings.SaveDir, settings.Username),
		playerlist.NewCacheFile(settings.AppData, login.NewNameResolver(loginClient, loginCfg, logger), logger),
		store,
		logger,
	)

	launcher := newLauncher(game.Config{GameDir: settings.GameDir, Wrapper: settings.GameWrapper}, clk, logger)
	strategies := flows.NewLoginStrategies(loginClient, loginCfg, clk, logger)

	return &App{
		Settings:    settings,
		Clock:       clk,
		Random:      rnd,
		Vault:       store,
		Cookies:     cookies,
		LoginClient: loginClient,
		Players:     players,
		Flows:       flows.New(players, strategies, launcher, clk, flows.DefaultConfig(), logger),
		Launcher:    launcher,
		Maintenance: game.NewMaintenanceChecker(settings.MaintenanceURL, &http.Client{Transport: transport}, logger),
		Banners:     hiroba.New(bannerClient, settings.BannerURL, logger),
		logger:      logger,
	}, nil
}

// Load reads the player list. It must be called before the roster is used.
func (a *App) Load(ctx context.Context) error {
	return a.Players.Load(ctx)
}

// Router builds the local API handler
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:      a.logger,
		Token:       a.Settings.APIToken,
		Players:     a.Players,
		Flows:       a.Flows,
		Maintenance: a.Maintenance,
		Banners:     a.Banners,
	})
}

// Serve loads the roster and runs the local API until ctx is done
func (a *App) Serve(ctx context.Context) error {
	if err := a.Load(ctx); err != nil {
		return err
	}

	serverCfg := api.DefaultServerConfig()
	if a.Settings.APIAddr != "" {
		serverCfg.Addr = a.Settings.APIAddr
	}
	server := api.NewServer(a.Router(), serverCfg, a.logger)
	if err := server.Listen(); err != nil {
		return err
	}
	a.logger.Info("launcher API listening", slog.String("addr", server.Addr()))

	go a.CleanFlows(ctx, time.Minute)
	return server.Run(ctx)
}

// CleanFlows drops expired login flows every interval until ctx is done
func (a *App) CleanFlows(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Flows.CleanExpiredFlows()
		}
	}
}

// Close releases the vault connection, if there is one
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
