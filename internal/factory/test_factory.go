package factory

import (
	"log/slog"
	"testing"
	"time"

	"github.com/mcoot/galapa/internal/dependencies/clock"
	"github.com/mcoot/galapa/internal/dependencies/mocks"
	"github.com/mcoot/galapa/internal/game"
	"github.com/mcoot/galapa/internal/platform/config"
	"github.com/mcoot/galapa/internal/testutil"
	"github.com/mcoot/galapa/internal/vault/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockRandom  *mocks.MockRandom
	MockStarter *mocks.MockStarter
	Server      *testutil.FakeServer
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Every outbound request goes to a fake server knowing accounts.
func NewTestApp(t testing.TB, accounts ...testutil.Account) *TestApp {
	t.Helper()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockStarter := mocks.NewMockStarter()
	server := testutil.NewFakeServer(t, mockClock.Now, accounts...)

	settings := config.Settings{
		AppData:        t.TempDir(),
		SaveDir:        t.TempDir(),
		GameDir:        t.TempDir(),
		Username:       "emma",
		Vault:          config.VaultMemory,
		LoginURL:       server.LoginURL(),
		MaintenanceURL: server.MaintenanceURL(),
		BannerURL:      server.BannerURL(),
	}
	newLauncher := func(cfg game.Config, clk clock.Clock, logger *slog.Logger) *game.Launcher {
		return game.NewLauncherWithStarter(cfg, clk, mockStarter, logger)
	}

	app, err := newWithDependencies(settings, memory.New(), mockClock, mockRandom, nil, newLauncher, testutil.NopLogger())
	if err != nil {
		t.Fatalf("build test app: %v", err)
	}

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockRandom:  mockRandom,
		MockStarter: mockStarter,
		Server:      server,
	}
}
