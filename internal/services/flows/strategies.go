package flows

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/galapa/internal/dependencies/clock"
	"github.com/mcoot/galapa/internal/login"
	"github.com/mcoot/galapa/internal/model"
)

// Mode selects how a flow logs in
type Mode string

const (
	// ModeNew logs in an account that is not in the roster yet
	ModeNew Mode = "new"
	// ModeSaved logs in a roster player, asking for every secret
	ModeSaved Mode = "saved"
	// ModeAuto logs in a roster player, answering from stored secrets
	ModeAuto Mode = "auto"
)

// StrategyFactory builds the login strategy for a flow. player is the roster
// entry for saved and auto flows and the zero value for new ones.
type StrategyFactory interface {
	Strategy(mode Mode, player model.SavedPlayer) (login.Strategy, error)
}

// LoginStrategies builds the real protocol strategies
type LoginStrategies struct {
	fetcher login.Fetcher
	cfg     login.Config
	clock   clock.Clock
	logger  *slog.Logger
}

var _ StrategyFactory = (*LoginStrategies)(nil)

// NewLoginStrategies creates a factory sending through fetcher
func NewLoginStrategies(fetcher login.Fetcher, cfg login.Config, clk clock.Clock, logger *slog.Logger) *LoginStrategies {
	return &LoginStrategies{fetcher: fetcher, cfg: cfg, clock: clk, logger: logger}
}

func (f *LoginStrategies) Strategy(mode Mode, player model.SavedPlayer) (login.Strategy, error) {
	switch mode {
	case ModeNew:
		return login.NewNewPlayerStrategy(f.fetcher, f.cfg, f.logger), nil
	case ModeSaved:
		return login.NewSavedPlayerStrategy(f.fetcher, player.Token, f.cfg, f.logger), nil
	case ModeAuto:
		saved := login.NewSavedPlayerStrategy(f.fetcher, player.Token, f.cfg, f.logger)
		secrets := login.Secrets{Password: player.Password, TOTPSecret: player.TOTPSecret}
		return login.NewAutoLoginStrategy(saved, secrets, f.clock, f.logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown login mode %q", model.ErrInvalidArgument, mode)
	}
}
