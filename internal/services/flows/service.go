package flows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/galapa/internal/dependencies/clock"
	"github.com/mcoot/galapa/internal/game"
	"github.com/mcoot/galapa/internal/login"
	"github.com/mcoot/galapa/internal/model"
)

// Roster is the part of the player list a flow updates on completion
type Roster interface {
	Player(token string) (model.SavedPlayer, error)
	Add(token string) (model.SavedPlayer, error)
	SetName(token, name string) error
	SetSecrets(token, password, totpSecret string) error
	Select(number int) error
	Save(ctx context.Context) error
}

// Launcher starts the game for a completed login
type Launcher interface {
	Launch(session game.Session) (*game.Process, error)
}

// StartRequest describes a new flow
type StartRequest struct {
	Mode Mode
	// Token identifies the roster player for saved and auto flows
	Token string
	// Remember stores the password entered during the flow in the vault
	Remember bool
}

// State is a snapshot of a flow
type State struct {
	ID           string
	Mode         Mode
	Token        string
	Step         login.Step
	PlayerNumber int
	ExpiresAt    time.Time
}

// Completed returns the completion step, if the flow has finished
func (s State) Completed() (login.LoginCompleted, bool) {
	c, ok := s.Step.(login.LoginCompleted)
	return c, ok
}

type flow struct {
	mu       sync.Mutex
	state    State
	remember bool
	strategy login.Strategy
}

// Config holds configuration for the flow service
type Config struct {
	FlowDuration time.Duration
}

// DefaultConfig returns default flow configuration
func DefaultConfig() Config {
	return Config{
		FlowDuration: 15 * time.Minute,
	}
}

// Service keeps the login flows in progress, keyed by an opaque id
type Service struct {
	roster     Roster
	strategies StrategyFactory
	launcher   Launcher
	clock      clock.Clock
	logger     *slog.Logger

	mu    sync.RWMutex
	flows map[string]*flow

	flowDuration time.Duration
}

// New creates a new flow service
func New(roster Roster, strategies StrategyFactory, launcher Launcher, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.FlowDuration == 0 {
		cfg.FlowDuration = DefaultConfig().FlowDuration
	}
	return &Service{
		roster:       roster,
		strategies:   strategies,
		launcher:     launcher,
		clock:        clk,
		logger:       logger.With(slog.String("component", "flows")),
		flows:        make(map[string]*flow),
		flowDuration: cfg.FlowDuration,
	}
}

// Start creates a flow and runs its first step
func (s *Service) Start(ctx context.Context, req StartRequest) (State, error) {
	var player model.SavedPlayer
	switch req.Mode {
	case ModeNew:
	case ModeSaved, ModeAuto:
		p, err := s.roster.Player(req.Token)
		if err != nil {
			return State{}, err
		}
		player = p
	default:
		return State{}, fmt.Errorf("%w: unknown login mode %q", model.ErrInvalidArgument, req.Mode)
	}

	strategy, err := s.strategies.Strategy(req.Mode, player)
	if err != nil {
		return State{}, err
	}

	step, err := strategy.Start(ctx)
	if err != nil {
		return State{}, err
	}

	now := s.clock.Now()
	f := &flow{
		state: State{
			ID:           uuid.NewString(),
			Mode:         req.Mode,
			Token:        req.Token,
			PlayerNumber: player.Number,
			ExpiresAt:    now.Add(s.flowDuration),
		},
		remember: req.Remember,
		strategy: strategy,
	}
	if err := s.advance(ctx, f, step); err != nil {
		return State{}, err
	}

	s.mu.Lock()
	s.flows[f.state.ID] = f
	s.mu.Unlock()

	s.logger.Debug("flow started", slog.String("flow", f.state.ID), slog.String("mode", string(req.Mode)))
	return f.state, nil
}

// Step answers the current prompt of a flow
func (s *Service) Step(ctx context.Context, id string, action login.Action) (State, error) {
	f, err := s.get(id)
	if err != nil {
		return State{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, done := f.state.Completed(); done {
		return State{}, fmt.Errorf("%w: login already completed", model.ErrUnsupportedAction)
	}

	step, err := f.strategy.Step(ctx, action)
	if err != nil {
		return State{}, err
	}
	if err := s.advance(ctx, f, step); err != nil {
		return State{}, err
	}
	f.state.ExpiresAt = s.clock.Now().Add(s.flowDuration)
	return f.state, nil
}

// Get returns the current state of a flow
func (s *Service) Get(id string) (State, error) {
	f, err := s.get(id)
	if err != nil {
		return State{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, nil
}

// Launch starts the game with the session of a completed flow and forgets
// the flow
func (s *Service) Launch(id string) (*game.Process, error) {
	f, err := s.get(id)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	completed, done := f.state.Completed()
	number := f.state.PlayerNumber
	f.mu.Unlock()
	if !done {
		return nil, fmt.Errorf("%w: login has not completed", model.ErrInvalidArgument)
	}

	proc, err := s.launcher.Launch(game.Session{SessionID: completed.SessionID, PlayerNumber: number})
	if err != nil {
		return nil, err
	}
	s.Remove(id)
	return proc, nil
}

// Remove forgets a flow
func (s *Service) Remove(id string) {
	s.mu.Lock()
	delete(s.flows, id)
	s.mu.Unlock()
}

// CleanExpiredFlows removes expired flows (call periodically)
func (s *Service) CleanExpiredFlows() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, f := range s.flows {
		f.mu.Lock()
		expired := now.After(f.state.ExpiresAt)
		f.mu.Unlock()
		if expired {
			delete(s.flows, id)
		}
	}
}

func (s *Service) get(id string) (*flow, error) {
	s.mu.RLock()
	f, ok := s.flows[id]
	s.mu.RUnlock()

	if !ok {
		return nil, model.ErrFlowNotFound
	}
	f.mu.Lock()
	expired := s.clock.Now().After(f.state.ExpiresAt)
	f.mu.Unlock()
	if expired {
		s.Remove(id)
		return nil, model.ErrFlowNotFound
	}
	return f, nil
}

// advance records step and, once the login completes, writes the outcome to
// the roster. A completion the roster could not record leaves the flow on
// its previous step.
func (s *Service) advance(ctx context.Context, f *flow, step login.Step) error {
	completed, ok := step.(login.LoginCompleted)
	if !ok {
		f.state.Step = step
		return nil
	}

	number, err := s.complete(ctx, f, completed)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	f.state.Step = step
	f.state.PlayerNumber = number
	s.logger.Info("login completed", slog.String("flow", f.state.ID), slog.Int("player", number))
	return nil
}

func (s *Service) complete(ctx context.Context, f *flow, completed login.LoginCompleted) (int, error) {
	token := f.state.Token
	if f.state.Mode == ModeNew {
		token = completed.Token
	}
	if token == "" {
		return 0, nil
	}

	player, err := s.roster.Player(token)
	if errors.Is(err, model.ErrPlayerNotFound) {
		player, err = s.roster.Add(token)
		if errors.Is(err, model.ErrPlayerLimitReached) {
			s.logger.Warn("roster is full, player not saved", slog.String("flow", f.state.ID))
			return 0, nil
		}
	}
	if err != nil {
		return 0, err
	}

	if completed.Username != "" {
		if err := s.roster.SetName(token, completed.Username); err != nil {
			return 0, err
		}
	}
	if f.remember && completed.Password != "" {
		if err := s.roster.SetSecrets(token, completed.Password, player.TOTPSecret); err != nil {
			return 0, err
		}
	}
	if err := s.roster.Select(player.Number); err != nil {
		return 0, err
	}
	if err := s.roster.Save(ctx); err != nil {
		return 0, err
	}
	return player.Number, nil
}
