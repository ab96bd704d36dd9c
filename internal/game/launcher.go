package game

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mcoot/galapa/internal/dependencies/clock"
	"github.com/mcoot/galapa/internal/model"
)

// Config holds the launcher configuration
type Config struct {
	// GameDir is the installation folder containing game/DQXGame.exe
	GameDir string
	// Wrapper, when set, is run with the game executable as its first
	// argument (for example a compatibility layer)
	Wrapper string
}

// Session is what a completed login hands to the game
type Session struct {
	SessionID string
	// PlayerNumber is the roster slot of the player, or 0 when the player is
	// not in the roster
	PlayerNumber int
}

// Arguments returns the game command line for session
func Arguments(session Session, now time.Time, ticks uint32) ([]string, error) {
	sid, err := EncodeSessionID(session.SessionID, now)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-StartupToken=" + StartupToken(ticks),
		"-SessionID=" + sid,
	}
	if session.PlayerNumber > 0 {
		args = append(args, "-PlayerNumber="+strconv.Itoa(session.PlayerNumber))
	}
	return append(args, "-USE_APARTMENTTHREADED"), nil
}

// Starter starts a prepared command without waiting for it
type Starter interface {
	Start(cmd *exec.Cmd) error
}

type execStarter struct{}

func (execStarter) Start(cmd *exec.Cmd) error {
	return cmd.Start()
}

// Process is a started game client
type Process struct {
	cmd *exec.Cmd
}

// Pid returns the process id, or 0 if it is unknown
func (p *Process) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Wait blocks until the game exits
func (p *Process) Wait() error {
	return p.cmd.Wait()
}

// Launcher starts the game client
type Launcher struct {
	cfg     Config
	clock   clock.Clock
	starter Starter
	logger  *slog.Logger
}

// NewLauncher creates a launcher that starts real processes
func NewLauncher(cfg Config, clk clock.Clock, logger *slog.Logger) *Launcher {
	return NewLauncherWithStarter(cfg, clk, execStarter{}, logger)
}

// NewLauncherWithStarter creates a launcher with a custom process starter
func NewLauncherWithStarter(cfg Config, clk clock.Clock, starter Starter, logger *slog.Logger) *Launcher {
	return &Launcher{
		cfg:     cfg,
		clock:   clk,
		starter: starter,
		logger:  logger.With(slog.String("component", "launcher")),
	}
}

// Executable returns the path of the game client
func (l *Launcher) Executable() string {
	return filepath.Join(l.cfg.GameDir, "game", "DQXGame.exe")
}

// Command builds the command that would start the game for session
func (l *Launcher) Command(session Session) (*exec.Cmd, error) {
	if l.cfg.GameDir == "" {
		return nil, fmt.Errorf("%w: game directory is not set", model.ErrInvalidConfig)
	}

	now := l.clock.Now()
	args, err := Arguments(session, now, uint32(now.UnixMilli()))
	if err != nil {
		return nil, err
	}

	var cmd *exec.Cmd
	if l.cfg.Wrapper != "" {
		cmd = exec.Command(l.cfg.Wrapper, append([]string{l.Executable()}, args...)...)
	} else {
		cmd = exec.Command(l.Executable(), args...)
	}
	cmd.Dir = filepath.Join(l.cfg.GameDir, "game")
	return cmd, nil
}

// Launch starts the game and returns without waiting for it to exit
func (l *Launcher) Launch(session Session) (*Process, error) {
	cmd, err := l.Command(session)
	if err != nil {
		return nil, err
	}
	if err := l.starter.Start(cmd); err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}

	p := &Process{cmd: cmd}
	l.logger.Info("game started", slog.Int("pid", p.Pid()), slog.Int("player", session.PlayerNumber))
	return p, nil
}
