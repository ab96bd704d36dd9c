package login

import (
	"context"
	"log/slog"

	"github.com/pquerna/otp/totp"

	"github.com/mcoot/galapa/internal/dependencies/clock"
)

// maxAutoSteps bounds the auto-answer loop
const maxAutoSteps = 8

// Secrets are the stored answers auto-login may use. Empty means not stored.
type Secrets struct {
	Password   string
	TOTPSecret string
}

// AutoLoginStrategy answers the prompts of a saved-player login from
// stored secrets and hands control back at the first prompt it cannot answer
type AutoLoginStrategy struct {
	inner   *SavedPlayerStrategy
	secrets Secrets
	clock   clock.Clock
	logger  *slog.Logger
}

var _ Strategy = (*AutoLoginStrategy)(nil)

// NewAutoLoginStrategy wraps inner with the given secrets
func NewAutoLoginStrategy(inner *SavedPlayerStrategy, secrets Secrets, clk clock.Clock, logger *slog.Logger) *AutoLoginStrategy {
	return &AutoLoginStrategy{
		inner:   inner,
		secrets: secrets,
		clock:   clk,
		logger:  logger.With(slog.String("component", "login"), slog.String("strategy", "auto")),
	}
}

// Start begins the saved-player flow and answers what it can
func (s *AutoLoginStrategy) Start(ctx context.Context) (Step, error) {
	step, err := s.inner.Start(ctx)
	if err != nil {
		return nil, err
	}
	return s.autoStep(ctx, step)
}

// Step forwards a user answer and then continues answering automatically
func (s *AutoLoginStrategy) Step(ctx context.Context, action Action) (Step, error) {
	step, err := s.inner.Step(ctx, action)
	if err != nil {
		return nil, err
	}
	return s.autoStep(ctx, step)
}

func (s *AutoLoginStrategy) autoStep(ctx context.Context, step Step) (Step, error) {
	for range maxAutoSteps {
		action := s.actionFor(step)
		if action == nil {
			return step, nil
		}
		s.logger.Debug("answering step", slog.String("step", string(step.Kind())))

		next, err := s.inner.Step(ctx, action)
		if err != nil {
			return nil, err
		}
		step = next
	}
	s.logger.Warn("auto-login gave up", slog.Int("max_steps", maxAutoSteps))
	return step, nil
}

func (s *AutoLoginStrategy) actionFor(step Step) Action {
	switch step.(type) {
	case AskPassword:
		if s.secrets.Password != "" {
			return PasswordAction{Password: s.secrets.Password}
		}
	case AskOtp:
		if s.secrets.TOTPSecret == "" {
			return nil
		}
		code, err := totp.GenerateCode(s.secrets.TOTPSecret, s.clock.Now())
		if err != nil {
			s.logger.Warn("stored TOTP secret is unusable", slog.Any("error", err))
			return nil
		}
		return OtpAction{Otp: code}
	}
	return nil
}
