package login

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/mcoot/galapa/internal/model"
	"github.com/mcoot/galapa/internal/webclient"
)

// NewPlayerStrategy logs in an account the launcher has not seen before
type NewPlayerStrategy struct {
	session
	username string
	password string
}

var _ Strategy = (*NewPlayerStrategy)(nil)

// NewNewPlayerStrategy creates a strategy that asks for username and password
func NewNewPlayerStrategy(fetcher Fetcher, cfg Config, logger *slog.Logger) *NewPlayerStrategy {
	return &NewPlayerStrategy{
		session: session{
			fetcher: fetcher,
			cfg:     cfg,
			logger:  logger.With(slog.String("component", "login"), slog.String("strategy", "new_player")),
		},
	}
}

// Start loads the login form
func (s *NewPlayerStrategy) Start(ctx context.Context) (Step, error) {
	if err := s.fetchLoginForm(ctx, url.Values{"dqxmode": {"1"}}); err != nil {
		return loadFailed(s.logger, err), nil
	}
	s.expected = ActionUsernamePassword
	return AskUsernamePassword{}, nil
}

// Step submits a username/password or one-time password
func (s *NewPlayerStrategy) Step(ctx context.Context, action Action) (Step, error) {
	if err := s.accept(action); err != nil {
		return nil, err
	}

	var fields map[string]string
	switch a := action.(type) {
	case UsernamePasswordAction:
		s.username, s.password = a.Username, a.Password
		fields = map[string]string{fieldUsername: a.Username, fieldPassword: a.Password}
	case OtpAction:
		fields = map[string]string{fieldOtp: a.Otp}
	default:
		return nil, model.ErrUnsupportedAction
	}

	resp, err := s.submit(ctx, fields)
	if err != nil {
		return submitFailed(&s.session, err), nil
	}
	return s.outcome(resp, s.ask, s.completed), nil
}

func (s *NewPlayerStrategy) ask(form *webclient.Form) (Step, ActionKind) {
	return askOtpOr(form, s.username, "", func() (Step, ActionKind) {
		return AskUsernamePassword{Username: s.username, Password: s.password}, ActionUsernamePassword
	})
}

func (s *NewPlayerStrategy) completed(resp *Response) Step {
	return LoginCompleted{
		SessionID: resp.SessionID,
		Token:     resp.Token,
		Username:  s.username,
		Password:  s.password,
	}
}
