package login

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/mcoot/galapa/internal/model"
	"github.com/mcoot/galapa/internal/webclient"
)

// SavedPlayerStrategy logs in an account already in the roster. The server
// identifies it by token and tells us the username.
type SavedPlayerStrategy struct {
	session
	token    string
	username string
	password string
}

var _ Strategy = (*SavedPlayerStrategy)(nil)

// NewSavedPlayerStrategy creates a strategy for the player with token
func NewSavedPlayerStrategy(fetcher Fetcher, token string, cfg Config, logger *slog.Logger) *SavedPlayerStrategy {
	return &SavedPlayerStrategy{
		session: session{
			fetcher: fetcher,
			cfg:     cfg,
			logger:  logger.With(slog.String("component", "login"), slog.String("strategy", "saved_player")),
		},
		token: token,
	}
}

// Token is the account this strategy logs in
func (s *SavedPlayerStrategy) Token() string {
	return s.token
}

// Username is the name the server reported on Start
func (s *SavedPlayerStrategy) Username() string {
	return s.username
}

// Start loads the login form for the saved account
func (s *SavedPlayerStrategy) Start(ctx context.Context) (Step, error) {
	if err := s.fetchLoginForm(ctx, url.Values{"dqxmode": {"2"}, "id": {s.token}}); err != nil {
		return loadFailed(s.logger, err), nil
	}
	s.username = s.form.Fields[fieldUsername]
	s.expected = ActionPassword
	return AskPassword{Username: s.username}, nil
}

// Step submits a password or one-time password
func (s *SavedPlayerStrategy) Step(ctx context.Context, action Action) (Step, error) {
	if err := s.accept(action); err != nil {
		return nil, err
	}

	var fields map[string]string
	switch a := action.(type) {
	case PasswordAction:
		s.password = a.Password
		fields = map[string]string{fieldPassword: a.Password}
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

func (s *SavedPlayerStrategy) ask(form *webclient.Form) (Step, ActionKind) {
	username := form.Fields[fieldUsername]
	if username == "" {
		username = s.username
	}
	return askOtpOr(form, username, "", func() (Step, ActionKind) {
		return AskPassword{Username: username, Password: s.password}, ActionPassword
	})
}

func (s *SavedPlayerStrategy) completed(resp *Response) Step {
	return LoginCompleted{
		SessionID: resp.SessionID,
		Token:     s.token,
		Username:  s.username,
		Password:  s.password,
	}
}
