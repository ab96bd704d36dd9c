package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/mcoot/galapa/internal/model"
	"github.com/mcoot/galapa/internal/webclient"
)

// DefaultLoginURL is the OAuth login page the official launcher opens
const DefaultLoginURL = "https://dqx-login.square-enix.com/oauth/sp/sso/dqxwin/login?client_id=dqx_win&redirect_uri=https%3a%2f%2fdqx%2dlogin%2esquare%2denix%2ecom%2f&response_type=code"

const (
	msgLoadFailed  = "Failed to load login form"
	msgLoginFailed = "Login failed"

	fieldUsername = "sqexid"
	fieldPassword = "password"
	fieldOtp      = "otppw"
)

// Config holds settings shared by all strategies
type Config struct {
	LoginURL string
}

// DefaultConfig returns the production login endpoint
func DefaultConfig() Config {
	return Config{LoginURL: DefaultLoginURL}
}

// Fetcher performs the HTTP side of the protocol
type Fetcher interface {
	PostForm(ctx context.Context, target string, values url.Values) (*webclient.Page, error)
	Submit(ctx context.Context, form *webclient.Form) (*webclient.Page, error)
}

var _ Fetcher = (*webclient.Client)(nil)

// Strategy drives one login attempt. Protocol failures come back as
// DisplayError steps; an error is returned only when the strategy is misused.
type Strategy interface {
	Start(ctx context.Context) (Step, error)
	Step(ctx context.Context, action Action) (Step, error)
}

// session is the protocol state shared by the strategies: the form to
// submit next and the action kind it is waiting for
type session struct {
	fetcher  Fetcher
	cfg      Config
	logger   *slog.Logger
	form     *webclient.Form
	expected ActionKind
}

func (s *session) fetchLoginForm(ctx context.Context, payload url.Values) error {
	page, err := s.fetcher.PostForm(ctx, s.cfg.LoginURL, payload)
	if err != nil {
		return err
	}
	form := page.Form(formSelector)
	if form == nil {
		return errors.New("login page has no main form")
	}
	s.form = form
	return nil
}

// accept checks an incoming action against what the last step asked for
func (s *session) accept(action Action) error {
	if s.form == nil {
		return model.ErrNotStarted
	}
	if action.Kind() != s.expected {
		return fmt.Errorf("%w: got %s, waiting for %s", model.ErrUnsupportedAction, action.Kind(), s.expected)
	}
	return nil
}

func (s *session) submit(ctx context.Context, fields map[string]string) (*Response, error) {
	form := s.form.Clone()
	for k, v := range fields {
		form.Fields[k] = v
	}
	page, err := s.fetcher.Submit(ctx, form)
	if err != nil {
		return nil, err
	}
	return ParseResponse(page), nil
}

// outcome applies the response decision table. ask builds the prompt to
// retry with when the server sends a fresh form; done builds the completed
// step once a session id arrives.
func (s *session) outcome(resp *Response, ask func(form *webclient.Form) (Step, ActionKind), done func(resp *Response) Step) Step {
	retry := func(message string) Step {
		if resp.Form == nil {
			s.form = nil
			return DisplayError{Message: message, Continue: RestartStrategy{}}
		}
		s.form = resp.Form
		next, kind := ask(resp.Form)
		s.expected = kind
		return DisplayError{Message: message, Continue: next}
	}

	switch {
	case resp.ErrorMessage != "":
		return retry(resp.ErrorMessage)
	case resp.SessionID != "":
		s.form = nil
		return done(resp)
	case resp.Form != nil && resp.Form.Has(fieldOtp):
		// A second-factor form is a prompt, not a failure.
		s.form = resp.Form
		s.expected = ActionOtp
		return AskOtp{Username: resp.Form.Fields[fieldUsername]}
	default:
		return retry(msgLoginFailed)
	}
}

// askOtpOr returns AskOtp when form wants a one-time password and the
// strategy's own prompt otherwise
func askOtpOr(form *webclient.Form, username string, otp string, fallback func() (Step, ActionKind)) (Step, ActionKind) {
	if form.Has(fieldOtp) {
		return AskOtp{Username: username, Otp: otp}, ActionOtp
	}
	return fallback()
}

func loadFailed(logger *slog.Logger, err error) Step {
	logger.Warn("failed to load login form", slog.Any("error", err))
	return DisplayError{Message: msgLoadFailed, Continue: RestartStrategy{}}
}

func submitFailed(s *session, err error) Step {
	s.logger.Warn("failed to submit login form", slog.Any("error", err))
	s.form = nil
	return DisplayError{Message: msgLoginFailed, Continue: RestartStrategy{}}
}
