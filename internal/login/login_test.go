package login

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/galapa/internal/dependencies/mocks"
	"github.com/mcoot/galapa/internal/model"
	"github.com/mcoot/galapa/internal/testutil"
	"github.com/mcoot/galapa/internal/webclient"
)

const (
	testSessionID = "0123456789abcdef0123456789abcdef0123456789abcdef01234567"
	testSecret    = "JBSWY3DPEHPK3PXP"
)

// fakeFetcher replays queued pages and records what was sent
type fakeFetcher struct {
	t         *testing.T
	start     string
	startErr  error
	pages     []string
	submitErr error

	posted    []url.Values
	submitted []*webclient.Form
}

func (f *fakeFetcher) page(body string) *webclient.Page {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		f.t.Fatalf("parse page: %v", err)
	}
	u, _ := url.Parse("https://login.example/oauth/login")
	return &webclient.Page{URL: u, StatusCode: 200, Doc: doc}
}

func (f *fakeFetcher) PostForm(_ context.Context, _ string, values url.Values) (*webclient.Page, error) {
	f.posted = append(f.posted, values)
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.page(f.start), nil
}

func (f *fakeFetcher) Submit(_ context.Context, form *webclient.Form) (*webclient.Page, error) {
	f.submitted = append(f.submitted, form)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	if len(f.pages) == 0 {
		f.t.Fatalf("unexpected submit")
	}
	body := f.pages[0]
	f.pages = f.pages[1:]
	return f.page(body), nil
}

func (f *fakeFetcher) last() *webclient.Form {
	return f.submitted[len(f.submitted)-1]
}

func loginForm(username string) string {
	return `<form name="mainForm" method="post" action="/oauth/submit">` +
		`<input type="hidden" name="sqexid" value="` + username + `">` +
		`<input type="password" name="password" value="">` +
		`</form>`
}

func otpForm(username string) string {
	return `<form name="mainForm" method="post" action="/oauth/otp">` +
		`<input type="hidden" name="sqexid" value="` + username + `">` +
		`<input name="otppw" value="">` +
		`</form>`
}

func authError(message string) string {
	return `<x-sqexauth message="` + message + `"></x-sqexauth>`
}

func authSuccess(token string) string {
	return `<x-sqexauth sid="` + testSessionID + `" id="` + token + `" lang="ja" region="jp" mode="1"></x-sqexauth>`
}

type LoginSuite struct {
	suite.Suite
	fetcher *fakeFetcher
	clock   *mocks.MockClock
	ctx     context.Context
}

func TestLoginSuite(t *testing.T) {
	suite.Run(t, new(LoginSuite))
}

func (s *LoginSuite) SetupTest() {
	s.fetcher = &fakeFetcher{t: s.T(), start: loginForm("emma")}
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	s.ctx = context.Background()
}

func (s *LoginSuite) saved() *SavedPlayerStrategy {
	return NewSavedPlayerStrategy(s.fetcher, "tok-1", DefaultConfig(), testutil.NopLogger())
}

func (s *LoginSuite) newPlayer() *NewPlayerStrategy {
	return NewNewPlayerStrategy(s.fetcher, DefaultConfig(), testutil.NopLogger())
}

func (s *LoginSuite) auto(secrets Secrets) *AutoLoginStrategy {
	return NewAutoLoginStrategy(s.saved(), secrets, s.clock, testutil.NopLogger())
}

// Start

func (s *LoginSuite) TestStartFailureRestarts() {
	s.fetcher.startErr = errors.New("connection refused")

	for _, strategy := range []Strategy{s.saved(), s.newPlayer(), s.auto(Secrets{Password: "pw"})} {
		step, err := strategy.Start(s.ctx)
		s.Require().NoError(err)
		s.Equal(DisplayError{Message: "Failed to load login form", Continue: RestartStrategy{}}, step)
	}
}

func (s *LoginSuite) TestStartWithoutFormRestarts() {
	s.fetcher.start = `<p>maintenance</p>`

	step, err := s.saved().Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(DisplayError{Message: "Failed to load login form", Continue: RestartStrategy{}}, step)
}

func (s *LoginSuite) TestSavedStartAsksPassword() {
	strategy := s.saved()
	step, err := strategy.Start(s.ctx)
	s.Require().NoError(err)

	s.Equal(AskPassword{Username: "emma"}, step)
	s.Equal("emma", strategy.Username())
	s.Equal(url.Values{"dqxmode": {"2"}, "id": {"tok-1"}}, s.fetcher.posted[0])
}

func (s *LoginSuite) TestNewPlayerStartAsksCredentials() {
	step, err := s.newPlayer().Start(s.ctx)
	s.Require().NoError(err)

	s.Equal(AskUsernamePassword{}, step)
	s.Equal(url.Values{"dqxmode": {"1"}}, s.fetcher.posted[0])
}

// Step decision table

func (s *LoginSuite) TestErrorWithFormRetriesWithPrefill() {
	s.fetcher.pages = []string{authError("Wrong password") + loginForm("emma2")}
	strategy := s.saved()
	_, err := strategy.Start(s.ctx)
	s.Require().NoError(err)

	step, err := strategy.Step(s.ctx, PasswordAction{Password: "bad"})
	s.Require().NoError(err)
	s.Equal(DisplayError{Message: "Wrong password", Continue: AskPassword{Username: "emma2", Password: "bad"}}, step)
	s.Equal("bad", s.fetcher.last().Fields["password"])
	s.Equal("https://login.example/oauth/submit", s.fetcher.last().Action)
}

func (s *LoginSuite) TestErrorWithoutFormRestarts() {
	s.fetcher.pages = []string{authError("Account locked")}
	strategy := s.saved()
	_, _ = strategy.Start(s.ctx)

	step, err := strategy.Step(s.ctx, PasswordAction{Password: "pw"})
	s.Require().NoError(err)
	s.Equal(DisplayError{Message: "Account locked", Continue: RestartStrategy{}}, step)
}

func (s *LoginSuite) TestNoSessionWithFormRetries() {
	s.fetcher.pages = []string{loginForm("emma")}
	strategy := s.saved()
	_, _ = strategy.Start(s.ctx)

	step, err := strategy.Step(s.ctx, PasswordAction{Password: "pw"})
	s.Require().NoError(err)
	s.Equal(DisplayError{Message: "Login failed", Continue: AskPassword{Username: "emma", Password: "pw"}}, step)

	// The fresh form is used for the retry.
	s.fetcher.pages = []string{authSuccess("ignored")}
	step, err = strategy.Step(s.ctx, PasswordAction{Password: "pw2"})
	s.Require().NoError(err)
	s.Equal(KindLoginCompleted, step.Kind())
}

func (s *LoginSuite) TestNoSessionNoFormRestarts() {
	s.fetcher.pages = []string{`<p>oops</p>`}
	strategy := s.saved()
	_, _ = strategy.Start(s.ctx)

	step, err := strategy.Step(s.ctx, PasswordAction{Password: "pw"})
	s.Require().NoError(err)
	s.Equal(DisplayError{Message: "Login failed", Continue: RestartStrategy{}}, step)

	_, err = strategy.Step(s.ctx, PasswordAction{Password: "pw"})
	s.ErrorIs(err, model.ErrNotStarted)
}

func (s *LoginSuite) TestSubmitFailureRestarts() {
	strategy := s.saved()
	_, _ = strategy.Start(s.ctx)
	s.fetcher.submitErr = errors.New("timeout")

	step, err := strategy.Step(s.ctx, PasswordAction{Password: "pw"})
	s.Require().NoError(err)
	s.Equal(DisplayError{Message: "Login failed", Continue: RestartStrategy{}}, step)
}

func (s *LoginSuite) TestSavedCompletes() {
	s.fetcher.pages = []string{authSuccess("server-token")}
	strategy := s.saved()
	_, _ = strategy.Start(s.ctx)

	step, err := strategy.Step(s.ctx, PasswordAction{Password: "pw"})
	s.Require().NoError(err)
	s.Equal(LoginCompleted{SessionID: testSessionID, Token: "tok-1", Username: "emma", Password: "pw"}, step)
}

func (s *LoginSuite) TestNewPlayerCompletesWithServerToken() {
	s.fetcher.start = loginForm("")
	s.fetcher.pages = []string{authSuccess("new-token")}
	strategy := s.newPlayer()
	_, _ = strategy.Start(s.ctx)

	step, err := strategy.Step(s.ctx, UsernamePasswordAction{Username: "slime", Password: "pw"})
	s.Require().NoError(err)
	s.Equal(LoginCompleted{SessionID: testSessionID, Token: "new-token", Username: "slime", Password: "pw"}, step)
	s.Equal("slime", s.fetcher.last().Fields["sqexid"])
	s.Equal("pw", s.fetcher.last().Fields["password"])
}

func (s *LoginSuite) TestNewPlayerErrorPrefills() {
	s.fetcher.pages = []string{authError("Invalid ID") + loginForm("")}
	strategy := s.newPlayer()
	_, _ = strategy.Start(s.ctx)

	step, err := strategy.Step(s.ctx, UsernamePasswordAction{Username: "slime", Password: "pw"})
	s.Require().NoError(err)
	s.Equal(DisplayError{Message: "Invalid ID", Continue: AskUsernamePassword{Username: "slime", Password: "pw"}}, step)
}

// One-time passwords

func (s *LoginSuite) TestOtpFormAsksOtp() {
	s.fetcher.pages = []string{otpForm("emma"), authSuccess("x")}
	strategy := s.saved()
	_, _ = strategy.Start(s.ctx)

	step, err := strategy.Step(s.ctx, PasswordAction{Password: "pw"})
	s.Require().NoError(err)
	s.Equal(AskOtp{Username: "emma"}, step)

	_, err = strategy.Step(s.ctx, PasswordAction{Password: "pw"})
	s.ErrorIs(err, model.ErrUnsupportedAction)

	step, err = strategy.Step(s.ctx, OtpAction{Otp: "123456"})
	s.Require().NoError(err)
	s.Equal(LoginCompleted{SessionID: testSessionID, Token: "tok-1", Username: "emma", Password: "pw"}, step)
	s.Equal("123456", s.fetcher.last().Fields["otppw"])
	s.Equal("https://login.example/oauth/otp", s.fetcher.last().Action)
}

func (s *LoginSuite) TestWrongOtpAsksAgain() {
	s.fetcher.pages = []string{otpForm("emma"), authError("Wrong one-time password") + otpForm("emma")}
	strategy := s.saved()
	_, _ = strategy.Start(s.ctx)
	_, _ = strategy.Step(s.ctx, PasswordAction{Password: "pw"})

	step, err := strategy.Step(s.ctx, OtpAction{Otp: "000000"})
	s.Require().NoError(err)
	s.Equal(DisplayError{Message: "Wrong one-time password", Continue: AskOtp{Username: "emma"}}, step)
}

// Misuse

func (s *LoginSuite) TestStepBeforeStart() {
	_, err := s.saved().Step(s.ctx, PasswordAction{Password: "pw"})
	s.ErrorIs(err, model.ErrNotStarted)

	_, err = s.newPlayer().Step(s.ctx, UsernamePasswordAction{})
	s.ErrorIs(err, model.ErrNotStarted)
}

func (s *LoginSuite) TestUnsupportedAction() {
	strategy := s.saved()
	_, _ = strategy.Start(s.ctx)

	_, err := strategy.Step(s.ctx, UsernamePasswordAction{Username: "a", Password: "b"})
	s.ErrorIs(err, model.ErrUnsupportedAction)
	_, err = strategy.Step(s.ctx, EasyPlayAction{})
	s.ErrorIs(err, model.ErrUnsupportedAction)

	player := s.newPlayer()
	_, _ = player.Start(s.ctx)
	_, err = player.Step(s.ctx, PasswordAction{Password: "b"})
	s.ErrorIs(err, model.ErrUnsupportedAction)
}

// Auto-login

func (s *LoginSuite) TestAutoLoginStopsAtOtpWithoutSecret() {
	s.fetcher.pages = []string{otpForm("emma")}

	step, err := s.auto(Secrets{Password: "pw"}).Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(AskOtp{Username: "emma"}, step)
	s.Len(s.fetcher.submitted, 1)
}

func (s *LoginSuite) TestAutoLoginAnswersOtpFromSecret() {
	s.fetcher.pages = []string{otpForm("emma"), authSuccess("x")}

	step, err := s.auto(Secrets{Password: "pw", TOTPSecret: testSecret}).Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(KindLoginCompleted, step.Kind())

	expected, err := totp.GenerateCode(testSecret, s.clock.Now())
	s.Require().NoError(err)
	s.Equal(expected, s.fetcher.last().Fields["otppw"])
}

func (s *LoginSuite) TestAutoLoginWithoutPasswordAsks() {
	step, err := s.auto(Secrets{}).Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(AskPassword{Username: "emma"}, step)
	s.Empty(s.fetcher.submitted)
}

func (s *LoginSuite) TestAutoLoginStopsOnRejectedPassword() {
	s.fetcher.pages = []string{authError("Wrong password") + loginForm("emma")}

	step, err := s.auto(Secrets{Password: "stale"}).Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(DisplayError{Message: "Wrong password", Continue: AskPassword{Username: "emma", Password: "stale"}}, step)
}

func (s *LoginSuite) TestAutoLoginContinuesAfterManualPassword() {
	s.fetcher.pages = []string{otpForm("emma"), authSuccess("x")}
	strategy := s.auto(Secrets{TOTPSecret: testSecret})

	step, err := strategy.Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(AskPassword{Username: "emma"}, step)

	step, err = strategy.Step(s.ctx, PasswordAction{Password: "typed"})
	s.Require().NoError(err)
	s.Equal(LoginCompleted{SessionID: testSessionID, Token: "tok-1", Username: "emma", Password: "typed"}, step)
}

func (s *LoginSuite) TestAutoLoginBadSecretStops() {
	s.fetcher.pages = []string{otpForm("emma")}

	step, err := s.auto(Secrets{Password: "pw", TOTPSecret: "not base32 !"}).Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(AskOtp{Username: "emma"}, step)
}

// Name resolution

func (s *LoginSuite) TestResolveName() {
	name, err := NewNameResolver(s.fetcher, DefaultConfig(), testutil.NopLogger()).ResolveName(s.ctx, "tok-9")
	s.Require().NoError(err)
	s.Equal("emma", name)
	s.Equal("tok-9", s.fetcher.posted[0].Get("id"))
}

func (s *LoginSuite) TestResolveNameFailure() {
	s.fetcher.startErr = errors.New("offline")
	_, err := NewNameResolver(s.fetcher, DefaultConfig(), testutil.NopLogger()).ResolveName(s.ctx, "tok-9")
	s.Error(err)
}

func (s *LoginSuite) TestParseResponse() {
	resp := ParseResponse(s.fetcher.page(authSuccess("tok") + loginForm("emma")))
	s.Equal(testSessionID, resp.SessionID)
	s.Equal("tok", resp.Token)
	s.Equal("ja", resp.Lang)
	s.Equal("jp", resp.Region)
	s.Equal("1", resp.Mode)
	s.Empty(resp.ErrorMessage)
	s.Require().NotNil(resp.Form)
	s.Equal("emma", resp.Form.Fields["sqexid"])
}
