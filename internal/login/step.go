package login

// StepKind names a Step variant
type StepKind string

const (
	KindRestart             StepKind = "restart"
	KindAskUsernamePassword StepKind = "ask_username_password"
	KindAskPassword         StepKind = "ask_password"
	KindAskOtp              StepKind = "ask_otp"
	KindAskEasyPlay         StepKind = "ask_easy_play"
	KindDisplayError        StepKind = "display_error"
	KindLoginCompleted      StepKind = "login_completed"
)

// Step is what the server wants next. The set of variants is closed.
type Step interface {
	Kind() StepKind
	isStep()
}

// RestartStrategy means the flow cannot continue and must be started again
type RestartStrategy struct{}

// AskUsernamePassword asks for a full set of credentials. The fields are
// prefill values from a previous attempt.
type AskUsernamePassword struct {
	Username string
	Password string
}

// AskPassword asks for the password of a known account
type AskPassword struct {
	Username string
	Password string
}

// AskOtp asks for a one-time password
type AskOtp struct {
	Username string
	Otp      string
}

// AskEasyPlay asks to continue with the trial account
type AskEasyPlay struct{}

// DisplayError shows Message and then moves on to Continue
type DisplayError struct {
	Message  string
	Continue Step
}

// LoginCompleted carries the session id handed to the game
type LoginCompleted struct {
	SessionID string
	Token     string
	Username  string
	Password  string
}

func (RestartStrategy) Kind() StepKind     { return KindRestart }
func (AskUsernamePassword) Kind() StepKind { return KindAskUsernamePassword }
func (AskPassword) Kind() StepKind         { return KindAskPassword }
func (AskOtp) Kind() StepKind              { return KindAskOtp }
func (AskEasyPlay) Kind() StepKind         { return KindAskEasyPlay }
func (DisplayError) Kind() StepKind        { return KindDisplayError }
func (LoginCompleted) Kind() StepKind      { return KindLoginCompleted }

func (RestartStrategy) isStep()     {}
func (AskUsernamePassword) isStep() {}
func (AskPassword) isStep()         {}
func (AskOtp) isStep()              {}
func (AskEasyPlay) isStep()         {}
func (DisplayError) isStep()        {}
func (LoginCompleted) isStep()      {}

// ActionKind names an Action variant
type ActionKind string

const (
	ActionUsernamePassword ActionKind = "username_password"
	ActionPassword         ActionKind = "password"
	ActionOtp              ActionKind = "otp"
	ActionEasyPlay         ActionKind = "easy_play"
)

// Action is the user's answer to a Step
type Action interface {
	Kind() ActionKind
	isAction()
}

type UsernamePasswordAction struct {
	Username string
	Password string
}

type PasswordAction struct {
	Password string
}

type OtpAction struct {
	Otp string
}

type EasyPlayAction struct{}

func (UsernamePasswordAction) Kind() ActionKind { return ActionUsernamePassword }
func (PasswordAction) Kind() ActionKind         { return ActionPassword }
func (OtpAction) Kind() ActionKind              { return ActionOtp }
func (EasyPlayAction) Kind() ActionKind         { return ActionEasyPlay }

func (UsernamePasswordAction) isAction() {}
func (PasswordAction) isAction()         {}
func (OtpAction) isAction()              {}
func (EasyPlayAction) isAction()         {}
