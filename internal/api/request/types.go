package request

import (
	"fmt"

	"github.com/mcoot/galapa/internal/login"
	"github.com/mcoot/galapa/internal/model"
)

// AddPlayerRequest is the request body for adding a player to the roster
type AddPlayerRequest struct {
	Token string `json:"token"`
}

// SecretsRequest is the request body for replacing a player's stored secrets
type SecretsRequest struct {
	Password   string `json:"password"`
	TOTPSecret string `json:"totp_secret"`
}

// StartLoginRequest is the request body for starting a login flow
type StartLoginRequest struct {
	Mode     string `json:"mode"`
	Token    string `json:"token,omitempty"`
	Remember bool   `json:"remember,omitempty"`
}

// StepRequest is the request body answering the current login prompt. Kind
// is one of the login action kinds; the other fields are read as the kind
// requires.
type StepRequest struct {
	Kind     string `json:"kind"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Otp      string `json:"otp,omitempty"`
}

// Action converts the request into a login action
func (r StepRequest) Action() (login.Action, error) {
	switch login.ActionKind(r.Kind) {
	case login.ActionUsernamePassword:
		return login.UsernamePasswordAction{Username: r.Username, Password: r.Password}, nil
	case login.ActionPassword:
		return login.PasswordAction{Password: r.Password}, nil
	case login.ActionOtp:
		return login.OtpAction{Otp: r.Otp}, nil
	case login.ActionEasyPlay:
		return login.EasyPlayAction{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown action kind %q", model.ErrInvalidArgument, r.Kind)
	}
}
