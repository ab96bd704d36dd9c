package response

import (
	"time"

	"github.com/mcoot/galapa/internal/game"
	"github.com/mcoot/galapa/internal/hiroba"
	"github.com/mcoot/galapa/internal/login"
	"github.com/mcoot/galapa/internal/model"
	"github.com/mcoot/galapa/internal/services/flows"
)

// Player represents a roster player in API responses. Secrets are reported
// as present or not, never returned.
type Player struct {
	Number      int    `json:"number"`
	Token       string `json:"token"`
	Name        string `json:"name,omitempty"`
	HasPassword bool   `json:"has_password"`
	HasTOTP     bool   `json:"has_totp"`
	Selected    bool   `json:"selected"`
}

// PlayerFromModel converts a model.SavedPlayer to a response Player
func PlayerFromModel(p model.SavedPlayer, selected int) Player {
	return Player{
		Number:      p.Number,
		Token:       p.Token,
		Name:        p.Name,
		HasPassword: p.HasPassword(),
		HasTOTP:     p.HasTOTP(),
		Selected:    p.Number == selected,
	}
}

// Trial represents the trial account
type Trial struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Code  string `json:"code"`
}

// PlayerList is the response for listing the roster
type PlayerList struct {
	Players []Player `json:"players"`
	Trial   *Trial   `json:"trial,omitempty"`
}

// Step represents a login step. Password prefills are not echoed back.
type Step struct {
	Kind      string `json:"kind"`
	Username  string `json:"username,omitempty"`
	Otp       string `json:"otp,omitempty"`
	Message   string `json:"message,omitempty"`
	Continue  *Step  `json:"continue,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Token     string `json:"token,omitempty"`
}

// StepFromLogin converts a login.Step
func StepFromLogin(step login.Step) Step {
	out := Step{Kind: string(step.Kind())}
	switch s := step.(type) {
	case login.AskUsernamePassword:
		out.Username = s.Username
	case login.AskPassword:
		out.Username = s.Username
	case login.AskOtp:
		out.Username = s.Username
		out.Otp = s.Otp
	case login.DisplayError:
		out.Message = s.Message
		if s.Continue != nil {
			next := StepFromLogin(s.Continue)
			out.Continue = &next
		}
	case login.LoginCompleted:
		out.SessionID = s.SessionID
		out.Token = s.Token
		out.Username = s.Username
	}
	return out
}

// Flow represents a login flow
type Flow struct {
	ID           string    `json:"id"`
	Mode         string    `json:"mode"`
	Step         Step      `json:"step"`
	PlayerNumber int       `json:"player_number,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// FlowFromState converts a flows.State
func FlowFromState(s flows.State) Flow {
	return Flow{
		ID:           s.ID,
		Mode:         string(s.Mode),
		Step:         StepFromLogin(s.Step),
		PlayerNumber: s.PlayerNumber,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Launch is the response after starting the game
type Launch struct {
	Pid int `json:"pid"`
}

// Maintenance represents the server availability
type Maintenance struct {
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
}

// MaintenanceFromGame converts a game.MaintenanceStatus
func MaintenanceFromGame(m game.MaintenanceStatus) Maintenance {
	return Maintenance{State: m.State.String(), Message: m.Message}
}

// Banners is the response for the news banners
type Banners struct {
	Banners []hiroba.Banner `json:"banners"`
}

// Health is the response for the health check
type Health struct {
	Status string `json:"status"`
}
