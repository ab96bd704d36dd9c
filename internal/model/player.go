package model

// MaxPlayers is the number of saved players the official launcher supports
const MaxPlayers = 4

// SavedPlayer is a player registered with the game.
// Number is the 1-based slot shown by the official launcher; it is unrelated
// to the player's position in the roster.
type SavedPlayer struct {
	Number int
	Token  string // account token, stable and unique
	Name   string // account name (sqexid), empty until resolved

	// Secrets live in the credential vault, never in the roster files
	Password   string
	TOTPSecret string
}

// HasPassword reports whether a password is stored
func (p *SavedPlayer) HasPassword() bool {
	return p.Password != ""
}

// HasTOTP reports whether a TOTP secret is stored
func (p *SavedPlayer) HasTOTP() bool {
	return p.TOTPSecret != ""
}

// TrialPlayer is the single "easy play" trial account
type TrialPlayer struct {
	ID    string // device id
	Token string // device token
	Code  string // support code
}
