package vault

import (
	"context"
)

// Credential holds the stored secrets of one player. Empty strings mean the
// secret is not stored.
type Credential struct {
	Token      string `json:"token"`
	Password   string `json:"password,omitempty"`
	TOTPSecret string `json:"totp_secret,omitempty"`
}

// Empty reports whether no secret is stored
func (c *Credential) Empty() bool {
	return c.Password == "" && c.TOTPSecret == ""
}

// Store defines the interface for credential persistence
type Store interface {
	// Load returns the credential for token. A token with nothing stored
	// gives an empty credential, not an error.
	Load(ctx context.Context, token string) (*Credential, error)

	// Tokens lists every token that has a stored credential
	Tokens(ctx context.Context) ([]string, error)

	// New creates an empty credential for token without storing it
	New(token string) *Credential

	Save(ctx context.Context, cred *Credential) error
	Remove(ctx context.Context, token string) error
}

// NewCredential is the shared implementation of Store.New
func NewCredential(token string) *Credential {
	return &Credential{Token: token}
}
