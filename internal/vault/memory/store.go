package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/galapa/internal/vault"
)

// Store is an in-memory credential vault
type Store struct {
	mu    sync.RWMutex
	creds map[string]vault.Credential
}

// New creates a new in-memory vault
func New() *Store {
	return &Store{creds: make(map[string]vault.Credential)}
}

// Ensure Store implements the interface
var _ vault.Store = (*Store)(nil)

func (s *Store) Load(ctx context.Context, token string) (*vault.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[token]
	if !ok {
		return vault.NewCredential(token), nil
	}
	return &cred, nil
}

func (s *Store) Tokens(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tokens := make([]string, 0, len(s.creds))
	for token := range s.creds {
		tokens = append(tokens, token)
	}
	slices.Sort(tokens)
	return tokens, nil
}

func (s *Store) New(token string) *vault.Credential {
	return vault.NewCredential(token)
}

func (s *Store) Save(ctx context.Context, cred *vault.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[cred.Token] = *cred
	return nil
}

func (s *Store) Remove(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, token)
	return nil
}
