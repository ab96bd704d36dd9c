package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/mcoot/galapa/internal/vault"
)

// FileName is the vault file inside the app data directory
const FileName = "credentials.json"

// Store keeps sealed credentials in a single JSON file mapping token to blob
type Store struct {
	mu     sync.Mutex
	path   string
	sealer *vault.Sealer
}

// New creates a file vault in dir
func New(dir string, sealer *vault.Sealer) *Store {
	return &Store{path: filepath.Join(dir, FileName), sealer: sealer}
}

// Ensure Store implements the interface
var _ vault.Store = (*Store)(nil)

// Path returns the vault file location
func (s *Store) Path() string {
	return s.path
}

func (s *Store) read() (map[string][]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string][]byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read vault: %w", err)
	}
	blobs := map[string][]byte{}
	if err := json.Unmarshal(data, &blobs); err != nil {
		return nil, fmt.Errorf("decode vault: %w", err)
	}
	return blobs, nil
}

func (s *Store) write(blobs map[string][]byte) error {
	data, err := json.MarshalIndent(blobs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create vault directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write vault: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) Load(ctx context.Context, token string) (*vault.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blobs, err := s.read()
	if err != nil {
		return nil, err
	}
	blob, ok := blobs[token]
	if !ok {
		return vault.NewCredential(token), nil
	}
	return s.sealer.Open(token, blob)
}

func (s *Store) Tokens(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blobs, err := s.read()
	if err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(blobs))
	for token := range blobs {
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

	blobs, err := s.read()
	if err != nil {
		return err
	}
	blob, err := s.sealer.Seal(cred)
	if err != nil {
		return err
	}
	blobs[cred.Token] = blob
	return s.write(blobs)
}

func (s *Store) Remove(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blobs, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := blobs[token]; !ok {
		return nil
	}
	delete(blobs, token)
	return s.write(blobs)
}
