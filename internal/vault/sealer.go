package vault

import (
	"bytes"
	"crypto/cipher"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/mcoot/galapa/internal/dependencies/random"
)

const (
	saltSize = 16
	// maxKeys bounds the derived key cache
	maxKeys = 4
)

var ErrSealed = errors.New("vault: cannot open sealed credential")

// SealerConfig holds key derivation cost settings
type SealerConfig struct {
	// ScryptN is the scrypt CPU/memory cost; must be a power of two
	ScryptN int
	ScryptR int
	ScryptP int
}

// DefaultSealerConfig returns the interactive scrypt parameters
func DefaultSealerConfig() SealerConfig {
	return SealerConfig{ScryptN: 1 << 15, ScryptR: 8, ScryptP: 1}
}

// Sealer encrypts credential secrets with a key derived from a passphrase.
// A sealed blob is salt || nonce || ciphertext. All blobs sealed by one
// Sealer share a salt, drawn on first use or taken from the first blob
// opened, so the key is derived once per process.
type Sealer struct {
	passphrase []byte
	cfg        SealerConfig
	random     random.Random

	mu          sync.Mutex
	salt        []byte
	keys        map[string]cipher.AEAD
	order       []string
	derivations int
}

// NewSealer creates a sealer for passphrase
func NewSealer(passphrase string, cfg SealerConfig, rnd random.Random) (*Sealer, error) {
	if passphrase == "" {
		return nil, errors.New("vault: passphrase is required")
	}
	return &Sealer{
		passphrase: []byte(passphrase),
		cfg:        cfg,
		random:     rnd,
		keys:       make(map[string]cipher.AEAD),
	}, nil
}

// sealingSalt returns the shared salt, drawing one if none is known yet
func (s *Sealer) sealingSalt() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.salt == nil {
		salt, err := s.random.Bytes(saltSize)
		if err != nil {
			return nil, err
		}
		s.salt = salt
	}
	return s.salt, nil
}

func (s *Sealer) aead(salt []byte) (cipher.AEAD, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.keys[string(salt)]; ok {
		return a, nil
	}
	key, err := scrypt.Key(s.passphrase, salt, s.cfg.ScryptN, s.cfg.ScryptR, s.cfg.ScryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	s.derivations++
	a, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	if len(s.order) >= maxKeys {
		evict := s.order[0]
		s.order = s.order[1:]
		if evict == string(s.salt) {
			// the sealing salt stays cached
			s.order = append(s.order, evict)
			evict = s.order[0]
			s.order = s.order[1:]
		}
		delete(s.keys, evict)
	}
	s.keys[string(salt)] = a
	s.order = append(s.order, string(salt))
	if s.salt == nil {
		s.salt = bytes.Clone(salt)
	}
	return a, nil
}

// Seal encrypts a credential. The token is bound as associated data so a
// blob cannot be moved to another player.
func (s *Sealer) Seal(cred *Credential) ([]byte, error) {
	plain, err := json.Marshal(cred)
	if err != nil {
		return nil, err
	}

	salt, err := s.sealingSalt()
	if err != nil {
		return nil, err
	}
	a, err := s.aead(salt)
	if err != nil {
		return nil, err
	}
	nonce, err := s.random.Bytes(a.NonceSize())
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(salt)+len(nonce)+len(plain)+a.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return a.Seal(out, nonce, plain, []byte(cred.Token)), nil
}

// Open decrypts a blob sealed for token
func (s *Sealer) Open(token string, blob []byte) (*Credential, error) {
	if len(blob) < saltSize+chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("%w: blob too short", ErrSealed)
	}
	salt := blob[:saltSize]
	a, err := s.aead(salt)
	if err != nil {
		return nil, err
	}
	nonce := blob[saltSize : saltSize+a.NonceSize()]
	plain, err := a.Open(nil, nonce, blob[saltSize+a.NonceSize():], []byte(token))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealed, err)
	}

	var cred Credential
	dec := json.NewDecoder(bytes.NewReader(plain))
	if err := dec.Decode(&cred); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealed, err)
	}
	cred.Token = token
	return &cred, nil
}
