package configfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mcoot/galapa/internal/codec"
	"github.com/mcoot/galapa/internal/model"
)

// Store is a single config file whose name and contents are both obfuscated
// on disk
type Store struct {
	root     string
	name     string
	seed     int
	codec    codec.Factory
	defaults string
}

// New creates a store for the logical file name under root. defaults is
// written, encoded, the first time the file is needed and is missing.
func New(root, name string, seed int, factory codec.Factory, defaults string) *Store {
	return &Store{
		root:     root,
		name:     name,
		seed:     seed,
		codec:    factory,
		defaults: defaults,
	}
}

// Name returns the plain logical file name
func (s *Store) Name() string {
	return s.name
}

// Path returns the obfuscated location of the file on disk
func (s *Store) Path() string {
	return filepath.Join(s.root, codec.ObfuscateName(s.name, s.seed))
}

// EnsureCreated writes the default contents if the file does not exist yet
func (s *Store) EnsureCreated() error {
	_, err := os.Stat(s.Path())
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", s.name, err)
	}
	return s.WriteRaw([]byte(s.defaults))
}

// ReadRaw returns the decoded contents of the file, creating it first if needed
func (s *Store) ReadRaw() ([]byte, error) {
	if err := s.EnsureCreated(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.name, err)
	}
	stream, err := s.codec(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.name, err)
	}
	return data, nil
}

// WriteRaw replaces the file with the encoded form of data
func (s *Store) WriteRaw(data []byte) error {
	path := s.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", s.name, err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.name, err)
	}
	stream, err := s.codec(f)
	if err != nil {
		_ = f.Close()
		return err
	}

	if _, err := stream.Write(data); err != nil {
		_ = stream.Close()
		return fmt.Errorf("write %s: %w", s.name, err)
	}
	return stream.Close()
}

// Load parses the file into a node tree. A document that cannot be parsed
// fails with an *model.InvalidConfigError carrying the decoded text.
func (s *Store) Load() (*Node, error) {
	data, err := s.ReadRaw()
	if err != nil {
		return nil, err
	}

	root, err := ParseDocument(data)
	if err != nil {
		return nil, s.invalid(data, err)
	}
	return root, nil
}

// Save serializes the node tree and writes it
func (s *Store) Save(root *Node) error {
	return s.WriteRaw(MarshalDocument(root))
}

func (s *Store) invalid(data []byte, err error) error {
	return &model.InvalidConfigError{Path: s.Path(), Contents: string(data), Err: err}
}
