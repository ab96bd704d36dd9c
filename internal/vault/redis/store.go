package redis

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/galapa/internal/vault"
)

// Store is a Redis-backed credential vault. Secrets are sealed before they
// leave the process.
type Store struct {
	client *redis.Client
	sealer *vault.Sealer
}

// New connects to Redis and verifies the connection
func New(cfg Config, sealer *vault.Sealer) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Store{client: client, sealer: sealer}, nil
}

// NewWithClient creates a vault on an existing client (for testing)
func NewWithClient(client *redis.Client, sealer *vault.Sealer) *Store {
	return &Store{client: client, sealer: sealer}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ensure Store implements the interface
var _ vault.Store = (*Store)(nil)

func (s *Store) Load(ctx context.Context, token string) (*vault.Credential, error) {
	blob, err := s.client.Get(ctx, credentialKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return vault.NewCredential(token), nil
		}
		return nil, err
	}
	return s.sealer.Open(token, blob)
}

func (s *Store) Tokens(ctx context.Context) ([]string, error) {
	tokens, err := s.client.SMembers(ctx, tokenIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(tokens)
	return tokens, nil
}

func (s *Store) New(token string) *vault.Credential {
	return vault.NewCredential(token)
}

func (s *Store) Save(ctx context.Context, cred *vault.Credential) error {
	blob, err := s.sealer.Seal(cred)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, credentialKey(cred.Token), blob, 0)
	pipe.SAdd(ctx, tokenIndexKey(), cred.Token)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) Remove(ctx context.Context, token string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, credentialKey(token))
	pipe.SRem(ctx, tokenIndexKey(), token)
	_, err := pipe.Exec(ctx)
	return err
}
