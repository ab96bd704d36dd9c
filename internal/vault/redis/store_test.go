package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/galapa/internal/dependencies/mocks"
	"github.com/mcoot/galapa/internal/vault"
	"github.com/mcoot/galapa/internal/vault/vaulttest"
)

type StoreSuite struct {
	vaulttest.Suite
	mini  *miniredis.Miniredis
	redis *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	sealer, err := vault.NewSealer("passphrase", vault.SealerConfig{ScryptN: 1 << 10, ScryptR: 8, ScryptP: 1}, mocks.NewMockRandom())
	s.Require().NoError(err)

	s.redis = NewWithClient(client, sealer)
	s.Store = s.redis
	s.Ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StoreSuite) TestKeysAndIndex() {
	cred := s.Store.New("tok-1")
	cred.Password = "hunter2"
	s.Require().NoError(s.Store.Save(s.Ctx, cred))

	s.True(s.mini.Exists("galapa:credential:tok-1"))
	members, err := s.mini.Members("galapa:idx:tokens")
	s.Require().NoError(err)
	s.Equal([]string{"tok-1"}, members)

	raw, err := s.mini.Get("galapa:credential:tok-1")
	s.Require().NoError(err)
	s.NotContains(raw, "hunter2")
}

func (s *StoreSuite) TestRemoveClearsIndex() {
	s.Require().NoError(s.Store.Save(s.Ctx, s.Store.New("tok-1")))
	s.Require().NoError(s.Store.Remove(s.Ctx, "tok-1"))

	s.False(s.mini.Exists("galapa:credential:tok-1"))
	members, _ := s.mini.Members("galapa:idx:tokens")
	s.Empty(members)
}

func (s *StoreSuite) TestNewRejectsBadURL() {
	_, err := New(Config{URL: "not a url"}, nil)
	s.Error(err)
}

func (s *StoreSuite) TestNewConnects() {
	cfg := DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr()
	store, err := New(cfg, nil)
	s.Require().NoError(err)
	s.NoError(store.Close())
}
