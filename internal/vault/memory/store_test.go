package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/galapa/internal/vault/vaulttest"
)

type StoreSuite struct {
	vaulttest.Suite
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.Store = New()
	s.Ctx = context.Background()
}

func (s *StoreSuite) TestLoadReturnsCopy() {
	cred := s.Store.New("tok-1")
	cred.Password = "pw"
	s.Require().NoError(s.Store.Save(s.Ctx, cred))

	loaded, err := s.Store.Load(s.Ctx, "tok-1")
	s.Require().NoError(err)
	loaded.Password = "changed"

	again, err := s.Store.Load(s.Ctx, "tok-1")
	s.Require().NoError(err)
	s.Equal("pw", again.Password)
}
