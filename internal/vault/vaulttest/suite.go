// Package vaulttest holds the behaviour every vault.Store must share
package vaulttest

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/galapa/internal/vault"
)

// Suite runs against the store returned by Store, which implementation
// suites set in their SetupTest
type Suite struct {
	suite.Suite
	Store vault.Store
	Ctx   context.Context
}

func (s *Suite) TestLoadMissingIsEmpty() {
	cred, err := s.Store.Load(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.Equal("nobody", cred.Token)
	s.True(cred.Empty())
}

func (s *Suite) TestNewIsNotPersisted() {
	cred := s.Store.New("tok-1")
	s.Equal("tok-1", cred.Token)

	tokens, err := s.Store.Tokens(s.Ctx)
	s.Require().NoError(err)
	s.Empty(tokens)
}

func (s *Suite) TestSaveAndLoad() {
	cred := s.Store.New("tok-1")
	cred.Password = "hunter2"
	cred.TOTPSecret = "JBSWY3DPEHPK3PXP"
	s.Require().NoError(s.Store.Save(s.Ctx, cred))

	loaded, err := s.Store.Load(s.Ctx, "tok-1")
	s.Require().NoError(err)
	s.Equal(*cred, *loaded)
}

func (s *Suite) TestSaveEmptyCredentialIsListed() {
	s.Require().NoError(s.Store.Save(s.Ctx, s.Store.New("tok-1")))

	tokens, err := s.Store.Tokens(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]string{"tok-1"}, tokens)
}

func (s *Suite) TestSaveOverwrites() {
	cred := s.Store.New("tok-1")
	cred.Password = "old"
	s.Require().NoError(s.Store.Save(s.Ctx, cred))
	cred.Password = "new"
	s.Require().NoError(s.Store.Save(s.Ctx, cred))

	loaded, err := s.Store.Load(s.Ctx, "tok-1")
	s.Require().NoError(err)
	s.Equal("new", loaded.Password)
}

func (s *Suite) TestTokensSorted() {
	for _, token := range []string{"c", "a", "b"} {
		s.Require().NoError(s.Store.Save(s.Ctx, s.Store.New(token)))
	}

	tokens, err := s.Store.Tokens(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]string{"a", "b", "c"}, tokens)
}

func (s *Suite) TestRemove() {
	cred := s.Store.New("tok-1")
	cred.Password = "pw"
	s.Require().NoError(s.Store.Save(s.Ctx, cred))
	s.Require().NoError(s.Store.Save(s.Ctx, s.Store.New("tok-2")))

	s.Require().NoError(s.Store.Remove(s.Ctx, "tok-1"))

	tokens, err := s.Store.Tokens(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]string{"tok-2"}, tokens)

	loaded, err := s.Store.Load(s.Ctx, "tok-1")
	s.Require().NoError(err)
	s.True(loaded.Empty())
}

func (s *Suite) TestRemoveMissingIsNoop() {
	s.NoError(s.Store.Remove(s.Ctx, "nobody"))
}
