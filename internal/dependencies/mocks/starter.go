package mocks

import (
	"os/exec"
	"sync"
)

// MockStarter records game commands instead of running them
type MockStarter struct {
	mu   sync.Mutex
	cmds []*exec.Cmd
	// Err, if set, is returned by Start
	Err error
}

// NewMockStarter creates a new MockStarter
func NewMockStarter() *MockStarter {
	return &MockStarter{}
}

// Start records cmd
func (s *MockStarter) Start(cmd *exec.Cmd) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = append(s.cmds, cmd)
	return s.Err
}

// Commands returns the commands started so far
func (s *MockStarter) Commands() []*exec.Cmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*exec.Cmd(nil), s.cmds...)
}
