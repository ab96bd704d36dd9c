package cookiejar

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/mcoot/galapa/internal/dependencies/clock"
)

// Registry hands out one jar per name, all stored in the same directory
type Registry struct {
	dir    string
	next   http.RoundTripper
	clock  clock.Clock
	logger *slog.Logger

	mu   sync.Mutex
	jars map[string]*Jar
}

// NewRegistry creates a registry persisting jars under dir
func NewRegistry(dir string, next http.RoundTripper, clk clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		dir:    dir,
		next:   next,
		clock:  clk,
		logger: logger,
		jars:   make(map[string]*Jar),
	}
}

// Jar returns the jar for name, opening it on first use
func (r *Registry) Jar(name string) (*Jar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if j, ok := r.jars[name]; ok {
		return j, nil
	}
	j, err := Open(r.dir, name, r.next, r.clock, r.logger)
	if err != nil {
		return nil, err
	}
	r.jars[name] = j
	return j, nil
}
