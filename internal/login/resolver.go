package login

import (
	"context"
	"fmt"
	"log/slog"
)

// NameResolver looks up the username of a saved account by loading its
// login form, which needs no password
type NameResolver struct {
	fetcher Fetcher
	cfg     Config
	logger  *slog.Logger
}

// NewNameResolver creates a resolver using fetcher
func NewNameResolver(fetcher Fetcher, cfg Config, logger *slog.Logger) *NameResolver {
	return &NameResolver{fetcher: fetcher, cfg: cfg, logger: logger}
}

// ResolveName returns the username for token
func (r *NameResolver) ResolveName(ctx context.Context, token string) (string, error) {
	strategy := NewSavedPlayerStrategy(r.fetcher, token, r.cfg, r.logger)
	step, err := strategy.Start(ctx)
	if err != nil {
		return "", err
	}
	ask, ok := step.(AskPassword)
	if !ok || ask.Username == "" {
		return "", fmt.Errorf("resolve name: login form returned %s", step.Kind())
	}
	return ask.Username, nil
}
