package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Argument errors
	ErrInvalidArgument = errors.New("invalid argument")

	// Config file errors
	ErrInvalidConfig = errors.New("invalid config")
	ErrCorruptCache  = errors.New("corrupt player cache")

	// Player list errors
	ErrPlayerLimitReached = errors.New("player limit reached")
	ErrPlayerExists       = errors.New("player already registered")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrNotLoaded          = errors.New("player list has not been loaded")

	// Login errors
	ErrUnsupportedAction = errors.New("action not supported by login strategy")
	ErrNotStarted        = errors.New("login strategy has not been started")
	ErrFlowNotFound      = errors.New("login flow not found")
)

// InvalidConfigError reports an on-disk document that could not be parsed.
// Contents holds the decoded file text so the caller can show what was read.
type InvalidConfigError struct {
	Path     string
	Contents string
	Err      error
}

func (e *InvalidConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid config %s", e.Path)
}

// Unwrap lets errors.Is match both ErrInvalidConfig and the parse error
func (e *InvalidConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidConfig}
	}
	return []error{ErrInvalidConfig, e.Err}
}
