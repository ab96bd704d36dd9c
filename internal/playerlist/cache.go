package playerlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/mcoot/galapa/internal/model"
)

// CacheFileName is the launcher's own roster cache in the app data directory
const CacheFileName = "PlayerList.json"

// CachedPlayer is a roster entry in PlayerList.json
type CachedPlayer struct {
	Number int     `json:"Number"`
	Name   *string `json:"Name"`
	Token  string  `json:"Token"`
}

// CachedTrial is the trial account in PlayerList.json
type CachedTrial struct {
	Id    string `json:"Id"`
	Token string `json:"Token"`
	Code  string `json:"Code"`
}

// Cache is the contents of PlayerList.json
type Cache struct {
	Selected *int                     `json:"Selected"`
	Players  map[string]*CachedPlayer `json:"Players"`
	Trial    *CachedTrial             `json:"Trial"`
}

// NewCache returns an empty cache
func NewCache() *Cache {
	return &Cache{Players: make(map[string]*CachedPlayer)}
}

// NameResolver finds the account name for a token
type NameResolver interface {
	ResolveName(ctx context.Context, token string) (string, error)
}

// CacheFile reads and writes PlayerList.json
type CacheFile struct {
	path     string
	resolver NameResolver
	logger   *slog.Logger
}

// NewCacheFile creates the cache in dir. resolver fills in missing names on
// save and may be nil.
func NewCacheFile(dir string, resolver NameResolver, logger *slog.Logger) *CacheFile {
	return &CacheFile{
		path:     filepath.Join(dir, CacheFileName),
		resolver: resolver,
		logger:   logger.With(slog.String("component", "playercache")),
	}
}

// Path returns the cache file location
func (f *CacheFile) Path() string {
	return f.path
}

// Load reads the cache. A missing file is an empty cache. An unreadable or
// corrupt file also gives an empty cache, together with an error wrapping
// model.ErrCorruptCache so callers can report it and carry on.
func (f *CacheFile) Load() (*Cache, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewCache(), nil
	}
	if err != nil {
		return NewCache(), fmt.Errorf("%w: %v", model.ErrCorruptCache, err)
	}

	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return NewCache(), fmt.Errorf("%w: %v", model.ErrCorruptCache, err)
	}
	if cache.Players == nil {
		cache.Players = make(map[string]*CachedPlayer)
	}
	return &cache, nil
}

// Save fills in missing names and writes the cache
func (f *CacheFile) Save(ctx context.Context, cache *Cache) error {
	f.resolveNames(ctx, cache)

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("encode player cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write player cache: %w", err)
	}
	return nil
}

// resolveNames asks the resolver once per player without a name. A failed
// lookup leaves the name unset for the next save to retry.
func (f *CacheFile) resolveNames(ctx context.Context, cache *Cache) {
	if f.resolver == nil {
		return
	}

	tokens := make([]string, 0, len(cache.Players))
	for token, p := range cache.Players {
		if p.Name == nil {
			tokens = append(tokens, token)
		}
	}
	slices.Sort(tokens)

	for _, token := range tokens {
		name, err := f.resolver.ResolveName(ctx, token)
		if err != nil {
			f.logger.Warn("failed to resolve player name", slog.String("token", token), slog.Any("error", err))
			continue
		}
		cache.Players[token].Name = &name
	}
}
