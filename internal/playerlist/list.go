package playerlist

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/galapa/internal/configfile"
	"github.com/mcoot/galapa/internal/model"
	"github.com/mcoot/galapa/internal/vault"
)

// entry is one roster player joined across the three stores
type entry struct {
	number int
	token  string
	name   string
	cred   *vault.Credential
}

func (e *entry) snapshot() model.SavedPlayer {
	return model.SavedPlayer{
		Number:     e.number,
		Token:      e.token,
		Name:       e.name,
		Password:   e.cred.Password,
		TOTPSecret: e.cred.TOTPSecret,
	}
}

// List reconciles the official XML roster, the JSON cache and the
// credential vault. The XML is the source of truth on load.
type List struct {
	xml    *configfile.PlayerListFile
	cache  *CacheFile
	vault  vault.Store
	logger *slog.Logger

	mu      sync.Mutex
	doc     *configfile.PlayerListXML
	data    *Cache
	players []*entry
}

// New creates a player list over the given stores
func New(xml *configfile.PlayerListFile, cache *CacheFile, store vault.Store, logger *slog.Logger) *List {
	return &List{
		xml:    xml,
		cache:  cache,
		vault:  store,
		logger: logger.With(slog.String("component", "playerlist")),
	}
}

// Load reads all three stores, brings the cache and vault in line with the
// XML, builds the roster and saves everything back
func (l *List) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc, err := l.xml.Load()
	if err != nil {
		return err
	}

	data, err := l.cache.Load()
	if err != nil {
		l.logger.Warn("player cache unreadable, rebuilding from XML", slog.Any("error", err))
	}

	tokens, err := l.vault.Tokens(ctx)
	if err != nil {
		l.logger.Warn("failed to list vault tokens", slog.Any("error", err))
		tokens = nil
	}

	if err := l.syncFromXML(ctx, doc, data, tokens); err != nil {
		return err
	}

	players := make([]*entry, 0, len(doc.Players))
	for _, xp := range doc.Players {
		cred, err := l.vault.Load(ctx, xp.Token)
		if err != nil {
			return fmt.Errorf("load credential: %w", err)
		}
		e := &entry{number: xp.Number, token: xp.Token, cred: cred}
		if cp := data.Players[xp.Token]; cp != nil && cp.Name != nil {
			e.name = *cp.Name
		}
		players = append(players, e)
	}

	l.doc, l.data, l.players = doc, data, players
	l.logger.Debug("player list loaded", slog.Int("players", len(players)))
	return l.save(ctx)
}

func (l *List) syncFromXML(ctx context.Context, doc *configfile.PlayerListXML, data *Cache, vaultTokens []string) error {
	xmlTokens := doc.Tokens()

	for _, token := range vaultTokens {
		if slices.Contains(xmlTokens, token) {
			continue
		}
		if err := l.vault.Remove(ctx, token); err != nil {
			l.logger.Warn("failed to remove stale credential", slog.String("token", token), slog.Any("error", err))
		}
	}

	players := make(map[string]*CachedPlayer, len(doc.Players))
	for _, xp := range doc.Players {
		cp, ok := data.Players[xp.Token]
		if !ok {
			cp = &CachedPlayer{Token: xp.Token}
		}
		cp.Number = xp.Number
		players[xp.Token] = cp
	}
	data.Players = players

	if doc.Trial == nil {
		data.Trial = nil
	} else {
		data.Trial = &CachedTrial{Id: doc.Trial.ID, Token: doc.Trial.Token, Code: doc.Trial.Code}
	}

	return l.cache.Save(ctx, data)
}

// Players returns a snapshot of the roster in order
func (l *List) Players() []model.SavedPlayer {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.SavedPlayer, 0, len(l.players))
	for _, e := range l.players {
		out = append(out, e.snapshot())
	}
	return out
}

// Player returns the player with token
func (l *List) Player(token string) (model.SavedPlayer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.find(token)
	if e == nil {
		return model.SavedPlayer{}, model.ErrPlayerNotFound
	}
	return e.snapshot(), nil
}

// PlayerByNumber returns the player in slot number
func (l *List) PlayerByNumber(number int) (model.SavedPlayer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.players {
		if e.number == number {
			return e.snapshot(), nil
		}
	}
	return model.SavedPlayer{}, model.ErrPlayerNotFound
}

// Trial returns the trial account, if there is one
func (l *List) Trial() (model.TrialPlayer, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.doc == nil || l.doc.Trial == nil {
		return model.TrialPlayer{}, false
	}
	t := l.doc.Trial
	return model.TrialPlayer{ID: t.ID, Token: t.Token, Code: t.Code}, true
}

func (l *List) find(token string) *entry {
	for _, e := range l.players {
		if e.token == token {
			return e
		}
	}
	return nil
}

// Add registers a new player in the lowest free slot. Nothing is written
// until Save.
func (l *List) Add(token string) (model.SavedPlayer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.doc == nil {
		return model.SavedPlayer{}, model.ErrNotLoaded
	}
	if token == "" {
		return model.SavedPlayer{}, fmt.Errorf("%w: empty token", model.ErrInvalidArgument)
	}
	if l.find(token) != nil {
		return model.SavedPlayer{}, model.ErrPlayerExists
	}

	number, err := l.availableNumber()
	if err != nil {
		return model.SavedPlayer{}, err
	}

	e := &entry{number: number, token: token, cred: l.vault.New(token)}
	l.players = append(l.players, e)
	l.logger.Info("player added", slog.Int("number", number))
	return e.snapshot(), nil
}

func (l *List) availableNumber() (int, error) {
	if len(l.players) >= model.MaxPlayers {
		return 0, model.ErrPlayerLimitReached
	}
	for n := 1; n <= model.MaxPlayers; n++ {
		taken := slices.ContainsFunc(l.players, func(e *entry) bool { return e.number == n })
		if !taken {
			return n, nil
		}
	}
	return 0, model.ErrPlayerLimitReached
}

// Remove takes a player off the roster. Nothing is written until Save; the
// credential is dropped by the next Load.
func (l *List) Remove(token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := slices.IndexFunc(l.players, func(e *entry) bool { return e.token == token })
	if idx < 0 {
		return model.ErrPlayerNotFound
	}
	l.players = slices.Delete(l.players, idx, idx+1)
	l.logger.Info("player removed")
	return nil
}

// SetName records the account name of a player
func (l *List) SetName(token, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.find(token)
	if e == nil {
		return model.ErrPlayerNotFound
	}
	e.name = name
	return nil
}

// SetSecrets replaces the stored password and TOTP secret of a player.
// Empty values clear the secret.
func (l *List) SetSecrets(token, password, totpSecret string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.find(token)
	if e == nil {
		return model.ErrPlayerNotFound
	}
	e.cred.Password = password
	e.cred.TOTPSecret = totpSecret
	return nil
}

// Select marks the player in slot number as the last one used
func (l *List) Select(number int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.doc == nil {
		return model.ErrNotLoaded
	}
	if !slices.ContainsFunc(l.players, func(e *entry) bool { return e.number == number }) {
		return model.ErrPlayerNotFound
	}
	l.doc.LastSelect = number
	l.data.Selected = &number
	return nil
}

// Selected returns the last selected slot
func (l *List) Selected() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.data == nil || l.data.Selected == nil {
		return 0, false
	}
	return *l.data.Selected, true
}

// Save writes every credential to the vault, then the XML and JSON rosters
// concurrently
func (l *List) Save(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.save(ctx)
}

func (l *List) save(ctx context.Context) error {
	if l.doc == nil {
		return model.ErrNotLoaded
	}

	for _, e := range l.players {
		if err := l.vault.Save(ctx, e.cred); err != nil {
			return fmt.Errorf("save credential: %w", err)
		}
	}

	l.doc.Players = make([]configfile.XMLPlayer, 0, len(l.players))
	players := make(map[string]*CachedPlayer, len(l.players))
	for _, e := range l.players {
		l.doc.Players = append(l.doc.Players, configfile.XMLPlayer{Number: e.number, Token: e.token})
		cp := &CachedPlayer{Number: e.number, Token: e.token}
		if e.name != "" {
			name := e.name
			cp.Name = &name
		}
		players[e.token] = cp
	}
	l.data.Players = players

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return l.xml.Save(l.doc)
	})
	g.Go(func() error {
		return l.cache.Save(gctx, l.data)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for _, e := range l.players {
		if cp := l.data.Players[e.token]; cp.Name != nil {
			e.name = *cp.Name
		}
	}
	return nil
}
