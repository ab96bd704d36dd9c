package cookiejar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/mcoot/galapa/internal/dependencies/clock"
)

// Jar keeps cookies per request host and persists them to a JSON file.
// It is used as an http.RoundTripper wrapping the real transport.
type Jar struct {
	mu      sync.Mutex
	path    string
	cookies map[string][]Cookie
	next    http.RoundTripper
	clock   clock.Clock
	logger  *slog.Logger
}

var _ http.RoundTripper = (*Jar)(nil)

// Open loads the jar stored at {dir}/{name}.cookies.json. A missing or
// unreadable file gives an empty jar.
func Open(dir, name string, next http.RoundTripper, clk clock.Clock, logger *slog.Logger) (*Jar, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cookie directory: %w", err)
	}
	if next == nil {
		next = http.DefaultTransport
	}

	j := &Jar{
		path:    filepath.Join(dir, name+".cookies.json"),
		cookies: map[string][]Cookie{},
		next:    next,
		clock:   clk,
		logger:  logger.With(slog.String("component", "cookiejar"), slog.String("jar", name)),
	}
	j.load()
	return j, nil
}

// Path returns the file the jar is persisted to
func (j *Jar) Path() string {
	return j.path
}

func (j *Jar) load() {
	data, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		j.logger.Warn("failed to read cookie jar, starting empty", slog.Any("error", err))
		return
	}

	var cookies map[string][]Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		j.logger.Warn("corrupt cookie jar, starting empty", slog.Any("error", err))
		return
	}
	if cookies != nil {
		j.cookies = cookies
	}
	j.prune()
}

// prune drops expired cookies from every domain. Callers hold mu.
func (j *Jar) prune() {
	now := j.clock.Now()
	for domain, list := range j.cookies {
		j.cookies[domain] = slices.DeleteFunc(list, func(c Cookie) bool {
			return c.Expired(now)
		})
	}
}

// Cookies returns the live cookies that would be sent for host and path
func (j *Jar) Cookies(host, path string) []Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.prune()
	return j.matching(host, path)
}

func (j *Jar) matching(host, path string) []Cookie {
	if path == "" {
		path = "/"
	}
	now := j.clock.Now()
	var out []Cookie
	for _, c := range j.cookies[host] {
		if strings.HasPrefix(path, c.Path) && !c.Expired(now) {
			out = append(out, c)
		}
	}
	return out
}

// SetCookie stores a Set-Cookie header received from host, replacing any
// cookie of the same name for that host
func (j *Jar) SetCookie(header, host string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.set(header, host)
}

func (j *Jar) set(header, host string) {
	cookie := Parse(header, host, j.clock.Now())
	list := slices.DeleteFunc(j.cookies[host], func(c Cookie) bool {
		return c.Name == cookie.Name
	})
	j.cookies[host] = append(list, cookie)
}

// Save prunes expired cookies and writes the jar to disk
func (j *Jar) Save() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.save()
}

func (j *Jar) save() error {
	j.prune()
	data, err := json.Marshal(j.cookies)
	if err != nil {
		return fmt.Errorf("encode cookie jar: %w", err)
	}
	if err := os.WriteFile(j.path, data, 0o600); err != nil {
		return fmt.Errorf("write cookie jar: %w", err)
	}
	return nil
}

// Clear removes every cookie and persists the empty jar
func (j *Jar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies = map[string][]Cookie{}
	return j.save()
}

// RoundTrip attaches stored cookies to the request, sends it, and records
// any cookies set by the response
func (j *Jar) RoundTrip(req *http.Request) (*http.Response, error) {
	host := req.URL.Hostname()

	j.mu.Lock()
	j.prune()
	attach := j.matching(host, req.URL.Path)
	j.mu.Unlock()

	if len(attach) > 0 {
		req = req.Clone(req.Context())
		values := make([]string, 0, len(attach))
		for _, c := range attach {
			values = append(values, c.String())
		}
		req.Header.Set("Cookie", strings.Join(values, "; "))
	}

	resp, err := j.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	headers := resp.Header.Values("Set-Cookie")
	if len(headers) == 0 {
		return resp, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	for _, h := range headers {
		j.set(h, host)
	}
	if err := j.save(); err != nil {
		j.logger.Warn("failed to persist cookie jar", slog.Any("error", err))
	}
	return resp, nil
}
