package webclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a fetched HTML document and the URL it was served from
type Page struct {
	URL        *url.URL
	StatusCode int
	Doc        *goquery.Document
}

// Form parses the first form matching selector, or returns nil if there is none
func (p *Page) Form(selector string) *Form {
	sel := p.Doc.Find(selector)
	if sel.Length() == 0 {
		return nil
	}
	form, err := ParseForm(sel, p.URL)
	if err != nil {
		return nil
	}
	return form
}

// Client issues requests the way the official launcher's embedded browser
// does: fixed headers and a persistent cookie jar.
type Client struct {
	http    *http.Client
	headers http.Header
	logger  *slog.Logger
}

// New creates a client sending through transport, which is normally a
// cookie jar. Gzip is requested and decoded by the transport.
func New(transport http.RoundTripper, userAgent string, logger *slog.Logger) *Client {
	headers := http.Header{}
	headers.Set("Cache-Control", "max-age=0")
	headers.Set("Connection", "Keep-Alive")
	headers.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	headers.Set("Accept-Language", "en-US")
	headers.Set("User-Agent", userAgent)

	return &Client{
		http:    &http.Client{Transport: transport},
		headers: headers,
		logger:  logger.With(slog.String("component", "webclient")),
	}
}

// Get fetches a page
func (c *Client) Get(ctx context.Context, target string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.do(req)
}

// PostForm posts url-encoded values to target
func (c *Client) PostForm(ctx context.Context, target string, values url.Values) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// Submit sends a form using its own method and action
func (c *Client) Submit(ctx context.Context, form *Form) (*Page, error) {
	if form.Method == http.MethodGet {
		u, err := url.Parse(form.Action)
		if err != nil {
			return nil, fmt.Errorf("form action: %w", err)
		}
		u.RawQuery = form.Values().Encode()
		return c.Get(ctx, u.String())
	}

	req, err := http.NewRequestWithContext(ctx, form.Method, form.Action, strings.NewReader(form.Values().Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Page, error) {
	for k, v := range c.headers {
		req.Header[k] = v
	}

	c.logger.Debug("request", slog.String("method", req.Method), slog.String("url", req.URL.Redacted()))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &Page{URL: resp.Request.URL, StatusCode: resp.StatusCode, Doc: doc}, nil
}
