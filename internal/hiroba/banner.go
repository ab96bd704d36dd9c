package hiroba

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/mcoot/galapa/internal/webclient"
)

// DefaultBannerURL is the rotation banner fragment shown by the official launcher
const DefaultBannerURL = "https://hiroba.dqx.jp/sc/rotationbanner"

var linkAction = regexp.MustCompile(`javascript:ctrLinkAction\('link=([^']+)'\);`)

// Banner is one news banner from the rotation
type Banner struct {
	Alt  string `json:"alt"`
	Href string `json:"href"`
	Src  string `json:"src"`
}

// Fetcher retrieves a page
type Fetcher interface {
	Get(ctx context.Context, url string) (*webclient.Page, error)
}

// Client reads the Hiroba news banners
type Client struct {
	fetcher Fetcher
	url     string
	logger  *slog.Logger
}

// New creates a banner client. An empty url uses DefaultBannerURL.
func New(fetcher Fetcher, url string, logger *slog.Logger) *Client {
	if url == "" {
		url = DefaultBannerURL
	}
	return &Client{
		fetcher: fetcher,
		url:     url,
		logger:  logger.With(slog.String("component", "hiroba")),
	}
}

// Banners fetches the current banners in display order
func (c *Client) Banners(ctx context.Context) ([]Banner, error) {
	page, err := c.fetcher.Get(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("fetch banners: %w", err)
	}
	banners := ParseBanners(page.Doc)
	c.logger.Debug("banners fetched", slog.Int("count", len(banners)))
	return banners, nil
}

// ParseBanners extracts the banners from the rotation fragment. Links that
// are not wrapped in ctrLinkAction give an empty Href.
func ParseBanners(doc *goquery.Document) []Banner {
	banners := []Banner{}
	doc.Find("li.slide > a").Each(func(_ int, a *goquery.Selection) {
		b := Banner{
			Alt: a.AttrOr("alt", ""),
			Src: a.Find("img").First().AttrOr("src", ""),
		}
		if m := linkAction.FindStringSubmatch(a.AttrOr("href", "")); m != nil {
			b.Href = m[1]
		}
		banners = append(banners, b)
	})
	return banners
}
