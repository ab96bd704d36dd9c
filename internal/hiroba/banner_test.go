package hiroba

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/galapa/internal/testutil"
	"github.com/mcoot/galapa/internal/webclient"
)

const rotation = `<html><body><ul class="bxslider">
<li class="slide"><a href="javascript:ctrLinkAction('link=https://hiroba.dqx.jp/sc/topics/detail/39539f630a3b94d3ed61ea9d04c9bb05/');" alt="Version 7">
  <img src="https://img.dqx.jp/banner/v7.jpg"></a></li>
<li class="slide wide"><a href="/plain" alt="Campaign"><img src="/c.png"></a></li>
<li class="other"><a href="javascript:ctrLinkAction('link=ignored');"><img src="/x.png"></a></li>
</ul></body></html>`

type fakeFetcher struct {
	html string
	err  error
	urls []string
}

func (f *fakeFetcher) Get(ctx context.Context, target string) (*webclient.Page, error) {
	f.urls = append(f.urls, target)
	if f.err != nil {
		return nil, f.err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.html))
	if err != nil {
		return nil, err
	}
	u, _ := url.Parse(target)
	return &webclient.Page{URL: u, StatusCode: 200, Doc: doc}, nil
}

type BannerSuite struct {
	suite.Suite
}

func TestBannerSuite(t *testing.T) {
	suite.Run(t, new(BannerSuite))
}

func (s *BannerSuite) TestBanners() {
	f := &fakeFetcher{html: rotation}
	banners, err := New(f, "", testutil.NopLogger()).Banners(context.Background())
	s.Require().NoError(err)

	s.Equal([]string{DefaultBannerURL}, f.urls)
	s.Equal([]Banner{
		{Alt: "Version 7", Href: "https://hiroba.dqx.jp/sc/topics/detail/39539f630a3b94d3ed61ea9d04c9bb05/", Src: "https://img.dqx.jp/banner/v7.jpg"},
		{Alt: "Campaign", Href: "", Src: "/c.png"},
	}, banners)
}

func (s *BannerSuite) TestNoBannersIsEmpty() {
	f := &fakeFetcher{html: "<html></html>"}
	banners, err := New(f, "http://localhost/b", testutil.NopLogger()).Banners(context.Background())
	s.Require().NoError(err)
	s.NotNil(banners)
	s.Empty(banners)
	s.Equal([]string{"http://localhost/b"}, f.urls)
}

func (s *BannerSuite) TestFetchError() {
	f := &fakeFetcher{err: errors.New("offline")}
	_, err := New(f, "", testutil.NopLogger()).Banners(context.Background())
	s.ErrorContains(err, "offline")
}
