package webclient

import (
	"context"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/galapa/internal/testutil"
)

type FormSuite struct {
	suite.Suite
}

func TestFormSuite(t *testing.T) {
	suite.Run(t, new(FormSuite))
}

func (s *FormSuite) doc(body string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	s.Require().NoError(err)
	return doc
}

func (s *FormSuite) TestParseForm() {
	doc := s.doc(`<html><body>
		<form name="mainForm" method="post" action="/oauth/login?a=1&amp;b=2">
			<input type="hidden" name="sqexid" value="emma">
			<input type="password" name="password">
			<input type="submit" value="Go">
		</form></body></html>`)
	base, err := url.Parse("https://login.example/start/page")
	s.Require().NoError(err)

	form, err := ParseForm(doc.Find("form[name=mainForm]"), base)
	s.Require().NoError(err)

	s.Equal(http.MethodPost, form.Method)
	s.Equal("https://login.example/oauth/login?a=1&b=2", form.Action)
	s.Equal(map[string]string{"sqexid": "emma", "password": ""}, form.Fields)
	s.True(form.Has("password"))
	s.False(form.Has("otppw"))
}

func (s *FormSuite) TestRelativeActionAndDefaultMethod() {
	doc := s.doc(`<form action="next"><input name="x" value="1"></form>`)
	base, err := url.Parse("https://login.example/a/b")
	s.Require().NoError(err)

	form, err := ParseForm(doc.Find("form"), base)
	s.Require().NoError(err)
	s.Equal(http.MethodGet, form.Method)
	s.Equal("https://login.example/a/next", form.Action)
}

func (s *FormSuite) TestMissingForm() {
	_, err := ParseForm(s.doc(`<p>nothing</p>`).Find("form"), nil)
	s.Error(err)
}

func (s *FormSuite) TestCloneIsIndependent() {
	form := &Form{Method: http.MethodPost, Action: "x", Fields: map[string]string{"a": "1"}}
	clone := form.Clone()
	clone.Fields["a"] = "2"
	s.Equal("1", form.Fields["a"])
}

type ClientSuite struct {
	suite.Suite
	server  *httptest.Server
	mu      sync.Mutex
	request *http.Request
	body    string
	client  *Client
	ctx     context.Context
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.request = r
		s.body = string(data)
		s.mu.Unlock()
		_, _ = io.WriteString(w, `<form name="mainForm" method="post" action="/submit"><input name="sqexid" value="emma"></form>`)
	}))
	s.T().Cleanup(s.server.Close)
	s.client = New(http.DefaultTransport, UserAgent("abc"), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ClientSuite) last() (*http.Request, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.request, s.body
}

func (s *ClientSuite) TestPostFormSendsLauncherHeaders() {
	page, err := s.client.PostForm(s.ctx, s.server.URL+"/login", url.Values{"dqxmode": {"1"}})
	s.Require().NoError(err)
	s.Equal(http.StatusOK, page.StatusCode)

	req, body := s.last()
	s.Equal(http.MethodPost, req.Method)
	s.Equal("dqxmode=1", body)
	s.Equal("SQEXAuthor/2.0.0(Windows 6.2; ja-jp; abc)", req.Header.Get("User-Agent"))
	s.Equal("max-age=0", req.Header.Get("Cache-Control"))
	s.Equal("en-US", req.Header.Get("Accept-Language"))
	s.Equal("application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
}

func (s *ClientSuite) TestSubmitUsesFormAction() {
	page, err := s.client.Get(s.ctx, s.server.URL+"/start")
	s.Require().NoError(err)

	form := page.Form("form[name=mainForm]")
	s.Require().NotNil(form)
	s.Equal(s.server.URL+"/submit", form.Action)

	form.Fields["password"] = "hunter2"
	_, err = s.client.Submit(s.ctx, form)
	s.Require().NoError(err)

	req, body := s.last()
	s.Equal("/submit", req.URL.Path)
	values, err := url.ParseQuery(body)
	s.Require().NoError(err)
	s.Equal("emma", values.Get("sqexid"))
	s.Equal("hunter2", values.Get("password"))
}

func (s *ClientSuite) TestSubmitGetEncodesQuery() {
	form := &Form{Method: http.MethodGet, Action: s.server.URL + "/search", Fields: map[string]string{"q": "slime"}}
	_, err := s.client.Submit(s.ctx, form)
	s.Require().NoError(err)

	req, _ := s.last()
	s.Equal("slime", req.URL.Query().Get("q"))
}

func (s *ClientSuite) TestPageWithoutForm() {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<p>hi</p>"))
	s.Require().NoError(err)
	page := &Page{Doc: doc}
	s.Nil(page.Form("form"))
}

func (s *ClientSuite) TestTransportError() {
	_, err := s.client.Get(s.ctx, "http://127.0.0.1:1/")
	s.Error(err)
}

type IdentitySuite struct {
	suite.Suite
}

func TestIdentitySuite(t *testing.T) {
	suite.Run(t, new(IdentitySuite))
}

func (s *IdentitySuite) TestMakeComputerID() {
	s.Equal("1e6758f132", MakeComputerID("HOSTuserlinux8"))
}

func (s *IdentitySuite) TestChecksumByteZeroesSum() {
	raw, err := hex.DecodeString(ComputerID())
	s.Require().NoError(err)
	s.Require().Len(raw, 5)

	var sum byte
	for _, b := range raw {
		sum += b
	}
	s.Equal(byte(0), sum)
}
