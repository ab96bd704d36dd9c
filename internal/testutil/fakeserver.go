package testutil

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

// Account is a login the fake server accepts
type Account struct {
	Token      string
	Username   string
	Password   string
	TOTPSecret string
	SessionID  string
}

// FakeServer imitates the login, maintenance and banner endpoints
type FakeServer struct {
	*httptest.Server

	mu          sync.Mutex
	accounts    []Account
	now         func() time.Time
	maintenance string
	banners     string
}

// NewFakeServer starts a fake server that is closed with the test.
// now drives the TOTP codes it accepts.
func NewFakeServer(t testing.TB, now func() time.Time, accounts ...Account) *FakeServer {
	t.Helper()
	s := &FakeServer{
		accounts:    accounts,
		now:         now,
		maintenance: `{"status":"0"}`,
		banners:     `<ul></ul>`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/login", s.handleLogin)
	mux.HandleFunc("POST /oauth/submit", s.handleSubmit)
	mux.HandleFunc("POST /oauth/otp", s.handleOtp)
	mux.HandleFunc("GET /mainte/check", s.handleMaintenance)
	mux.HandleFunc("GET /rotationbanner", s.handleBanners)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// LoginURL is the login page to configure strategies with
func (s *FakeServer) LoginURL() string { return s.URL + "/oauth/login" }

// MaintenanceURL is the maintenance check endpoint
func (s *FakeServer) MaintenanceURL() string { return s.URL + "/mainte/check" }

// BannerURL is the rotation banner page
func (s *FakeServer) BannerURL() string { return s.URL + "/rotationbanner" }

// AddAccount registers another account
func (s *FakeServer) AddAccount(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append(s.accounts, a)
}

// SetMaintenance replaces the maintenance check body
func (s *FakeServer) SetMaintenance(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maintenance = body
}

// SetBanners replaces the banner page markup
func (s *FakeServer) SetBanners(markup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banners = markup
}

func (s *FakeServer) find(match func(Account) bool) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if match(a) {
			return a, true
		}
	}
	return Account{}, false
}

func (s *FakeServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	switch r.FormValue("dqxmode") {
	case "1":
		writePage(w, loginForm(""))
	case "2":
		a, ok := s.find(func(a Account) bool { return a.Token == r.FormValue("id") })
		if !ok {
			writePage(w, `<p>unknown account</p>`)
			return
		}
		writePage(w, loginForm(a.Username))
	default:
		http.Error(w, "unknown mode", http.StatusBadRequest)
	}
}

func (s *FakeServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	username := r.FormValue("sqexid")
	a, ok := s.find(func(a Account) bool {
		return a.Username == username && a.Password == r.FormValue("password")
	})
	switch {
	case !ok:
		writePage(w, authError("Incorrect ID or password")+loginForm(username))
	case a.TOTPSecret != "":
		writePage(w, otpForm(a.Username))
	default:
		writePage(w, authSuccess(a))
	}
}

func (s *FakeServer) handleOtp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	username := r.FormValue("sqexid")
	a, ok := s.find(func(a Account) bool { return a.Username == username })
	if !ok {
		writePage(w, authError("Session expired"))
		return
	}
	want, err := totp.GenerateCode(a.TOTPSecret, s.now())
	if err != nil || r.FormValue("otppw") != want {
		writePage(w, authError("Incorrect one-time password")+otpForm(a.Username))
		return
	}
	writePage(w, authSuccess(a))
}

func (s *FakeServer) handleMaintenance(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	body := s.maintenance
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (s *FakeServer) handleBanners(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	markup := s.banners
	s.mu.Unlock()
	writePage(w, markup)
}

func writePage(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, "<html><body>%s</body></html>", body)
}

func loginForm(username string) string {
	field := `<input type="text" name="sqexid" value="">`
	if username != "" {
		field = fmt.Sprintf(`<input type="hidden" name="sqexid" value="%s">`, html.EscapeString(username))
	}
	return `<form name="mainForm" method="post" action="/oauth/submit">` + field +
		`<input type="password" name="password" value=""></form>`
}

func otpForm(username string) string {
	return fmt.Sprintf(`<form name="mainForm" method="post" action="/oauth/otp">`+
		`<input type="hidden" name="sqexid" value="%s"><input type="text" name="otppw" value=""></form>`,
		html.EscapeString(username))
}

func authError(message string) string {
	return fmt.Sprintf(`<x-sqexauth message="%s"></x-sqexauth>`, html.EscapeString(message))
}

func authSuccess(a Account) string {
	return fmt.Sprintf(`<x-sqexauth sid="%s" id="%s" lang="ja" region="jp" mode="1"></x-sqexauth>`,
		html.EscapeString(a.SessionID), html.EscapeString(a.Token))
}
