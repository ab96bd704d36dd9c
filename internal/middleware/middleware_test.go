package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/galapa/internal/testutil"
)

type MiddlewareSuite struct {
	suite.Suite
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}

func (s *MiddlewareSuite) TestRecoveryCallsHandler() {
	var recovered any
	h := Recovery(testutil.NopLogger(), func(w http.ResponseWriter, r *http.Request, err any) {
		recovered = err
		w.WriteHeader(http.StatusTeapot)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	s.Equal(http.StatusTeapot, rr.Code)
	s.Equal("boom", recovered)
}

func (s *MiddlewareSuite) TestLoggingCapturesStatus() {
	logger, buf := testutil.BufferLogger(slog.LevelDebug)

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("down"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/maintenance", nil))

	s.Equal(http.StatusBadGateway, rr.Code)
	s.Contains(buf.String(), `"level":"WARN"`)
	s.Contains(buf.String(), `"status":502`)
	s.Contains(buf.String(), `"size":4`)
	s.Contains(buf.String(), `"path":"/api/v1/maintenance"`)
}

func (s *MiddlewareSuite) TestSuccessfulRequestsLogAtDebug() {
	logger, buf := testutil.BufferLogger(slog.LevelInfo)

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	s.Empty(buf.String())
}
