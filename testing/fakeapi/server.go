// Package fakeapi is an in-process stand-in for the AMOS / MVR HTTP API.
//
// Routes answer with built-in defaults (score, health) until a test scripts
// them; scripted responses are replayed in order and the last one repeats.
// Every received request is recorded.
package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	PathScore  = "/v1/amos/score"
	PathHealth = "/health"

	headerLicense      = "x-mvr-license"
	headerBuyerEmail   = "x-buyer-email"
	headerSessionToken = "x-mvr-session-token"
)

// Response is one scripted reply. Body may be a string, []byte or any value
// that is JSON-encoded.
type Response struct {
	Status int
	Header map[string]string
	Body   any
}

// Request is a recorded inbound request.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Credentials the fake accepts. Empty fields are not checked.
type Credentials struct {
	License      string
	Email        string
	SessionToken string
}

// Server is a running fake API.
type Server struct {
	echo *echo.Echo
	http *httptest.Server

	mu          sync.Mutex
	credentials Credentials
	scripts     map[string][]Response
	served      map[string]int
	requests    []Request
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials rejects score requests without matching credential headers.
func WithCredentials(c Credentials) Option {
	return func(s *Server) { s.credentials = c }
}

// New starts a fake API that is shut down when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		scripts: make(map[string][]Response),
		served:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Any("/*", s.handle)
	s.echo = e

	s.http = httptest.NewServer(e)
	t.Cleanup(s.Close)
	return s
}

// URL is the base URL of the fake.
func (s *Server) URL() string {
	return s.http.URL
}

// Close stops the fake.
func (s *Server) Close() {
	s.http.Close()
}

// Script replaces the responses for method and path.
func (s *Server) Script(method, path string, responses ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := routeKey(method, path)
	s.scripts[key] = responses
	s.served[key] = 0
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Calls counts requests received for method and path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) handle(c echo.Context) error {
	req := c.Request()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.RawQuery,
		Header: req.Header.Clone(),
		Body:   body,
	})
	resp, scripted := s.next(routeKey(req.Method, req.URL.Path))
	s.mu.Unlock()

	if !scripted {
		resp = s.defaultResponse(req, body)
	}
	return write(c, resp)
}

// next must be called with s.mu held.
func (s *Server) next(key string) (Response, bool) {
	responses := s.scripts[key]
	if len(responses) == 0 {
		return Response{}, false
	}
	i := min(s.served[key], len(responses)-1)
	s.served[key]++
	return responses[i], true
}

func (s *Server) defaultResponse(req *http.Request, body []byte) Response {
	switch routeKey(req.Method, req.URL.Path) {
	case routeKey(http.MethodGet, PathHealth):
		return Response{Status: http.StatusOK, Body: HealthBody()}
	case routeKey(http.MethodPost, PathScore):
		if !s.authorized(req.Header) {
			return Response{Status: http.StatusUnauthorized, Body: map[string]any{
				"error":      "UNAUTHORIZED",
				"error_code": "AUTH_INVALID",
				"message":    "invalid or missing credentials",
				"request_id": "fake-req-auth",
			}}
		}
		var in struct {
			AMOSID string `json:"amos_id"`
		}
		if err := json.Unmarshal(body, &in); err != nil || in.AMOSID == "" {
			return Response{Status: http.StatusBadRequest, Body: map[string]any{
				"error":   "BAD_REQUEST",
				"message": "amos_id is required",
			}}
		}
		return Response{Status: http.StatusOK, Body: ScoreBody(in.AMOSID)}
	default:
		return Response{Status: http.StatusNotFound, Body: map[string]any{
			"error":   "NOT_FOUND",
			"message": "no route for " + req.Method + " " + req.URL.Path,
		}}
	}
}

func (s *Server) authorized(h http.Header) bool {
	c := s.credentials
	if c.SessionToken != "" && h.Get(headerSessionToken) != c.SessionToken {
		return false
	}
	if c.License != "" && h.Get(headerLicense) != c.License {
		return false
	}
	if c.Email != "" && h.Get(headerBuyerEmail) != c.Email {
		return false
	}
	return true
}

func write(c echo.Context, resp Response) error {
	for k, v := range resp.Header {
		c.Response().Header().Set(k, v)
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	switch b := resp.Body.(type) {
	case nil:
		return c.NoContent(status)
	case string:
		return c.Blob(status, echo.MIMEApplicationJSON, []byte(b))
	case []byte:
		return c.Blob(status, echo.MIMEApplicationJSON, b)
	default:
		return c.JSON(status, b)
	}
}

func routeKey(method, path string) string {
	return method + " " + path
}
