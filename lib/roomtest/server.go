// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package roomtest

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sentient-engine/consoles/lib/clock"
	"github.com/sentient-engine/consoles/lib/session"
)

// ResetWindow is how long a safety reset request stays confirmable.
const ResetWindow = 60 * time.Second

// TokenLifetime is the validity of tokens issued by login.
const TokenLifetime = 12 * time.Hour

// Config configures a Server.
type Config struct {
	// RoomID is the only room the server knows. Defaults to "clockwork".
	RoomID string
	// Clock drives token issue times and reset expiry. Defaults to the
	// real clock.
	Clock clock.Clock
	// MinPasswordLength is enforced on user creation and password
	// resets. Defaults to 1.
	MinPasswordLength int
}

// Request is one request as received.
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          []byte
}

type account struct {
	password  string
	role      session.Role
	enabled   bool
	createdAt time.Time
}

type graphRecord struct {
	version   int64
	createdAt time.Time
	document  json.RawMessage
}

type pendingReset struct {
	reason    string
	requester string
	expiresAt time.Time
}

type forcedFailure struct {
	method string
	path   string
	status int
}

// Server is the fake backend.
type Server struct {
	URL string

	httpServer *httptest.Server
	clock      clock.Clock
	roomID     string
	minLength  int
	signingKey []byte

	mu          sync.Mutex
	accounts    map[string]*account
	graphs      []graphRecord
	active      *activeGraph
	status      json.RawMessage
	paused      bool
	controlOps  []string
	devicesSafe bool
	liveRun     bool
	resets      map[string]pendingReset
	confirmed   []string
	requests    []Request
	failures    []forcedFailure
}

type activeGraph struct {
	version     int64
	activatedAt time.Time
}

// New starts a Server and stops it when tb finishes.
func New(tb testing.TB, config Config) *Server {
	tb.Helper()
	server := newServer(config)
	server.httpServer = httptest.NewServer(server.routes())
	server.URL = server.httpServer.URL
	tb.Cleanup(server.httpServer.Close)
	return server
}

func newServer(config Config) *Server {
	roomID := config.RoomID
	if roomID == "" {
		roomID = "clockwork"
	}
	serverClock := config.Clock
	if serverClock == nil {
		serverClock = clock.Real()
	}
	minLength := config.MinPasswordLength
	if minLength < 1 {
		minLength = 1
	}
	signingKey := make([]byte, 32)
	if _, err := rand.Read(signingKey); err != nil {
		panic("roomtest: reading random signing key: " + err.Error())
	}
	return &Server{
		clock:       serverClock,
		roomID:      roomID,
		minLength:   minLength,
		signingKey:  signingKey,
		accounts:    make(map[string]*account),
		status:      json.RawMessage(`{"schema":"v8","dispatch":{"paused":false},"devices":{}}`),
		devicesSafe: true,
		resets:      make(map[string]pendingReset),
	}
}

// HTTPClient returns a client for the server's listener.
func (s *Server) HTTPClient() *http.Client { return s.httpServer.Client() }

// RoomID returns the room the server serves.
func (s *Server) RoomID() string { return s.roomID }

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(s.record)
	router.Use(s.injectFailures)

	router.Route("/v8/auth", func(router chi.Router) {
		router.Post("/login", s.handleLogin)
		router.Group(func(router chi.Router) {
			router.Use(s.requireAdmin)
			router.Get("/users", s.handleListUsers)
			router.Post("/users", s.handleCreateUser)
			router.Post("/users/{username}/enabled", s.handleSetEnabled)
			router.Post("/users/{username}/password", s.handleSetPassword)
		})
	})

	router.Route("/v8/room/{roomID}", func(router chi.Router) {
		router.Use(s.requireRoom)
		router.With(s.requireRole()).Get("/core/status", s.handleStatus)
		router.With(s.requireRole()).Get("/graphs", s.handleListGraphs)
		router.With(s.requireRole()).Get("/graphs/active", s.handleActiveGraph)
		router.With(s.requireRole(session.RoleAdmin, session.RoleTech)).Post("/graphs", s.handleUploadGraph)
		router.With(s.requireRole(session.RoleAdmin, session.RoleTech)).Post("/graphs/activate", s.handleActivateGraph)
		router.With(s.requireRole(session.RoleAdmin, session.RoleTech, session.RoleGM)).Post("/control", s.handleControl)
		router.With(s.requireRole(session.RoleAdmin, session.RoleTech)).Post("/safety/reset/request", s.handleResetRequest)
		router.With(s.requireRole(session.RoleAdmin, session.RoleTech)).Post("/safety/reset/confirm", s.handleResetConfirm)
	})
	return router
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)
		request.Body = io.NopCloser(bytes.NewReader(body))
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        request.Method,
			Path:          request.URL.EscapedPath(),
			Authorization: request.Header.Get("Authorization"),
			Body:          body,
		})
		s.mu.Unlock()
		next.ServeHTTP(writer, request)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		s.mu.Lock()
		for index, failure := range s.failures {
			if failure.method == request.Method && failure.path == request.URL.EscapedPath() {
				s.failures = append(s.failures[:index], s.failures[index+1:]...)
				s.mu.Unlock()
				http.Error(writer, "injected failure", failure.status)
				return
			}
		}
		s.mu.Unlock()
		next.ServeHTTP(writer, request)
	})
}

// FailNext makes the next method request to path answer status.
func (s *Server) FailNext(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, forcedFailure{method: method, path: path, status: status})
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the requests received for method and path.
func (s *Server) RequestsTo(method, path string) []Request {
	var matching []Request
	for _, request := range s.Requests() {
		if request.Method == method && request.Path == path {
			matching = append(matching, request)
		}
	}
	return matching
}

// ResetRequests forgets the recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// AddUser creates an account directly.
func (s *Server) AddUser(username, password string, role session.Role, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[username] = &account{password: password, role: role, enabled: enabled, createdAt: s.clock.Now()}
}

// UserPassword returns the stored password for username.
func (s *Server) UserPassword(username string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.accounts[username]
	if !ok {
		return "", false
	}
	return existing.password, true
}

// IssueToken signs a token for sub with role, valid for lifetime.
func (s *Server) IssueToken(sub string, role session.Role, lifetime time.Duration) string {
	now := s.clock.Now()
	claims := session.Claims{Sub: sub, Role: role, Iat: uint64(now.Unix()), Exp: uint64(now.Add(lifetime).Unix())}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		panic("roomtest: signing token: " + err.Error())
	}
	return token
}

// SetStatus replaces the core status document.
func (s *Server) SetStatus(document string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = json.RawMessage(document)
}

// SetDevicesSafe controls whether reset requests pass the device check.
func (s *Server) SetDevicesSafe(safe bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devicesSafe = safe
}

// SetLiveRun makes graph activation fail with 409 while a run is live.
func (s *Server) SetLiveRun(live bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveRun = live
}

// AddGraph stores a graph version directly and returns its number.
func (s *Server) AddGraph(document string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addGraphLocked(json.RawMessage(document))
}

func (s *Server) addGraphLocked(document json.RawMessage) int64 {
	version := int64(len(s.graphs) + 1)
	s.graphs = append(s.graphs, graphRecord{version: version, createdAt: s.clock.Now(), document: document})
	return version
}

// Graph returns the stored document for version.
func (s *Server) Graph(version int64) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version < 1 || version > int64(len(s.graphs)) {
		return nil, false
	}
	return s.graphs[version-1].document, true
}

// ActiveVersion returns the active graph version, or 0.
func (s *Server) ActiveVersion() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return 0
	}
	return s.active.version
}

// DispatchPaused reports the dispatch state.
func (s *Server) DispatchPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// ControlOps returns the control ops received, in order.
func (s *Server) ControlOps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.controlOps...)
}

// PendingResets returns the number of reset ids that can still be
// confirmed.
func (s *Server) PendingResets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resets)
}

// ConfirmedResets returns the reset ids confirmed so far.
func (s *Server) ConfirmedResets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.confirmed...)
}

// authenticate returns the verified claims for the request, or nil.
func (s *Server) authenticate(request *http.Request) *session.Claims {
	header := request.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil
	}
	claims := &session.Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return nil
	}
	return claims
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := s.authenticate(request)
		if claims == nil {
			writer.WriteHeader(http.StatusUnauthorized)
			return
		}
		if claims.Role != session.RoleAdmin {
			writer.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(writer, request)
	})
}

func (s *Server) requireRoom(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if chi.URLParam(request, "roomID") != s.roomID {
			writer.WriteHeader(http.StatusNotFound)
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// requireRole admits any authenticated caller when roles is empty.
func (s *Server) requireRole(roles ...session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := s.authenticate(request)
			if claims == nil || (len(roles) > 0 && !containsRole(roles, claims.Role)) {
				writer.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(writer, request.WithContext(withClaims(request.Context(), claims)))
		})
	}
}

func containsRole(roles []session.Role, role session.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}

func writeJSON(writer http.ResponseWriter, status int, value any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(value)
}

func decodeBody(request *http.Request, target any) error {
	decoder := json.NewDecoder(request.Body)
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("trailing data")
	}
	return nil
}

func (s *Server) sortedUsernames() []string {
	usernames := make([]string, 0, len(s.accounts))
	for username := range s.accounts {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)
	return usernames
}
