// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package roomtest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sentient-engine/consoles/lib/session"
)

type claimsKey struct{}

func withClaims(ctx context.Context, claims *session.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func claimsFrom(ctx context.Context) *session.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*session.Claims)
	return claims
}

func pathParam(request *http.Request, name string) string {
	value := chi.URLParam(request, name)
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}

func (s *Server) handleLogin(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(request, &body); err != nil {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	existing, ok := s.accounts[body.Username]
	s.mu.Unlock()
	if !ok || !existing.enabled || existing.password != body.Password {
		writer.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(writer, http.StatusOK, map[string]string{
		"access_token": s.IssueToken(body.Username, existing.role, TokenLifetime),
		"token_type":   "Bearer",
	})
}

func (s *Server) handleListUsers(writer http.ResponseWriter, request *http.Request) {
	s.mu.Lock()
	users := make([]map[string]any, 0, len(s.accounts))
	for _, username := range s.sortedUsernames() {
		existing := s.accounts[username]
		users = append(users, map[string]any{
			"username":           username,
			"role":               existing.role,
			"enabled":            existing.enabled,
			"created_at_unix_ms": existing.createdAt.UnixMilli(),
		})
	}
	s.mu.Unlock()
	writeJSON(writer, http.StatusOK, users)
}

func (s *Server) handleCreateUser(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Username string       `json:"username"`
		Password string       `json:"password"`
		Role     session.Role `json:"role"`
	}
	if err := decodeBody(request, &body); err != nil {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}
	if !containsRole(session.Roles, body.Role) || strings.TrimSpace(body.Username) == "" || len(body.Password) < s.minLength || len(body.Password) > 128 {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[body.Username]; exists {
		writer.WriteHeader(http.StatusConflict)
		return
	}
	s.accounts[body.Username] = &account{password: body.Password, role: body.Role, enabled: true, createdAt: s.clock.Now()}
	writer.WriteHeader(http.StatusCreated)
}

func (s *Server) handleSetEnabled(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decodeBody(request, &body); err != nil || body.Enabled == nil {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.accounts[pathParam(request, "username")]
	if !ok {
		writer.WriteHeader(http.StatusNotFound)
		return
	}
	existing.enabled = *body.Enabled
	writer.WriteHeader(http.StatusOK)
}

func (s *Server) handleSetPassword(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := decodeBody(request, &body); err != nil || len(body.Password) < s.minLength || len(body.Password) > 128 {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.accounts[pathParam(request, "username")]
	if !ok {
		writer.WriteHeader(http.StatusNotFound)
		return
	}
	existing.password = body.Password
	writer.WriteHeader(http.StatusOK)
}

func (s *Server) handleStatus(writer http.ResponseWriter, request *http.Request) {
	s.mu.Lock()
	status := s.status
	s.mu.Unlock()
	writer.Header().Set("Content-Type", "application/json")
	writer.Write(status)
}

func (s *Server) handleControl(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Op         string          `json:"op"`
		Parameters json.RawMessage `json:"parameters"`
	}
	if err := decodeBody(request, &body); err != nil {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch body.Op {
	case "PAUSE_DISPATCH":
		s.paused = true
	case "RESUME_DISPATCH":
		s.paused = false
	default:
		writer.WriteHeader(http.StatusBadRequest)
		return
	}
	s.controlOps = append(s.controlOps, body.Op)
	writer.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleListGraphs(writer http.ResponseWriter, request *http.Request) {
	s.mu.Lock()
	graphs := make([]map[string]int64, 0, len(s.graphs))
	for index := len(s.graphs) - 1; index >= 0; index-- {
		graphs = append(graphs, map[string]int64{
			"version":            s.graphs[index].version,
			"created_at_unix_ms": s.graphs[index].createdAt.UnixMilli(),
		})
	}
	s.mu.Unlock()
	writeJSON(writer, http.StatusOK, graphs)
}

func (s *Server) handleActiveGraph(writer http.ResponseWriter, request *http.Request) {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if active == nil {
		writer.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(writer, http.StatusOK, map[string]int64{
		"active_version":       active.version,
		"activated_at_unix_ms": active.activatedAt.UnixMilli(),
	})
}

func (s *Server) handleUploadGraph(writer http.ResponseWriter, request *http.Request) {
	var document json.RawMessage
	if err := decodeBody(request, &document); err != nil {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	version := s.addGraphLocked(document)
	s.mu.Unlock()
	writeJSON(writer, http.StatusCreated, map[string]int64{"version": version})
}

func (s *Server) handleActivateGraph(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Version int64 `json:"version"`
	}
	if err := decodeBody(request, &body); err != nil {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.liveRun {
		writer.WriteHeader(http.StatusConflict)
		return
	}
	if body.Version < 1 || body.Version > int64(len(s.graphs)) {
		writer.WriteHeader(http.StatusNotFound)
		return
	}
	s.active = &activeGraph{version: body.Version, activatedAt: s.clock.Now()}
	writer.WriteHeader(http.StatusOK)
}

func (s *Server) handleResetRequest(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(request, &body); err != nil {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.devicesSafe {
		http.Error(writer, "devices not SAFE", http.StatusConflict)
		return
	}
	resetID := uuid.NewString()
	expiresAt := s.clock.Now().Add(ResetWindow)
	s.resets[resetID] = pendingReset{
		reason:    body.Reason,
		requester: claimsFrom(request.Context()).Sub,
		expiresAt: expiresAt,
	}
	writeJSON(writer, http.StatusOK, map[string]any{
		"reset_id":           resetID,
		"expires_at_unix_ms": expiresAt.UnixMilli(),
	})
}

func (s *Server) handleResetConfirm(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		ResetID string `json:"reset_id"`
	}
	if err := decodeBody(request, &body); err != nil {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}
	if _, err := uuid.Parse(body.ResetID); err != nil {
		writer.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, ok := s.resets[body.ResetID]
	if !ok {
		http.Error(writer, "unknown reset_id", http.StatusBadRequest)
		return
	}
	delete(s.resets, body.ResetID)
	if s.clock.Now().After(pending.expiresAt) {
		http.Error(writer, "reset_id expired", http.StatusBadRequest)
		return
	}
	s.confirmed = append(s.confirmed, body.ResetID)
	writer.WriteHeader(http.StatusAccepted)
}
