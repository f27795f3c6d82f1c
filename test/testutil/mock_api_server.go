package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
)

// MockAPIServer is an in-memory OpsPanel backend for tests: generic entity
// collections under the API base path, JSON "detail" error bodies, 204 on
// delete, and an optional run of injected failures for retry tests.
type MockAPIServer struct {
	*httptest.Server

	mu       sync.Mutex
	entities map[string]map[string]map[string]interface{}
	nextID   int
	requests []RequestInfo

	// RequireToken, when set, rejects requests without the matching bearer.
	RequireToken string
	// FailuresRemaining makes the next N requests answer FailureStatus.
	FailuresRemaining int
	FailureStatus     int
}

// RequestInfo captures one request for test assertions.
type RequestInfo struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewMockAPIServer starts the server. Callers own Close.
func NewMockAPIServer() *MockAPIServer {
	s := &MockAPIServer{
		entities: make(map[string]map[string]map[string]interface{}),
		nextID:   1,
	}

	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/{entity}/", s.handleCollection).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/{entity}/{id}", s.handleItem).Methods(http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)

	s.Server = httptest.NewServer(r)
	return s
}

// Requests returns a copy of the captured request log.
func (s *MockAPIServer) Requests() []RequestInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RequestInfo, len(s.requests))
	copy(out, s.requests)
	return out
}

// Seed inserts an entity directly, bypassing the HTTP surface.
func (s *MockAPIServer) Seed(entityType, id string, entity map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entities[entityType] == nil {
		s.entities[entityType] = make(map[string]map[string]interface{})
	}
	s.entities[entityType][id] = entity
}

func (s *MockAPIServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, RequestInfo{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		failing := s.FailuresRemaining > 0
		if failing {
			s.FailuresRemaining--
		}
		status := s.FailureStatus
		token := s.RequireToken
		s.mu.Unlock()

		if failing {
			writeDetail(w, status, fmt.Sprintf("injected failure %d", status))
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *MockAPIServer) handleCollection(w http.ResponseWriter, r *http.Request) {
	entityType := mux.Vars(r)["entity"]
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		out := make([]map[string]interface{}, 0)
		for _, e := range s.entities[entityType] {
			out = append(out, e)
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "invalid request body")
			return
		}
		id := strconv.Itoa(s.nextID)
		s.nextID++
		payload["id"] = id
		if s.entities[entityType] == nil {
			s.entities[entityType] = make(map[string]map[string]interface{})
		}
		s.entities[entityType][id] = payload
		writeJSON(w, http.StatusCreated, payload)
	}
}

func (s *MockAPIServer) handleItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entityType, id := vars["entity"], vars["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	entity, ok := s.entities[entityType][id]
	if !ok {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("%s %s not found", entityType, id))
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, entity)

	case http.MethodPut, http.MethodPatch:
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "invalid request body")
			return
		}
		if r.Method == http.MethodPut {
			payload["id"] = id
			s.entities[entityType][id] = payload
		} else {
			for k, v := range payload {
				entity[k] = v
			}
			payload = entity
		}
		writeJSON(w, http.StatusOK, payload)

	case http.MethodDelete:
		delete(s.entities[entityType], id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
