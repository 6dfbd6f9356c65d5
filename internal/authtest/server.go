// Package authtest provides an in-process stand-in for the authentication
// service, for tests that must not depend on a running deployment.
package authtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Routes served by the fake, and the role it assigns to new users.
const (
	RegisterPath = "/api/auth/register"
	LoginPath    = "/api/auth/login"
	DefaultRole  = "USER"
)

type user struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	password string
}

type override struct {
	status int
	body   string
}

// Server is a fake auth service backed by httptest.Server.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	users     map[string]user
	nextID    int64
	overrides map[string]override
	requests  []string
}

// NewServer starts a fake service. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		users:     make(map[string]user),
		overrides: make(map[string]override),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(RegisterPath, s.handleRegister)
	mux.HandleFunc(LoginPath, s.handleLogin)
	s.Server = httptest.NewServer(s.track(mux))
	return s
}

// Override makes path answer with status and body verbatim.
func (s *Server) Override(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[path] = override{status: status, body: body}
}

// Requests returns "METHOD path" for every request served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		o, ok := s.overrides[r.URL.Path]
		s.mu.Unlock()

		if ok {
			if o.body != "" {
				w.Header().Set("Content-Type", "application/json")
			}
			w.WriteHeader(o.status)
			_, _ = w.Write([]byte(o.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[in.Username]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	s.nextID++
	u := user{ID: s.nextID, Username: in.Username, Email: in.Email, Role: DefaultRole, password: in.Password}
	s.users[in.Username] = u
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	u, ok := s.users[in.Username]
	s.mu.Unlock()
	if !ok || u.password != in.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": uuid.NewString(),
		"user":  u,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
