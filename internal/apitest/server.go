// Package apitest runs an in-process fake of the Reistream REST API for tests
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/astroflix-site/reistream/internal/models"
)

// LoginShape selects the response body the fake emits for /login
type LoginShape int

const (
	LoginNested LoginShape = iota
	LoginDirect
	LoginTokenOnly
	LoginNoToken
)

type account struct {
	password string
	identity models.Identity
}

// Server is a fake backend. All fields are guarded by its mutex; use the methods.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	accounts   map[string]*account // by email
	tokens     map[string]string   // token -> email
	bookmarks  map[string][]models.Series
	catalog    []models.Series
	episodes   map[string]models.Episode
	failures   map[string]int
	hits       map[string]int
	authHeader map[string]string
	loginShape LoginShape
	nextToken  int
}

// New starts a fake backend that is closed with the test
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts:   make(map[string]*account),
		tokens:     make(map[string]string),
		bookmarks:  make(map[string][]models.Series),
		episodes:   make(map[string]models.Episode),
		failures:   make(map[string]int),
		hits:       make(map[string]int),
		authHeader: make(map[string]string),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// AddAccount registers a user the fake will accept
func (s *Server) AddAccount(email, password string, id models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id.Email = email
	s.accounts[email] = &account{password: password, identity: id}
}

// IssueToken returns a token that authenticates as email
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(email)
}

func (s *Server) issueLocked(email string) string {
	s.nextToken++
	token := "tok-" + strings.ReplaceAll(email, "@", "-") + "-" + strconv.Itoa(s.nextToken)
	s.tokens[token] = email
	return token
}

// SetBookmarks replaces the server-side bookmarks of a user
func (s *Server) SetBookmarks(email string, list []models.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookmarks[email] = append([]models.Series(nil), list...)
}

// BookmarkIDs returns the bookmarked ids of a user in order
func (s *Server) BookmarkIDs(email string) []models.ContentID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]models.ContentID, 0, len(s.bookmarks[email]))
	for _, b := range s.bookmarks[email] {
		ids = append(ids, b.ID)
	}
	return ids
}

// SetCatalog sets the series served by the catalog endpoints
func (s *Server) SetCatalog(list []models.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = append([]models.Series(nil), list...)
}

// AddEpisode makes an episode available at /episode/{id}
func (s *Server) AddEpisode(ep models.Episode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.episodes[string(ep.ID)] = ep
}

// SetLoginShape chooses the /login response body form
func (s *Server) SetLoginShape(shape LoginShape) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginShape = shape
}

// Fail makes every request to path answer with status until cleared with status 0
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, path)
		return
	}
	s.failures[path] = status
}

// Hits counts requests per path
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// LastAuthorization returns the Authorization header of the latest request to path
func (s *Server) LastAuthorization(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authHeader[path]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := r.URL.Path
	s.hits[path]++
	s.authHeader[path] = r.Header.Get("Authorization")
	if status, ok := s.failures[path]; ok {
		writeJSON(w, status, map[string]string{"message": "injected failure"})
		return
	}

	switch {
	case path == "/login" && r.Method == http.MethodPost:
		s.login(w, r)
	case path == "/register" && r.Method == http.MethodPost:
		s.register(w, r)
	case path == "/logout" && r.Method == http.MethodPost:
		if email, ok := s.caller(r); ok {
			for tok, e := range s.tokens {
				if e == email {
					delete(s.tokens, tok)
				}
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	case path == "/user-details" && r.Method == http.MethodGet:
		email, ok := s.caller(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": mongoUser(s.accounts[email].identity)})
	case path == "/update-user" && r.Method == http.MethodPut:
		s.updateUser(w, r)
	case path == "/bookmarks" && r.Method == http.MethodGet:
		email, ok := s.caller(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"bookmarks": s.bookmarks[email]})
	case (path == "/bookmark" || path == "/unbookmark") && r.Method == http.MethodPost:
		s.bookmark(w, r, path == "/bookmark")
	case path == "/all-series" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{"series": s.catalog})
	case path == "/search-series" && r.Method == http.MethodGet:
		s.search(w, r)
	case strings.HasPrefix(path, "/series/") && r.Method == http.MethodGet:
		id := strings.TrimPrefix(path, "/series/")
		for _, series := range s.catalog {
			if string(series.ID) == id {
				writeJSON(w, http.StatusOK, map[string]interface{}{"series": series})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Series not found"})
	case strings.HasPrefix(path, "/episode/") && r.Method == http.MethodGet:
		ep, ok := s.episodes[strings.TrimPrefix(path, "/episode/")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Episode not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"episode": ep})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no route"})
	}
}

func (s *Server) caller(r *http.Request) (string, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	email, ok := s.tokens[token]
	return email, ok
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}
	acct, ok := s.accounts[body.Email]
	if !ok || acct.password != body.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	user := mongoUser(acct.identity)
	switch s.loginShape {
	case LoginDirect:
		resp := map[string]interface{}{"token": s.issueLocked(body.Email)}
		for k, v := range user {
			resp[k] = v
		}
		writeJSON(w, http.StatusOK, resp)
	case LoginTokenOnly:
		writeJSON(w, http.StatusOK, map[string]interface{}{"token": s.issueLocked(body.Email)})
	case LoginNoToken:
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	default:
		writeJSON(w, http.StatusOK, map[string]interface{}{"token": s.issueLocked(body.Email), "user": user})
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}
	if _, exists := s.accounts[body.Email]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "User already exists"})
		return
	}
	s.accounts[body.Email] = &account{
		password: body.Password,
		identity: models.Identity{ID: "u-" + strconv.Itoa(len(s.accounts)+1), Username: body.Username, Email: body.Email, Role: "user"},
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	email, ok := s.caller(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
		return
	}
	var body models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}
	acct := s.accounts[email]
	acct.identity.Username = body.Username
	if body.Email != "" && body.Email != email {
		acct.identity.Email = body.Email
		delete(s.accounts, email)
		s.accounts[body.Email] = acct
		s.bookmarks[body.Email] = s.bookmarks[email]
		delete(s.bookmarks, email)
		for tok, e := range s.tokens {
			if e == email {
				s.tokens[tok] = body.Email
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": mongoUser(acct.identity)})
}

func (s *Server) bookmark(w http.ResponseWriter, r *http.Request, add bool) {
	email, ok := s.caller(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
		return
	}
	var body struct {
		ContentID models.ContentID `json:"contentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}
	current := s.bookmarks[email]
	if add {
		series := models.Series{ID: body.ContentID}
		for _, c := range s.catalog {
			if c.ID == body.ContentID {
				series = c
			}
		}
		s.bookmarks[email] = append(current, series)
	} else {
		kept := current[:0:0]
		for _, b := range current {
			if b.ID != body.ContentID {
				kept = append(kept, b)
			}
		}
		s.bookmarks[email] = kept
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("title"))
	var found []models.Series
	for _, series := range s.catalog {
		if strings.Contains(strings.ToLower(series.Title), q) {
			found = append(found, series)
		}
	}
	if len(found) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No series found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"series": found})
}

// mongoUser renders an identity the way the backend does, with `_id`
func mongoUser(id models.Identity) map[string]interface{} {
	return map[string]interface{}{
		"_id":      id.ID,
		"username": id.Username,
		"email":    id.Email,
		"role":     id.Role,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
