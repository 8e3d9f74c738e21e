// Package session holds the authenticated identity derived from the persisted access token
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/astroflix-site/reistream/internal/models"
	"github.com/astroflix-site/reistream/internal/storage"
	"github.com/astroflix-site/reistream/internal/util"
)

var (
	// ErrNoIdentity means a login succeeded at the backend but no identity could be established
	ErrNoIdentity = errors.New("login response carried no identity")
	// ErrNotAuthenticated is returned by operations that need a signed-in user
	ErrNotAuthenticated = errors.New("not signed in")
)

// Backend is the subset of the API the session needs
type Backend interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.Identity, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) error
}

// Transition describes an identity change. Initial is set exactly once, when startup hydration finishes.
type Transition struct {
	Prev    *models.Identity
	Next    *models.Identity
	Initial bool
}

// Listener observes transitions. It runs on the goroutine that caused the change, after the store's locks are released.
type Listener func(ctx context.Context, t Transition)

// Store is the session state. Build one per process and share it by pointer.
type Store struct {
	backend Backend
	kv      storage.Store

	mu           sync.RWMutex
	identity     *models.Identity
	initializing bool

	initOnce sync.Once
	ready    chan struct{}

	listenersMu sync.Mutex
	listeners   []Listener
}

// NewStore returns a store that is still initializing; call Init once at startup
func NewStore(backend Backend, kv storage.Store) *Store {
	return &Store{
		backend:      backend,
		kv:           kv,
		initializing: true,
		ready:        make(chan struct{}),
	}
}

// Subscribe registers a transition listener
func (s *Store) Subscribe(l Listener) {
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, l)
	s.listenersMu.Unlock()
}

// Identity returns a copy of the current identity, or nil when anonymous
func (s *Store) Identity() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// IsAuthenticated reports whether an identity is held
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// Initializing is true until Init has finished
func (s *Store) Initializing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initializing
}

// Ready is closed when Init finishes
func (s *Store) Ready() <-chan struct{} { return s.ready }

// Token implements api.TokenSource over the persisted access token
func (s *Store) Token(ctx context.Context) (string, error) {
	token, ok, err := s.kv.Get(ctx, storage.TokenKey)
	if err != nil || !ok {
		return "", err
	}
	return token, nil
}

// Init hydrates the identity from a persisted token. A token the backend no longer accepts is purged.
// Only the first call does anything.
func (s *Store) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		var identity *models.Identity
		token, err := s.Token(ctx)
		switch {
		case err != nil:
			util.Warn("Failed to read stored token", "err", err)
		case token != "":
			identity, err = s.backend.CurrentUser(ctx)
			if err != nil {
				util.Warn("Failed to load user, discarding stored token", "err", err)
				identity = nil
				if delErr := s.kv.Delete(ctx, storage.TokenKey); delErr != nil {
					util.Warn("Failed to delete stored token", "err", delErr)
				}
			}
		}

		s.mu.Lock()
		prev := s.identity
		s.identity = identity
		s.initializing = false
		s.mu.Unlock()
		close(s.ready)

		s.notify(ctx, Transition{Prev: prev, Next: copyIdentity(identity), Initial: true})
	})
}

// Login exchanges credentials and establishes the session. On failure the previous identity is kept.
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	var fetched *models.Identity
	var fetchErr error
	var previousToken string
	var hadToken bool
	if resp.HasToken() {
		previousToken, hadToken, err = s.kv.Get(ctx, storage.TokenKey)
		if err != nil {
			return fmt.Errorf("login: reading previous token: %w", err)
		}
		if err := s.kv.Set(ctx, storage.TokenKey, resp.Token); err != nil {
			return fmt.Errorf("login: persisting token: %w", err)
		}
		fetched, fetchErr = s.backend.CurrentUser(ctx)
		if fetchErr != nil {
			util.Debug("Secondary user fetch after login failed", "err", fetchErr, "shape", resp.Shape)
		}
	}

	identity := resolveLogin(resp, fetched, fetchErr)
	if identity == nil {
		if resp.HasToken() {
			s.restoreToken(ctx, previousToken, hadToken)
		}
		if fetchErr != nil {
			return fmt.Errorf("login: %w: %v", ErrNoIdentity, fetchErr)
		}
		return fmt.Errorf("login: %w", ErrNoIdentity)
	}

	s.setIdentity(ctx, identity)
	return nil
}

func (s *Store) restoreToken(ctx context.Context, token string, had bool) {
	var err error
	if had {
		err = s.kv.Set(ctx, storage.TokenKey, token)
	} else {
		err = s.kv.Delete(ctx, storage.TokenKey)
	}
	if err != nil {
		util.Warn("Failed to restore previous token", "err", err)
	}
}

// Register creates an account. It never signs in; callers prompt for Login afterwards.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) error {
	if err := s.backend.Register(ctx, req); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Logout tears the session down locally whether or not the backend acknowledges it.
// The returned error only reports a failure to delete the persisted token.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.backend.Logout(ctx); err != nil {
		util.Warnf("Logout API error: %v", err)
	}
	delErr := s.kv.Delete(ctx, storage.TokenKey)
	if delErr != nil {
		util.Errorf("Failed to delete stored token: %v", delErr)
	}
	s.setIdentity(ctx, nil)
	if delErr != nil {
		return fmt.Errorf("logout: %w", delErr)
	}
	return nil
}

// RefreshUser re-fetches the identity and replaces it wholesale. Failures leave the identity untouched.
// Listeners only hear about it when the principal changes: a refresh that returns the same id
// (a renamed user, say) updates Identity without a transition, so the watchlist is not reloaded.
// Call watchlist Refetch explicitly when a reload is wanted.
func (s *Store) RefreshUser(ctx context.Context) error {
	identity, err := s.backend.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("refresh user: %w", err)
	}
	s.setIdentity(ctx, identity)
	return nil
}

// UpdateProfile edits the username and email, then refreshes the identity
func (s *Store) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if err := ValidateProfile(update); err != nil {
		return err
	}
	if err := s.backend.UpdateProfile(ctx, update); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return s.RefreshUser(ctx)
}

func (s *Store) setIdentity(ctx context.Context, next *models.Identity) {
	s.mu.Lock()
	prev := s.identity
	s.identity = copyIdentity(next)
	s.mu.Unlock()

	if models.SameIdentity(prev, next) {
		return
	}
	s.notify(ctx, Transition{Prev: prev, Next: copyIdentity(next)})
}

func (s *Store) notify(ctx context.Context, t Transition) {
	s.listenersMu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(ctx, t)
	}
}

func copyIdentity(id *models.Identity) *models.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
