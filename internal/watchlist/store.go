// Package watchlist keeps the bookmarked series of the current identity.
// Anonymous sessions persist full series snapshots on the device; signed-in sessions use the API as the source of truth.
package watchlist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/astroflix-site/reistream/internal/models"
	"github.com/astroflix-site/reistream/internal/session"
	"github.com/astroflix-site/reistream/internal/storage"
	"github.com/astroflix-site/reistream/internal/util"
)

// Backend is the bookmark subset of the API
type Backend interface {
	Bookmarks(ctx context.Context) ([]models.Series, error)
	AddBookmark(ctx context.Context, id models.ContentID) error
	RemoveBookmark(ctx context.Context, id models.ContentID) error
}

// IdentitySource reports who is signed in; nil means anonymous
type IdentitySource interface {
	Identity() *models.Identity
}

// Store holds the loaded entries. Mutations and reloads are serialized; reads never block on the network.
type Store struct {
	backend  Backend
	kv       storage.Store
	identity IdentitySource

	// opMu serializes reloads and mutations so the persisted blob never loses an update
	opMu sync.Mutex
	// latest is the sequence number of the most recently requested reload
	latest atomic.Uint64

	mu      sync.RWMutex
	entries []models.Series
	loading bool
}

// NewStore returns an empty store marked as loading until its first reload
func NewStore(backend Backend, kv storage.Store, identity IdentitySource) *Store {
	return &Store{
		backend:  backend,
		kv:       kv,
		identity: identity,
		entries:  []models.Series{},
		loading:  true,
	}
}

// OnSessionChange is a session.Listener: every identity transition reloads from the mode's source
func (s *Store) OnSessionChange(ctx context.Context, t session.Transition) {
	util.Debug("Identity transition, reloading watchlist", "initial", t.Initial, "signed_in", t.Next != nil)
	s.Reload(ctx)
}

// Refetch re-runs the reload protocol without an identity transition
func (s *Store) Refetch(ctx context.Context) {
	s.Reload(ctx)
}

// Reload discards the in-memory entries and repopulates them. Failures degrade to an empty list.
// When reloads overlap, only the most recently requested one is applied.
func (s *Store) Reload(ctx context.Context) {
	seq := s.latest.Add(1)

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if seq != s.latest.Load() {
		return
	}

	s.mu.Lock()
	s.loading = true
	s.entries = []models.Series{}
	s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		util.Warn("Failed to load watchlist", "err", err)
		entries = []models.Series{}
	}

	if seq != s.latest.Load() {
		util.Debugf("Discarding stale watchlist reload #%d", seq)
		return
	}

	s.mu.Lock()
	s.entries = entries
	s.loading = false
	s.mu.Unlock()
}

func (s *Store) load(ctx context.Context) ([]models.Series, error) {
	if s.identity.Identity() != nil {
		remote, err := s.backend.Bookmarks(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing bookmarks: %w", err)
		}
		return remote, nil
	}
	return s.loadLocal(ctx)
}

func (s *Store) loadLocal(ctx context.Context) ([]models.Series, error) {
	blob, ok, err := s.kv.Get(ctx, storage.WatchlistKey)
	if err != nil {
		return nil, fmt.Errorf("reading local watchlist: %w", err)
	}
	if !ok || blob == "" {
		return []models.Series{}, nil
	}
	var entries []models.Series
	if err := json.Unmarshal([]byte(blob), &entries); err != nil {
		util.Warn("Ignoring malformed local watchlist", "err", err)
		return []models.Series{}, nil
	}
	if entries == nil {
		entries = []models.Series{}
	}
	return entries, nil
}

// Add appends a series. When signed in the remote add must succeed first; otherwise the
// full list is persisted locally. Adding a series already present appends a second entry.
func (s *Store) Add(ctx context.Context, series models.Series) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	signedIn := s.identity.Identity() != nil
	if signedIn {
		if err := s.backend.AddBookmark(ctx, series.ID); err != nil {
			return fmt.Errorf("add to watchlist: %w", err)
		}
	}

	s.mu.Lock()
	updated := make([]models.Series, 0, len(s.entries)+1)
	updated = append(updated, s.entries...)
	updated = append(updated, series)
	s.entries = updated
	s.mu.Unlock()

	if signedIn {
		return nil
	}
	return s.persist(ctx, updated)
}

// Remove drops every entry whose id equals id, mirroring Add's remote-first rule
func (s *Store) Remove(ctx context.Context, id models.ContentID) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	signedIn := s.identity.Identity() != nil
	if signedIn {
		if err := s.backend.RemoveBookmark(ctx, id); err != nil {
			return fmt.Errorf("remove from watchlist: %w", err)
		}
	}

	s.mu.Lock()
	updated := make([]models.Series, 0, len(s.entries))
	for _, e := range s.entries {
		if e.ID != id {
			updated = append(updated, e)
		}
	}
	s.entries = updated
	s.mu.Unlock()

	if signedIn {
		return nil
	}
	return s.persist(ctx, updated)
}

func (s *Store) persist(ctx context.Context, entries []models.Series) error {
	blob, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding local watchlist: %w", err)
	}
	if err := s.kv.Set(ctx, storage.WatchlistKey, string(blob)); err != nil {
		return fmt.Errorf("saving local watchlist: %w", err)
	}
	return nil
}

// IsInWatchlist reports membership by id
func (s *Store) IsInWatchlist(id models.ContentID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Entries returns a copy of the loaded entries in order
func (s *Store) Entries() []models.Series {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Series(nil), s.entries...)
}

// Loading is true while a reload is in flight (and before the first one)
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}
