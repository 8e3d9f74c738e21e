package watchlist_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astroflix-site/reistream/internal/api"
	"github.com/astroflix-site/reistream/internal/apitest"
	"github.com/astroflix-site/reistream/internal/models"
	"github.com/astroflix-site/reistream/internal/session"
	"github.com/astroflix-site/reistream/internal/storage"
	"github.com/astroflix-site/reistream/internal/watchlist"
)

const (
	email    = "kaori@example.com"
	password = "hunter22"
)

var (
	frieren  = models.Series{ID: "1", Title: "Frieren", Genre: "Fantasy", Rating: 9.1}
	mushishi = models.Series{ID: "42", Title: "Mushishi", Genre: "Mystery", Rating: 8.7}
	monster  = models.Series{ID: "7", Title: "Monster", Genre: "Thriller"}
)

// countingKV counts reads of the local watchlist blob
type countingKV struct {
	storage.Store
	watchlistReads atomic.Int32
}

func (c *countingKV) Get(ctx context.Context, key string) (string, bool, error) {
	if key == storage.WatchlistKey {
		c.watchlistReads.Add(1)
	}
	return c.Store.Get(ctx, key)
}

type fixture struct {
	srv     *apitest.Server
	kv      *countingKV
	session *session.Store
	list    *watchlist.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.New(t)
	srv.AddAccount(email, password, models.Identity{ID: "u1", Username: "kaori"})
	srv.SetCatalog([]models.Series{frieren, mushishi, monster})

	f := &fixture{srv: srv, kv: &countingKV{Store: storage.NewMemoryStore()}}
	client := api.NewClient(srv.URL, srv.Client(), api.TokenFunc(func(ctx context.Context) (string, error) {
		return f.session.Token(ctx)
	}))
	f.session = session.NewStore(client, f.kv)
	f.list = watchlist.NewStore(client, f.kv, f.session)
	f.session.Subscribe(f.list.OnSessionChange)
	return f
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	f.session.Init(context.Background())
	require.False(t, f.list.Loading())
}

func (f *fixture) localBlob(t *testing.T) []models.Series {
	t.Helper()
	blob, ok, err := f.kv.Store.Get(context.Background(), storage.WatchlistKey)
	require.NoError(t, err)
	require.True(t, ok)
	var entries []models.Series
	require.NoError(t, json.Unmarshal([]byte(blob), &entries))
	return entries
}

func ids(list []models.Series) []models.ContentID {
	out := make([]models.ContentID, 0, len(list))
	for _, s := range list {
		out = append(out, s.ID)
	}
	return out
}

func TestNewStoreIsLoadingUntilFirstReload(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.list.Loading())
	assert.Empty(t, f.list.Entries())

	f.start(t)
	assert.False(t, f.list.Loading())
	assert.Equal(t, int32(1), f.kv.watchlistReads.Load())
}

func TestAnonymousAddPersistsAndRoundTrips(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ctx := context.Background()

	require.NoError(t, f.list.Add(ctx, frieren))
	require.NoError(t, f.list.Add(ctx, mushishi))

	assert.Equal(t, []models.ContentID{"1", "42"}, ids(f.list.Entries()))
	assert.True(t, f.list.IsInWatchlist("42"))
	assert.Zero(t, f.srv.Hits("/bookmark"), "anonymous adds never touch the API")

	before := f.list.Entries()
	f.list.Refetch(ctx)
	assert.Equal(t, before, f.list.Entries(), "the persisted blob reloads to the same sequence")
	assert.Equal(t, before, f.localBlob(t))
}

func TestAnonymousAddAllowsDuplicates(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ctx := context.Background()

	require.NoError(t, f.list.Add(ctx, mushishi))
	require.NoError(t, f.list.Add(ctx, mushishi))
	assert.Len(t, f.list.Entries(), 2)

	require.NoError(t, f.list.Remove(ctx, "42"))
	assert.Empty(t, f.list.Entries(), "remove drops every matching entry")
	assert.False(t, f.list.IsInWatchlist("42"))
	assert.Empty(t, f.localBlob(t))
}

func TestMalformedLocalBlobIsEmpty(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.kv.Set(context.Background(), storage.WatchlistKey, "{not json"))

	f.start(t)
	assert.Empty(t, f.list.Entries())
	assert.False(t, f.list.Loading())

	require.NoError(t, f.list.Add(context.Background(), monster))
	assert.Equal(t, []models.ContentID{"7"}, ids(f.localBlob(t)))
}

func TestLocalBlobWithNumericIDs(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.kv.Set(context.Background(), storage.WatchlistKey, `[{"_id":42,"title":"Mushishi"},{"_id":"abc","title":"Other"}]`))

	f.start(t)
	assert.True(t, f.list.IsInWatchlist("42"))
	assert.True(t, f.list.IsInWatchlist("abc"))
	assert.False(t, f.list.IsInWatchlist("4"))
}

func TestAuthenticatedAddAndRemoveGoRemoteFirst(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	ctx := context.Background()
	require.NoError(t, f.session.Login(ctx, email, password))

	require.NoError(t, f.list.Add(ctx, mushishi))
	assert.True(t, f.list.IsInWatchlist("42"))
	assert.Equal(t, []models.ContentID{"42"}, f.srv.BookmarkIDs(email))

	require.NoError(t, f.list.Remove(ctx, "42"))
	assert.False(t, f.list.IsInWatchlist("42"))
	assert.Empty(t, f.srv.BookmarkIDs(email))

	_, ok, err := f.kv.Store.Get(ctx, storage.WatchlistKey)
	require.NoError(t, err)
	assert.False(t, ok, "signed-in mutations never write the local blob")
}

func TestAuthenticatedAddFailureLeavesEntriesUnchanged(t *testing.T) {
	f := newFixture(t)
	f.srv.SetBookmarks(email, []models.Series{frieren})
	f.start(t)
	ctx := context.Background()
	require.NoError(t, f.session.Login(ctx, email, password))
	before := f.list.Entries()

	f.srv.Fail("/bookmark", http.StatusInternalServerError)
	err := f.list.Add(ctx, mushishi)

	require.Error(t, err)
	assert.True(t, api.IsStatus(err, http.StatusInternalServerError))
	assert.Equal(t, before, f.list.Entries())
	assert.False(t, f.list.IsInWatchlist("42"))
}

func TestAuthenticatedRemoveFailureLeavesEntriesUnchanged(t *testing.T) {
	f := newFixture(t)
	f.srv.SetBookmarks(email, []models.Series{frieren})
	f.start(t)
	ctx := context.Background()
	require.NoError(t, f.session.Login(ctx, email, password))

	f.srv.Fail("/unbookmark", http.StatusBadGateway)
	require.Error(t, f.list.Remove(ctx, "1"))
	assert.True(t, f.list.IsInWatchlist("1"))
}

func TestTransitionsReloadFromTheRightSource(t *testing.T) {
	f := newFixture(t)
	f.srv.SetBookmarks(email, []models.Series{frieren})
	f.start(t)
	ctx := context.Background()
	assert.Equal(t, int32(1), f.kv.watchlistReads.Load())
	assert.Zero(t, f.srv.Hits("/bookmarks"))

	require.NoError(t, f.session.Login(ctx, email, password))
	assert.Equal(t, 1, f.srv.Hits("/bookmarks"), "absent to present reloads once from the API")
	assert.Equal(t, int32(1), f.kv.watchlistReads.Load())
	assert.Equal(t, []models.ContentID{"1"}, ids(f.list.Entries()))

	require.NoError(t, f.session.RefreshUser(ctx))
	assert.Equal(t, 1, f.srv.Hits("/bookmarks"), "refreshing the same principal is not a transition")

	require.NoError(t, f.session.Logout(ctx))
	assert.Equal(t, 1, f.srv.Hits("/bookmarks"))
	assert.Equal(t, int32(2), f.kv.watchlistReads.Load(), "present to absent reloads once from the device")
	assert.Empty(t, f.list.Entries())
}

func TestLoginReplacesAnonymousEntriesWithServerTruth(t *testing.T) {
	f := newFixture(t)
	f.srv.SetBookmarks(email, []models.Series{frieren})
	f.start(t)
	ctx := context.Background()

	require.NoError(t, f.list.Add(ctx, mushishi))
	assert.True(t, f.list.IsInWatchlist("42"))

	require.NoError(t, f.session.Login(ctx, email, password))
	assert.False(t, f.list.IsInWatchlist("42"), "anonymous entries are not merged into the account")
	assert.True(t, f.list.IsInWatchlist("1"))

	require.NoError(t, f.session.Logout(ctx))
	assert.True(t, f.list.IsInWatchlist("42"), "the device list is still there after logout")
	assert.False(t, f.list.IsInWatchlist("1"))
}

func TestRemoteReloadFailureDegradesToEmpty(t *testing.T) {
	f := newFixture(t)
	f.srv.SetBookmarks(email, []models.Series{frieren})
	f.srv.Fail("/bookmarks", http.StatusInternalServerError)
	f.start(t)

	require.NoError(t, f.session.Login(context.Background(), email, password))
	assert.Empty(t, f.list.Entries())
	assert.False(t, f.list.Loading())

	f.srv.Fail("/bookmarks", 0)
	f.list.Refetch(context.Background())
	assert.True(t, f.list.IsInWatchlist("1"))
}

func TestEntriesIsACopy(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	require.NoError(t, f.list.Add(context.Background(), frieren))

	got := f.list.Entries()
	got[0].Title = "mutated"
	assert.Equal(t, "Frieren", f.list.Entries()[0].Title)
}
