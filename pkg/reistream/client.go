// Package reistream wires the API client, the device store, the session and the watchlist into one
// application context. Build a Client once per process and pass it to whatever renders the screens.
package reistream

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/astroflix-site/reistream/internal/api"
	"github.com/astroflix-site/reistream/internal/storage"
	"github.com/astroflix-site/reistream/internal/session"
	"github.com/astroflix-site/reistream/internal/util"
	"github.com/astroflix-site/reistream/internal/watchlist"
)

// Options configures New. Zero values fall back to production defaults.
type Options struct {
	// APIURL is the backend base URL
	APIURL string
	// DatabasePath is the sqlite file for the device store; ignored when Store is set
	DatabasePath string
	// Store overrides the device store. The caller keeps ownership and closes it.
	Store storage.Store
	// HTTPClient overrides the shared pooled client
	HTTPClient *http.Client
}

// Client is the application context shared by every screen
type Client struct {
	api        *api.Client
	kv         storage.Store
	ownsKV     bool
	persistent bool
	session    *session.Store
	watchlist  *watchlist.Store
}

// New builds the context. The watchlist is subscribed to the session before anything can transition,
// so the first reload is driven by Start.
func New(opts Options) (*Client, error) {
	kv := opts.Store
	persistent, owns := true, false
	if kv == nil {
		owns = true
		var err error
		kv, persistent, err = storage.Open(opts.DatabasePath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open device store")
		}
		if !persistent {
			util.Warn("Built without cgo: session and watchlist will not survive a restart")
		}
	}

	c := &Client{kv: kv, ownsKV: owns, persistent: persistent}
	c.api = api.NewClient(opts.APIURL, opts.HTTPClient, api.TokenFunc(func(ctx context.Context) (string, error) {
		return c.session.Token(ctx)
	}))
	c.session = session.NewStore(c.api, kv)
	c.watchlist = watchlist.NewStore(c.api, kv, c.session)
	c.session.Subscribe(c.watchlist.OnSessionChange)

	return c, nil
}

// Start hydrates the session from the stored token; the watchlist follows with its first load
func (c *Client) Start(ctx context.Context) {
	c.session.Init(ctx)
}

// API exposes the catalog endpoints
func (c *Client) API() *api.Client { return c.api }

func (c *Client) Session() *session.Store { return c.session }

func (c *Client) Watchlist() *watchlist.Store { return c.watchlist }

// Persistent is false when the in-memory store is in use
func (c *Client) Persistent() bool { return c.persistent }

// Close releases the device store if New opened it
func (c *Client) Close() error {
	if !c.ownsKV {
		return nil
	}
	if err := c.kv.Close(); err != nil {
		return errors.Wrap(err, "failed to close device store")
	}
	return nil
}
