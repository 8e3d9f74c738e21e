package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/astroflix-site/reistream/internal/models"
)

// ErrNotFound is returned by detail lookups when the backend has no such content
var ErrNotFound = errors.New("content not found")

// AllSeries lists the whole catalog
func (c *Client) AllSeries(ctx context.Context) ([]models.Series, error) {
	var resp struct {
		Series []models.Series `json:"series"`
	}
	if err := c.do(ctx, http.MethodGet, "/all-series", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Series == nil {
		return []models.Series{}, nil
	}
	return resp.Series, nil
}

// SearchSeries searches titles. The backend answers 404 for "no matches", which maps to an empty result.
func (c *Client) SearchSeries(ctx context.Context, title string) ([]models.Series, error) {
	var resp struct {
		Series []models.Series `json:"series"`
	}
	err := c.do(ctx, http.MethodGet, "/search-series?title="+url.QueryEscape(title), nil, &resp)
	if IsNotFound(err) {
		return []models.Series{}, nil
	}
	if err != nil {
		return nil, err
	}
	if resp.Series == nil {
		return []models.Series{}, nil
	}
	return resp.Series, nil
}

// SeriesDetails fetches one series with its episodes
func (c *Client) SeriesDetails(ctx context.Context, id models.ContentID) (*models.Series, error) {
	var resp struct {
		Series *models.Series `json:"series"`
	}
	err := c.do(ctx, http.MethodGet, "/series/"+escapeID(string(id)), nil, &resp)
	if IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if resp.Series == nil {
		return nil, ErrNotFound
	}
	return resp.Series, nil
}

// EpisodeDetails fetches one episode with its playback servers
func (c *Client) EpisodeDetails(ctx context.Context, id models.ContentID) (*models.Episode, error) {
	var resp struct {
		Episode *models.Episode `json:"episode"`
	}
	err := c.do(ctx, http.MethodGet, "/episode/"+escapeID(string(id)), nil, &resp)
	if IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if resp.Episode == nil {
		return nil, ErrNotFound
	}
	return resp.Episode, nil
}
