package api

import (
	"context"
	"net/http"

	"github.com/astroflix-site/reistream/internal/models"
)

type bookmarkRequest struct {
	ContentID models.ContentID `json:"contentId"`
}

// Bookmarks lists the authenticated user's bookmarked series
func (c *Client) Bookmarks(ctx context.Context) ([]models.Series, error) {
	var resp struct {
		Bookmarks []models.Series `json:"bookmarks"`
	}
	if err := c.do(ctx, http.MethodGet, "/bookmarks", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Bookmarks == nil {
		return []models.Series{}, nil
	}
	return resp.Bookmarks, nil
}

// AddBookmark bookmarks a series by id
func (c *Client) AddBookmark(ctx context.Context, id models.ContentID) error {
	return c.do(ctx, http.MethodPost, "/bookmark", bookmarkRequest{ContentID: id}, nil)
}

// RemoveBookmark drops a bookmark by id
func (c *Client) RemoveBookmark(ctx context.Context, id models.ContentID) error {
	return c.do(ctx, http.MethodPost, "/unbookmark", bookmarkRequest{ContentID: id}, nil)
}
