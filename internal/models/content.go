// Package models contains the catalog and account data structures exchanged with the Reistream API
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ContentID identifies a series or an episode.
// The backend emits ids either as JSON strings or as JSON numbers; both decode to the same string form.
type ContentID string

// UnmarshalJSON accepts a string, a number or null
func (id *ContentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ContentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("content id must be a string or a number: %w", err)
	}
	*id = ContentID(canonicalNumber(n.String()))
	return nil
}

// canonicalNumber renders a JSON number the way the backend's ids print, so 42.0 and 4.2e1 both become "42"
func canonicalNumber(lit string) string {
	if !strings.ContainsAny(lit, ".eE") {
		return lit
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsInf(f, 0) || math.Abs(f) >= 1e21 {
		return lit
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MarshalJSON keeps numeric ids numeric so a snapshot round-trips to the shape the backend sent.
func (id ContentID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ContentID) String() string { return string(id) }

// Server is a third-party playback location for an episode
type Server struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Episode represents a single episode of a series
type Episode struct {
	ID            ContentID `json:"_id"`
	Title         string    `json:"title"`
	EpisodeNumber int       `json:"episodeNumber"`
	Season        int       `json:"season"`
	SeriesID      ContentID `json:"seriesId,omitempty"`
	URL           string    `json:"url"`
	Servers       []Server  `json:"servers"`
	CreatedAt     string    `json:"createdAt,omitempty"`
}

// Series is a catalog entry. Watchlist snapshots store the full record so they render without a network call.
type Series struct {
	ID            ContentID `json:"_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"imageURL"`
	Backdrop      string    `json:"backdrop"`
	Genre         string    `json:"genre"`
	ReleaseDate   string    `json:"releaseDate"`
	Status        string    `json:"status"`
	Rating        float64   `json:"rating"`
	TotalEpisodes int       `json:"totalEpisodes"`
	CreatedAt     string    `json:"createdAt,omitempty"`
	Episodes      []Episode `json:"episodes,omitempty"`
}

// GetDisplayName returns the title with the release year when known
func (s *Series) GetDisplayName() string {
	if len(s.ReleaseDate) >= 4 {
		return s.Title + " (" + s.ReleaseDate[:4] + ")"
	}
	return s.Title
}

// GetRatingDisplay returns a formatted rating string
func (s *Series) GetRatingDisplay() string {
	if s.Rating > 0 {
		return fmt.Sprintf("★ %.1f", s.Rating)
	}
	return ""
}

// GetStatusDisplay falls back to "Ongoing" the way the catalog pages do
func (s *Series) GetStatusDisplay() string {
	if s.Status == "" {
		return "Ongoing"
	}
	return s.Status
}

// SortSeriesByTitle sorts in place and returns the same slice
func SortSeriesByTitle(list []Series) []Series {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Title < list[j].Title
	})
	return list
}
