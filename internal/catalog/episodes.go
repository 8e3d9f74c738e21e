// Package catalog organizes a series' episodes the way the detail page browses them
package catalog

import (
	"sort"

	"github.com/astroflix-site/reistream/internal/models"
)

// EpisodesPerPage is the page size of the episode list
const EpisodesPerPage = 10

// Seasons returns the distinct season numbers, ascending
func Seasons(episodes []models.Episode) []int {
	seen := make(map[int]struct{}, 4)
	seasons := make([]int, 0, 4)
	for _, ep := range episodes {
		if _, ok := seen[ep.Season]; ok {
			continue
		}
		seen[ep.Season] = struct{}{}
		seasons = append(seasons, ep.Season)
	}
	sort.Ints(seasons)
	return seasons
}

// DefaultSeason is the first season present, or 1 when there are no episodes
func DefaultSeason(episodes []models.Episode) int {
	seasons := Seasons(episodes)
	if len(seasons) == 0 {
		return 1
	}
	return seasons[0]
}

// SeasonEpisodes returns the episodes of one season ordered by episode number
func SeasonEpisodes(episodes []models.Episode, season int) []models.Episode {
	out := make([]models.Episode, 0, len(episodes))
	for _, ep := range episodes {
		if ep.Season == season {
			out = append(out, ep)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EpisodeNumber < out[j].EpisodeNumber
	})
	return out
}

// TotalPages is at least 1 so an empty season still renders "page 1 of 1"
func TotalPages(count int) int {
	if count <= 0 {
		return 1
	}
	return (count + EpisodesPerPage - 1) / EpisodesPerPage
}

// Page returns the 1-based page of episodes, clamping out-of-range pages
func Page(episodes []models.Episode, page int) []models.Episode {
	total := TotalPages(len(episodes))
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	start := (page - 1) * EpisodesPerPage
	if start >= len(episodes) {
		return []models.Episode{}
	}
	end := start + EpisodesPerPage
	if end > len(episodes) {
		end = len(episodes)
	}
	return episodes[start:end]
}

// DefaultServer is the first playback server, or nil when the episode has none
func DefaultServer(ep *models.Episode) *models.Server {
	if ep == nil || len(ep.Servers) == 0 {
		return nil
	}
	return &ep.Servers[0]
}
