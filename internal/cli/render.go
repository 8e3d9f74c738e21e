package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/astroflix-site/reistream/internal/catalog"
	"github.com/astroflix-site/reistream/internal/models"
	"github.com/astroflix-site/reistream/internal/util"
)

const watchlistMark = "♥"

func renderSeriesList(w io.Writer, list []models.Series, inWatchlist func(models.ContentID) bool) {
	for i := range list {
		s := &list[i]
		mark := " "
		if inWatchlist != nil && inWatchlist(s.ID) {
			mark = util.AccentStyle.Render(watchlistMark)
		}
		line := fmt.Sprintf("%s %s %s", mark, util.HeaderStyle.Render(s.GetDisplayName()), util.MutedStyle.Render("["+s.ID.String()+"]"))
		if rating := s.GetRatingDisplay(); rating != "" {
			line += "  " + rating
		}
		if s.Genre != "" {
			line += "  " + util.MutedStyle.Render(s.Genre)
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

// renderSeries prints the detail page with one page of one season's episodes
func renderSeries(w io.Writer, s *models.Series, season, page int, inWatchlist bool) {
	_, _ = fmt.Fprintln(w, util.TitleStyle.Render(s.GetDisplayName()))

	meta := []string{s.GetStatusDisplay()}
	if s.Genre != "" {
		meta = append(meta, s.Genre)
	}
	if rating := s.GetRatingDisplay(); rating != "" {
		meta = append(meta, rating)
	}
	if s.TotalEpisodes > 0 {
		meta = append(meta, fmt.Sprintf("%d episodes", s.TotalEpisodes))
	}
	if inWatchlist {
		meta = append(meta, watchlistMark+" in watchlist")
	}
	_, _ = fmt.Fprintln(w, util.MutedStyle.Render(strings.Join(meta, " · ")))

	if s.Description != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, s.Description)
	}

	seasons := catalog.Seasons(s.Episodes)
	if len(seasons) == 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, util.MutedStyle.Render("No episodes yet"))
		return
	}

	labels := make([]string, len(seasons))
	for i, n := range seasons {
		labels[i] = strconv.Itoa(n)
		if n == season {
			labels[i] = util.AccentStyle.Render(labels[i])
		}
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%s %s\n", util.HeaderStyle.Render("Seasons:"), strings.Join(labels, " "))

	episodes := catalog.SeasonEpisodes(s.Episodes, season)
	total := catalog.TotalPages(len(episodes))
	_, _ = fmt.Fprintln(w, util.MutedStyle.Render(fmt.Sprintf("Season %d · page %d of %d", season, page, total)))
	for _, ep := range catalog.Page(episodes, page) {
		_, _ = fmt.Fprintf(w, "  E%02d %s %s\n", ep.EpisodeNumber, ep.Title, util.MutedStyle.Render("["+ep.ID.String()+"]"))
	}
}

func renderEpisode(w io.Writer, ep *models.Episode) {
	_, _ = fmt.Fprintln(w, util.TitleStyle.Render(fmt.Sprintf("S%d E%02d %s", ep.Season, ep.EpisodeNumber, ep.Title)))
	if len(ep.Servers) == 0 {
		_, _ = fmt.Fprintln(w, util.MutedStyle.Render("No servers available"))
		return
	}
	_, _ = fmt.Fprintln(w, util.HeaderStyle.Render("Servers:"))
	for i, srv := range ep.Servers {
		suffix := ""
		if i == 0 {
			suffix = " " + util.AccentStyle.Render("(default)")
		}
		_, _ = fmt.Fprintf(w, "  %s%s\n", srv.Name, suffix)
	}
}

func renderIdentity(w io.Writer, id *models.Identity) {
	if id == nil {
		_, _ = fmt.Fprintln(w, util.MutedStyle.Render("Not signed in. Your watchlist is kept on this device."))
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", util.HeaderStyle.Render("Signed in as"), id.Username)
	if id.Email != "" {
		_, _ = fmt.Fprintf(w, "  email: %s\n", id.Email)
	}
	if id.Role != "" {
		_, _ = fmt.Fprintf(w, "  role:  %s\n", id.Role)
	}
}
