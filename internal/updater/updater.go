// Package updater checks GitHub for a newer Reistream release
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/pkg/browser"
	"github.com/pkg/errors"

	"github.com/astroflix-site/reistream/internal/util"
	"github.com/astroflix-site/reistream/internal/version"
)

const (
	GitHubOwner = "astroflix-site"
	GitHubRepo  = "reistream"
	// DefaultReleasesURL is the GitHub endpoint for the newest published release
	DefaultReleasesURL = "https://api.github.com/repos/" + GitHubOwner + "/" + GitHubRepo + "/releases/latest"
)

// Release represents a GitHub release
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// Version is the tag without its leading "v"
func (r *Release) Version() string {
	return strings.TrimPrefix(r.TagName, "v")
}

// Check fetches the latest release and reports whether it is newer than current
func Check(ctx context.Context, client *http.Client, releasesURL, current string) (*Release, bool, error) {
	if client == nil {
		client = util.GetSharedClient()
	}
	if releasesURL == "" {
		releasesURL = DefaultReleasesURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releasesURL, nil)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to build release request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to fetch latest release")
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			util.Debug("Failed to close response body:", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, false, errors.Wrap(err, "failed to decode release data")
	}

	return &release, isVersionNewer(release.Version(), strings.TrimPrefix(current, "v")), nil
}

// CheckQuietly logs a notice when a newer release exists and never fails
func CheckQuietly(ctx context.Context, client *http.Client, releasesURL string) {
	release, hasUpdate, err := Check(ctx, client, releasesURL, version.Version)
	if err != nil {
		util.Debugf("Failed to check for updates: %v", err)
		return
	}

	if hasUpdate {
		util.Info(fmt.Sprintf("New version available: %s (current: %s)", release.TagName, version.Version))
		util.Info("Run `reistream update` for details")
	}
}

// PromptForRelease shows the release notes and asks whether to open the release page
func PromptForRelease(release *Release) (bool, error) {
	var open bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Update Available").
				Description(fmt.Sprintf("A new version of Reistream is available!\n\n"+
					"Current version: %s\n"+
					"Latest version: %s\n\n"+
					"Release notes:\n%s",
					version.Version,
					release.TagName,
					truncateText(release.Body, 300))),

			huh.NewConfirm().
				Title("Open the release page?").
				Value(&open),
		),
	)

	if err := form.Run(); err != nil {
		return false, errors.Wrap(err, "failed to show update prompt")
	}

	return open, nil
}

// OpenRelease opens the release page in the default browser
func OpenRelease(release *Release) error {
	if release == nil || release.HTMLURL == "" {
		return errors.New("release has no page to open")
	}
	return browser.OpenURL(release.HTMLURL)
}

// isVersionNewer compares dotted versions part by part. Missing or non-numeric parts
// (such as "0-beta") count as zero.
func isVersionNewer(latest, current string) bool {
	latestParts := strings.Split(latest, ".")
	currentParts := strings.Split(current, ".")

	maxLen := len(latestParts)
	if len(currentParts) > maxLen {
		maxLen = len(currentParts)
	}

	for len(latestParts) < maxLen {
		latestParts = append(latestParts, "0")
	}
	for len(currentParts) < maxLen {
		currentParts = append(currentParts, "0")
	}

	for i := 0; i < maxLen; i++ {
		latestNum := versionPart(latestParts[i])
		currentNum := versionPart(currentParts[i])

		if latestNum > currentNum {
			return true
		} else if latestNum < currentNum {
			return false
		}
	}

	return false
}

func versionPart(part string) int {
	n, err := strconv.Atoi(strings.TrimSpace(part))
	if err != nil {
		return 0
	}
	return n
}

func truncateText(text string, maxLen int) string {
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}
	return string(r[:maxLen]) + "..."
}
