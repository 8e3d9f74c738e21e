package session

import "github.com/astroflix-site/reistream/internal/models"

type identitySource int

const (
	useNone identitySource = iota
	useFetched
	useInline
)

// loginDecisions maps what the credential exchange produced to the identity the session adopts.
// fetched is only meaningful when a token was issued, since the secondary fetch needs it.
var loginDecisions = []struct {
	token   bool
	inline  bool
	fetched bool
	use     identitySource
}{
	{token: true, inline: true, fetched: true, use: useFetched},
	{token: true, inline: false, fetched: true, use: useFetched},
	{token: true, inline: true, fetched: false, use: useInline},
	{token: true, inline: false, fetched: false, use: useNone},
	{token: false, inline: true, fetched: false, use: useInline},
	{token: false, inline: false, fetched: false, use: useNone},
}

func resolveLogin(resp *models.LoginResponse, fetched *models.Identity, fetchErr error) *models.Identity {
	inline := resp.Identity != nil && resp.Identity.ID != ""
	fetchedOK := resp.HasToken() && fetchErr == nil && fetched != nil

	for _, d := range loginDecisions {
		if d.token != resp.HasToken() || d.inline != inline || d.fetched != fetchedOK {
			continue
		}
		switch d.use {
		case useFetched:
			return fetched
		case useInline:
			return resp.Identity
		}
		return nil
	}
	return nil
}
