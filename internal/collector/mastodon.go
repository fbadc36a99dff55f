package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/or1un/mosaic/internal/model"
)

// DefaultMastodonInstance is used when the configuration names no instance.
const DefaultMastodonInstance = "mastodon.social"

// mastodonPageSize is the statuses page size. 40 is the API maximum for
// unauthenticated clients.
const mastodonPageSize = 40

// MastodonCollector collects public profile data from a Mastodon instance
// using the unauthenticated REST API: account lookup plus the statuses
// timeline, paginated by the Link response header.
//
// Mastodon is federated, so the collector only sees accounts registered
// on the configured instance.
type MastodonCollector struct {
	settings
	instance string
}

// NewMastodonCollector creates a Mastodon collector for the given
// instance host (for example "mastodon.social").
func NewMastodonCollector(instance string, opts ...Option) *MastodonCollector {
	if instance == "" {
		instance = DefaultMastodonInstance
	}
	c := &MastodonCollector{settings: defaultSettings(), instance: instance}
	for _, opt := range opts {
		opt(&c.settings)
	}
	if c.baseURL == "" {
		c.baseURL = "https://" + instance
	}
	return c
}

// Platform returns the platform this collector serves.
func (c *MastodonCollector) Platform() model.Platform {
	return model.PlatformMastodon
}

// mastodonAccount mirrors the fields we read from /api/v1/accounts/lookup.
type mastodonAccount struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Acct           string `json:"acct"`
	DisplayName    string `json:"display_name"`
	Note           string `json:"note"`
	URL            string `json:"url"`
	Avatar         string `json:"avatar"`
	CreatedAt      string `json:"created_at"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
	StatusesCount  int    `json:"statuses_count"`
	Fields         []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"fields"`
}

// mastodonStatus mirrors the fields we read from the statuses timeline.
type mastodonStatus struct {
	Content         string `json:"content"`
	URL             string `json:"url"`
	CreatedAt       string `json:"created_at"`
	FavouritesCount int    `json:"favourites_count"`
	RepliesCount    int    `json:"replies_count"`
	Tags            []struct {
		Name string `json:"name"`
	} `json:"tags"`
	Reblog *struct {
		Account struct {
			Acct string `json:"acct"`
		} `json:"account"`
	} `json:"reblog"`
}

// Collect looks up the account on the configured instance and pages
// through its public statuses up to the configured item limit.
func (c *MastodonCollector) Collect(ctx context.Context, username string) (*model.PlatformProfile, error) {
	var account mastodonAccount
	lookupURL := fmt.Sprintf("%s/api/v1/accounts/lookup?acct=%s", c.baseURL, url.QueryEscape(username))
	if err := c.getJSON(ctx, lookupURL, nil, &account); err != nil {
		return nil, fmt.Errorf("mastodon lookup on %s failed: %w", c.instance, err)
	}

	profile := &model.PlatformProfile{
		Platform:    model.PlatformMastodon,
		Handle:      account.Acct,
		DisplayName: account.DisplayName,
		Bio:         stripHTML(account.Note),
		AvatarURL:   account.Avatar,
		ProfileURL:  account.URL,
		CreatedAt:   parseTime(account.CreatedAt),
		Followers:   account.FollowersCount,
		Following:   account.FollowingCount,
		PostCount:   account.StatusesCount,
		Metadata:    map[string]string{"instance": c.instance},
	}
	// Profile metadata fields carry the links people want found:
	// website, other accounts, pronouns.
	for _, field := range account.Fields {
		value := stripHTML(field.Value)
		if profile.Website == "" && strings.HasPrefix(value, "http") {
			profile.Website = value
		}
		profile.Metadata["field:"+field.Name] = value
	}

	pageURL := fmt.Sprintf("%s/api/v1/accounts/%s/statuses?limit=%d",
		c.baseURL, url.PathEscape(account.ID), mastodonPageSize)
	for pageURL != "" && len(profile.Items) < c.maxItems {
		if err := c.pause(ctx); err != nil {
			return profile, err
		}

		var statuses []mastodonStatus
		next, err := c.getJSONNext(ctx, pageURL, nil, &statuses)
		if err != nil {
			// Partial result: keep what pagination already produced.
			return profile, fmt.Errorf("mastodon statuses fetch failed: %w", err)
		}
		if len(statuses) == 0 {
			break
		}

		for _, status := range statuses {
			if len(profile.Items) >= c.maxItems {
				break
			}
			item := model.Item{
				Kind:      model.ItemKindPost,
				Text:      stripHTML(status.Content),
				URL:       status.URL,
				CreatedAt: parseTime(status.CreatedAt),
				Score:     status.FavouritesCount,
				Replies:   status.RepliesCount,
			}
			for _, tag := range status.Tags {
				item.Tags = append(item.Tags, tag.Name)
			}
			if status.Reblog != nil {
				item.Title = "boost of @" + status.Reblog.Account.Acct
			}
			profile.Items = append(profile.Items, item)
		}
		pageURL = next
	}

	return profile, nil
}

// stripHTML renders HTML content as plain text. Mastodon serves status
// and bio bodies as sanitized HTML fragments.
func stripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	node, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && (n.Data == "br" || n.Data == "p") && sb.Len() > 0 {
			sb.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return strings.TrimSpace(sb.String())
}
