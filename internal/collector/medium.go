package collector

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/or1un/mosaic/internal/model"
)

// defaultMediumBaseURL serves per-author RSS feeds at /feed/@username.
const defaultMediumBaseURL = "https://medium.com"

// mediumExcerptLimit caps stored article excerpts at this many runes.
const mediumExcerptLimit = 500

// MediumCollector collects public articles from Medium via the author
// RSS feed. Medium has no public JSON API, but the feed carries the ten
// most recent stories with full metadata.
type MediumCollector struct {
	settings
}

// NewMediumCollector creates a Medium collector.
func NewMediumCollector(opts ...Option) *MediumCollector {
	c := &MediumCollector{settings: defaultSettings()}
	for _, opt := range opts {
		opt(&c.settings)
	}
	if c.baseURL == "" {
		c.baseURL = defaultMediumBaseURL
	}
	return c
}

// Platform returns the platform this collector serves.
func (c *MediumCollector) Platform() model.Platform {
	return model.PlatformMedium
}

// mediumFeed mirrors the RSS elements we read from the author feed.
type mediumFeed struct {
	Channel struct {
		Title       string `xml:"title"`
		Link        string `xml:"link"`
		Description string `xml:"description"`
		Items       []struct {
			Title      string   `xml:"title"`
			Link       string   `xml:"link"`
			PubDate    string   `xml:"pubDate"`
			Creator    string   `xml:"creator"`
			Categories []string `xml:"category"`
			Encoded    string   `xml:"encoded"`
		} `xml:"item"`
	} `xml:"channel"`
}

// Collect fetches and parses the author RSS feed.
func (c *MediumCollector) Collect(ctx context.Context, username string) (*model.PlatformProfile, error) {
	feedURL := fmt.Sprintf("%s/feed/@%s", c.baseURL, url.PathEscape(username))
	body, err := c.get(ctx, feedURL, map[string]string{"Accept": "application/rss+xml, application/xml"})
	if err != nil {
		return nil, fmt.Errorf("medium feed fetch failed: %w", err)
	}

	var feed mediumFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse medium feed for %q: %w", username, err)
	}

	// The channel title is "Stories by <name> on Medium".
	displayName := strings.TrimSuffix(strings.TrimPrefix(feed.Channel.Title, "Stories by "), " on Medium")

	profile := &model.PlatformProfile{
		Platform:    model.PlatformMedium,
		Handle:      username,
		DisplayName: displayName,
		Bio:         feed.Channel.Description,
		ProfileURL:  feed.Channel.Link,
	}
	if profile.ProfileURL == "" {
		profile.ProfileURL = "https://medium.com/@" + username
	}

	for _, entry := range feed.Channel.Items {
		if len(profile.Items) >= c.maxItems {
			break
		}
		// Strip tracking query parameters from story links.
		link, _, _ := strings.Cut(entry.Link, "?")
		profile.Items = append(profile.Items, model.Item{
			Kind:      model.ItemKindArticle,
			Title:     entry.Title,
			Text:      truncate(stripHTML(entry.Encoded), mediumExcerptLimit),
			URL:       link,
			CreatedAt: parseTime(entry.PubDate),
			Tags:      entry.Categories,
		})
	}
	profile.PostCount = len(profile.Items)

	return profile, nil
}
