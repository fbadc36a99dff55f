package collector

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/or1un/mosaic/internal/model"
)

// defaultTelegramBaseURL serves the public channel preview at /s/<name>.
const defaultTelegramBaseURL = "https://t.me"

// TelegramCollector collects public channel data from Telegram by
// scraping the web preview page. Telegram exposes no unauthenticated
// API, but public channels render their recent messages at t.me/s/name.
//
// Private channels, groups, and personal accounts have no preview and
// report as not found.
type TelegramCollector struct {
	settings
}

// NewTelegramCollector creates a Telegram collector.
func NewTelegramCollector(opts ...Option) *TelegramCollector {
	c := &TelegramCollector{settings: defaultSettings()}
	for _, opt := range opts {
		opt(&c.settings)
	}
	if c.baseURL == "" {
		c.baseURL = defaultTelegramBaseURL
	}
	return c
}

// Platform returns the platform this collector serves.
func (c *TelegramCollector) Platform() model.Platform {
	return model.PlatformTelegram
}

// Collect scrapes the public preview page for a channel.
func (c *TelegramCollector) Collect(ctx context.Context, username string) (*model.PlatformProfile, error) {
	previewURL := fmt.Sprintf("%s/s/%s", c.baseURL, url.PathEscape(username))
	body, err := c.get(ctx, previewURL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return nil, fmt.Errorf("telegram preview fetch failed: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse telegram preview for %q: %w", username, err)
	}

	profile := &model.PlatformProfile{
		Platform:   model.PlatformTelegram,
		Handle:     username,
		ProfileURL: "https://t.me/" + username,
		Metadata:   map[string]string{},
	}

	walkNodes(doc, func(n *html.Node) {
		switch {
		case hasClass(n, "tgme_channel_info_header_title"):
			profile.DisplayName = nodeText(n)
		case hasClass(n, "tgme_channel_info_description"):
			profile.Bio = nodeText(n)
		case hasClass(n, "tgme_channel_info_counter"):
			c.readCounter(n, profile)
		case hasClass(n, "tgme_widget_message"):
			if item, ok := parseTelegramMessage(n); ok && len(profile.Items) < c.maxItems {
				profile.Items = append(profile.Items, item)
			}
		}
	})

	// Preview pages for user accounts and private channels render no
	// channel header.
	if profile.DisplayName == "" && len(profile.Items) == 0 {
		return nil, fmt.Errorf("telegram channel %q has no public preview: %w", username, ErrProfileNotFound)
	}

	profile.PostCount = len(profile.Items)
	return profile, nil
}

// readCounter reads a channel info counter block. Each block holds a
// counter_value span and a counter_type span ("subscribers", "photos").
func (c *TelegramCollector) readCounter(n *html.Node, profile *model.PlatformProfile) {
	var value, kind string
	walkNodes(n, func(child *html.Node) {
		switch {
		case hasClass(child, "counter_value"):
			value = nodeText(child)
		case hasClass(child, "counter_type"):
			kind = nodeText(child)
		}
	})
	if kind == "" || value == "" {
		return
	}
	if kind == "subscribers" {
		profile.Followers = parseApproxCount(value)
	}
	profile.Metadata[kind] = value
}

// parseTelegramMessage extracts one widget message from the preview DOM.
func parseTelegramMessage(n *html.Node) (model.Item, bool) {
	item := model.Item{Kind: model.ItemKindPost}
	walkNodes(n, func(child *html.Node) {
		switch {
		case hasClass(child, "tgme_widget_message_text") && item.Text == "":
			item.Text = nodeText(child)
		case hasClass(child, "tgme_widget_message_views"):
			item.Views = int64(parseApproxCount(nodeText(child)))
		case child.Type == html.ElementNode && child.Data == "time":
			if datetime := attrValue(child, "datetime"); datetime != "" {
				item.CreatedAt = parseTime(datetime)
			}
		case hasClass(child, "tgme_widget_message_date") && item.URL == "":
			item.URL = attrValue(child, "href")
		}
	})
	return item, item.Text != "" || item.URL != ""
}

// parseApproxCount parses counts the preview abbreviates, like "12.3K"
// or "1.1M". Returns 0 when the value does not parse.
func parseApproxCount(value string) int {
	value = strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	multiplier := 1.0
	switch {
	case strings.HasSuffix(value, "K"):
		multiplier = 1_000
		value = strings.TrimSuffix(value, "K")
	case strings.HasSuffix(value, "M"):
		multiplier = 1_000_000
		value = strings.TrimSuffix(value, "M")
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return int(n * multiplier)
}

// walkNodes visits every node in the tree in document order.
func walkNodes(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walkNodes(child, visit)
	}
}

// hasClass reports whether an element node carries the given CSS class.
func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, candidate := range strings.Fields(attr.Val) {
			if candidate == class {
				return true
			}
		}
	}
	return false
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// nodeText returns the concatenated text content of a node.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	walkNodes(n, func(child *html.Node) {
		if child.Type == html.TextNode {
			sb.WriteString(child.Data)
		}
	})
	return strings.TrimSpace(sb.String())
}
