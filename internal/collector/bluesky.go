package collector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/or1un/mosaic/internal/model"
)

// defaultBlueskyBaseURL is the public, unauthenticated Bluesky AppView API.
const defaultBlueskyBaseURL = "https://public.api.bsky.app"

// blueskyPageSize is the feed page size. 100 is the API maximum.
const blueskyPageSize = 100

// BlueskyCollector collects public profile data from Bluesky over the
// AT Protocol XRPC endpoints: handle resolution, actor profile, and the
// author feed paginated by cursor.
//
// No credentials are needed; the public AppView serves all of it.
type BlueskyCollector struct {
	settings
}

// NewBlueskyCollector creates a Bluesky collector.
func NewBlueskyCollector(opts ...Option) *BlueskyCollector {
	c := &BlueskyCollector{settings: defaultSettings()}
	for _, opt := range opts {
		opt(&c.settings)
	}
	if c.baseURL == "" {
		c.baseURL = defaultBlueskyBaseURL
	}
	return c
}

// Platform returns the platform this collector serves.
func (c *BlueskyCollector) Platform() model.Platform {
	return model.PlatformBluesky
}

// blueskyProfile mirrors the fields we read from app.bsky.actor.getProfile.
type blueskyProfile struct {
	DID            string `json:"did"`
	Handle         string `json:"handle"`
	DisplayName    string `json:"displayName"`
	Description    string `json:"description"`
	Avatar         string `json:"avatar"`
	FollowersCount int    `json:"followersCount"`
	FollowsCount   int    `json:"followsCount"`
	PostsCount     int    `json:"postsCount"`
	CreatedAt      string `json:"createdAt"`
}

// blueskyFeedResponse mirrors the fields we read from app.bsky.feed.getAuthorFeed.
type blueskyFeedResponse struct {
	Cursor string `json:"cursor"`
	Feed   []struct {
		Post struct {
			URI    string `json:"uri"`
			Record struct {
				Text      string `json:"text"`
				CreatedAt string `json:"createdAt"`
			} `json:"record"`
			ReplyCount  int `json:"replyCount"`
			RepostCount int `json:"repostCount"`
			LikeCount   int `json:"likeCount"`
		} `json:"post"`
	} `json:"feed"`
}

// Collect resolves the handle, fetches the actor profile, and pages
// through the author feed up to the configured item limit.
func (c *BlueskyCollector) Collect(ctx context.Context, username string) (*model.PlatformProfile, error) {
	did, handle, err := c.resolveHandle(ctx, username)
	if err != nil {
		return nil, err
	}

	var actor blueskyProfile
	profileURL := fmt.Sprintf("%s/xrpc/app.bsky.actor.getProfile?actor=%s", c.baseURL, url.QueryEscape(did))
	if err := c.getJSON(ctx, profileURL, nil, &actor); err != nil {
		return nil, fmt.Errorf("bluesky profile fetch failed: %w", err)
	}
	if actor.Handle != "" {
		handle = actor.Handle
	}

	profile := &model.PlatformProfile{
		Platform:    model.PlatformBluesky,
		Handle:      handle,
		DisplayName: actor.DisplayName,
		Bio:         actor.Description,
		AvatarURL:   actor.Avatar,
		ProfileURL:  "https://bsky.app/profile/" + handle,
		CreatedAt:   parseTime(actor.CreatedAt),
		Followers:   actor.FollowersCount,
		Following:   actor.FollowsCount,
		PostCount:   actor.PostsCount,
		Metadata:    map[string]string{"did": did},
	}

	cursor := ""
	for len(profile.Items) < c.maxItems {
		if err := c.pause(ctx); err != nil {
			return profile, err
		}

		feedURL := fmt.Sprintf("%s/xrpc/app.bsky.feed.getAuthorFeed?actor=%s&limit=%d",
			c.baseURL, url.QueryEscape(did), blueskyPageSize)
		if cursor != "" {
			feedURL += "&cursor=" + url.QueryEscape(cursor)
		}

		var feed blueskyFeedResponse
		if err := c.getJSON(ctx, feedURL, nil, &feed); err != nil {
			// Partial result: keep what pagination already produced.
			return profile, fmt.Errorf("bluesky feed fetch failed: %w", err)
		}
		if len(feed.Feed) == 0 {
			break
		}

		for _, entry := range feed.Feed {
			if len(profile.Items) >= c.maxItems {
				break
			}
			profile.Items = append(profile.Items, model.Item{
				Kind:      model.ItemKindPost,
				Text:      entry.Post.Record.Text,
				URL:       postWebURL(handle, entry.Post.URI),
				CreatedAt: parseTime(entry.Post.Record.CreatedAt),
				Score:     entry.Post.LikeCount,
				Replies:   entry.Post.ReplyCount,
			})
		}

		if feed.Cursor == "" {
			break
		}
		cursor = feed.Cursor
	}

	return profile, nil
}

// resolveHandle resolves a username to a DID, trying the name as given
// and then with the default .bsky.social suffix.
func (c *BlueskyCollector) resolveHandle(ctx context.Context, username string) (did, handle string, err error) {
	candidates := []string{username}
	if !strings.Contains(username, ".") {
		candidates = append(candidates, username+".bsky.social")
	}

	var lastErr error
	for _, candidate := range candidates {
		resolveURL := fmt.Sprintf("%s/xrpc/com.atproto.identity.resolveHandle?handle=%s",
			c.baseURL, url.QueryEscape(candidate))
		var resp struct {
			DID string `json:"did"`
		}
		if err := c.getJSON(ctx, resolveURL, nil, &resp); err != nil {
			lastErr = err
			continue
		}
		if resp.DID != "" {
			return resp.DID, candidate, nil
		}
	}
	if lastErr == nil {
		lastErr = ErrProfileNotFound
	}
	if errors.Is(lastErr, ErrProfileNotFound) {
		return "", "", fmt.Errorf("bluesky handle %q: %w", username, ErrProfileNotFound)
	}
	return "", "", fmt.Errorf("bluesky handle resolution failed: %w", lastErr)
}

// postWebURL converts an AT URI (at://did/app.bsky.feed.post/rkey) to the
// public web URL for the post.
func postWebURL(handle, atURI string) string {
	parts := strings.Split(atURI, "/")
	if len(parts) == 0 {
		return ""
	}
	rkey := parts[len(parts)-1]
	if rkey == "" {
		return ""
	}
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", handle, rkey)
}
