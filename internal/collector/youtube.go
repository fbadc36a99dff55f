package collector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/or1un/mosaic/internal/model"
)

// defaultYouTubeBaseURL is the YouTube Data API v3 base URL.
const defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// YouTubeCollector collects public channel data from YouTube through the
// Data API: channel search by name, channel statistics, and the most
// recent uploads.
//
// Unlike the other platforms the Data API has no anonymous tier, so an
// API key is required.
type YouTubeCollector struct {
	settings

	// apiKey is the YouTube Data API key. Required.
	apiKey string
}

// NewYouTubeCollector creates a YouTube collector.
func NewYouTubeCollector(apiKey string, opts ...Option) *YouTubeCollector {
	c := &YouTubeCollector{settings: defaultSettings(), apiKey: apiKey}
	for _, opt := range opts {
		opt(&c.settings)
	}
	if c.baseURL == "" {
		c.baseURL = defaultYouTubeBaseURL
	}
	return c
}

// Platform returns the platform this collector serves.
func (c *YouTubeCollector) Platform() model.Platform {
	return model.PlatformYouTube
}

// youtubeSearchResponse mirrors the fields we read from GET /search.
type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			ChannelID string `json:"channelId"`
			VideoID   string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

// youtubeChannelResponse mirrors the fields we read from GET /channels.
type youtubeChannelResponse struct {
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			CustomURL   string `json:"customUrl"`
			PublishedAt string `json:"publishedAt"`
			Country     string `json:"country"`
			Thumbnails  struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount       string `json:"viewCount"`
			SubscriberCount string `json:"subscriberCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Collect searches for a channel matching the username, then fetches its
// statistics and latest uploads.
func (c *YouTubeCollector) Collect(ctx context.Context, username string) (*model.PlatformProfile, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("youtube: %w", ErrMissingCredentials)
	}

	searchURL := fmt.Sprintf("%s/search?part=snippet&type=channel&q=%s&maxResults=10&key=%s",
		c.baseURL, url.QueryEscape(username), url.QueryEscape(c.apiKey))
	var search youtubeSearchResponse
	if err := c.getJSON(ctx, searchURL, nil, &search); err != nil {
		return nil, fmt.Errorf("youtube channel search failed: %w", err)
	}
	if len(search.Items) == 0 || search.Items[0].ID.ChannelID == "" {
		return nil, fmt.Errorf("youtube channel %q: %w", username, ErrProfileNotFound)
	}
	channelID := search.Items[0].ID.ChannelID

	if err := c.pause(ctx); err != nil {
		return nil, err
	}

	channelURL := fmt.Sprintf("%s/channels?part=snippet,statistics&id=%s&key=%s",
		c.baseURL, url.QueryEscape(channelID), url.QueryEscape(c.apiKey))
	var channels youtubeChannelResponse
	if err := c.getJSON(ctx, channelURL, nil, &channels); err != nil {
		return nil, fmt.Errorf("youtube channel fetch failed: %w", err)
	}
	if len(channels.Items) == 0 {
		return nil, fmt.Errorf("youtube channel %q: %w", channelID, ErrProfileNotFound)
	}
	channel := channels.Items[0]

	subscribers, _ := strconv.Atoi(channel.Statistics.SubscriberCount) //nolint:errcheck // API reports counts as strings; 0 on hidden counts
	videos, _ := strconv.Atoi(channel.Statistics.VideoCount)           //nolint:errcheck // Same as above
	totalViews, _ := strconv.ParseInt(channel.Statistics.ViewCount, 10, 64)

	handle := channel.Snippet.CustomURL
	if handle == "" {
		handle = username
	}
	profile := &model.PlatformProfile{
		Platform:    model.PlatformYouTube,
		Handle:      handle,
		DisplayName: channel.Snippet.Title,
		Bio:         channel.Snippet.Description,
		Location:    channel.Snippet.Country,
		AvatarURL:   channel.Snippet.Thumbnails.Default.URL,
		ProfileURL:  "https://www.youtube.com/channel/" + channelID,
		CreatedAt:   parseTime(channel.Snippet.PublishedAt),
		Followers:   subscribers,
		PostCount:   videos,
		Metadata: map[string]string{
			"channel_id":  channelID,
			"total_views": strconv.FormatInt(totalViews, 10),
		},
	}

	if err := c.pause(ctx); err != nil {
		return profile, err
	}

	videosURL := fmt.Sprintf("%s/search?part=snippet&channelId=%s&maxResults=50&order=date&type=video&key=%s",
		c.baseURL, url.QueryEscape(channelID), url.QueryEscape(c.apiKey))
	var uploads youtubeSearchResponse
	if err := c.getJSON(ctx, videosURL, nil, &uploads); err != nil {
		return profile, fmt.Errorf("youtube videos fetch failed: %w", err)
	}
	for _, item := range uploads.Items {
		if item.ID.VideoID == "" {
			continue
		}
		profile.Items = append(profile.Items, model.Item{
			Kind:      model.ItemKindVideo,
			Title:     item.Snippet.Title,
			Text:      truncate(item.Snippet.Description, 500),
			URL:       "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			CreatedAt: parseTime(item.Snippet.PublishedAt),
		})
	}

	return profile, nil
}
