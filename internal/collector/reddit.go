package collector

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/or1un/mosaic/internal/model"
)

// defaultRedditBaseURL serves the public .json mirrors of every listing.
const defaultRedditBaseURL = "https://www.reddit.com"

// redditUserAgent is a browser user agent. Reddit rejects requests with
// generic tool user agents even on public JSON endpoints.
const redditUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// redditCommentLimit caps stored comment bodies at this many runes.
const redditCommentLimit = 500

// RedditCollector collects public profile data from Reddit using the
// unauthenticated .json listing endpoints: the about page, submitted
// posts, and comments.
type RedditCollector struct {
	settings
}

// NewRedditCollector creates a Reddit collector.
func NewRedditCollector(opts ...Option) *RedditCollector {
	c := &RedditCollector{settings: defaultSettings()}
	for _, opt := range opts {
		opt(&c.settings)
	}
	if c.baseURL == "" {
		c.baseURL = defaultRedditBaseURL
	}
	return c
}

// Platform returns the platform this collector serves.
func (c *RedditCollector) Platform() model.Platform {
	return model.PlatformReddit
}

// redditAbout mirrors the fields we read from /user/{name}/about.json.
type redditAbout struct {
	Data struct {
		Name         string  `json:"name"`
		IconImg      string  `json:"icon_img"`
		LinkKarma    int     `json:"link_karma"`
		CommentKarma int     `json:"comment_karma"`
		TotalKarma   int64   `json:"total_karma"`
		CreatedUTC   float64 `json:"created_utc"`
		Subreddit    struct {
			PublicDescription string `json:"public_description"`
			Title             string `json:"title"`
		} `json:"subreddit"`
	} `json:"data"`
}

// redditListing mirrors the fields we read from submitted and comment
// listings. Both listing kinds share the same envelope.
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Body        string  `json:"body"`
				Subreddit   string  `json:"subreddit"`
				Permalink   string  `json:"permalink"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Collect fetches the about page, submitted posts, and comments for a
// Reddit user.
func (c *RedditCollector) Collect(ctx context.Context, username string) (*model.PlatformProfile, error) {
	var about redditAbout
	aboutURL := fmt.Sprintf("%s/user/%s/about.json", c.baseURL, url.PathEscape(username))
	if err := c.getJSON(ctx, aboutURL, c.headers(), &about); err != nil {
		return nil, fmt.Errorf("reddit about fetch failed: %w", err)
	}
	if about.Data.Name == "" {
		return nil, fmt.Errorf("reddit user %q: %w", username, ErrProfileNotFound)
	}

	profile := &model.PlatformProfile{
		Platform:    model.PlatformReddit,
		Handle:      about.Data.Name,
		DisplayName: about.Data.Subreddit.Title,
		Bio:         about.Data.Subreddit.PublicDescription,
		AvatarURL:   about.Data.IconImg,
		ProfileURL:  "https://www.reddit.com/user/" + about.Data.Name,
		CreatedAt:   time.Unix(int64(about.Data.CreatedUTC), 0).UTC(),
		Reputation:  about.Data.TotalKarma,
		Metadata: map[string]string{
			"link_karma":    fmt.Sprintf("%d", about.Data.LinkKarma),
			"comment_karma": fmt.Sprintf("%d", about.Data.CommentKarma),
		},
	}

	if err := c.pause(ctx); err != nil {
		return profile, err
	}

	var submitted redditListing
	submittedURL := fmt.Sprintf("%s/user/%s/submitted.json?limit=100&sort=new", c.baseURL, url.PathEscape(username))
	if err := c.getJSON(ctx, submittedURL, c.headers(), &submitted); err != nil {
		// Partial result: the about page already succeeded.
		return profile, fmt.Errorf("reddit submitted fetch failed: %w", err)
	}
	for _, child := range submitted.Data.Children {
		if len(profile.Items) >= c.maxItems {
			break
		}
		profile.Items = append(profile.Items, model.Item{
			Kind:      model.ItemKindSubmission,
			Title:     child.Data.Title,
			Text:      truncate(child.Data.Selftext, redditCommentLimit),
			URL:       "https://www.reddit.com" + child.Data.Permalink,
			CreatedAt: time.Unix(int64(child.Data.CreatedUTC), 0).UTC(),
			Score:     child.Data.Score,
			Replies:   child.Data.NumComments,
			Tags:      []string{child.Data.Subreddit},
		})
	}

	if err := c.pause(ctx); err != nil {
		return profile, err
	}

	var comments redditListing
	commentsURL := fmt.Sprintf("%s/user/%s/comments.json?limit=100&sort=new", c.baseURL, url.PathEscape(username))
	if err := c.getJSON(ctx, commentsURL, c.headers(), &comments); err != nil {
		return profile, fmt.Errorf("reddit comments fetch failed: %w", err)
	}
	for _, child := range comments.Data.Children {
		if len(profile.Items) >= c.maxItems {
			break
		}
		profile.Items = append(profile.Items, model.Item{
			Kind:      model.ItemKindComment,
			Text:      truncate(child.Data.Body, redditCommentLimit),
			URL:       "https://www.reddit.com" + child.Data.Permalink,
			CreatedAt: time.Unix(int64(child.Data.CreatedUTC), 0).UTC(),
			Score:     child.Data.Score,
			Tags:      []string{child.Data.Subreddit},
		})
	}

	profile.PostCount = len(profile.Items)
	return profile, nil
}

// headers returns per-request headers. The browser user agent overrides
// the shared tool agent for Reddit only.
func (c *RedditCollector) headers() map[string]string {
	return map[string]string{"User-Agent": redditUserAgent}
}
