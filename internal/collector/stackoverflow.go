package collector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/or1un/mosaic/internal/model"
)

// defaultStackExchangeBaseURL is the Stack Exchange API 2.3 base URL.
const defaultStackExchangeBaseURL = "https://api.stackexchange.com/2.3"

// StackOverflowCollector collects public profile data from Stack Overflow
// through the Stack Exchange API: user search by display name, then the
// best match's questions, answers and badge counts.
//
// The API works without a key but grants a much larger daily quota with
// one, so the key is optional.
type StackOverflowCollector struct {
	settings

	// apiKey is the optional Stack Exchange API key.
	apiKey string
}

// NewStackOverflowCollector creates a Stack Overflow collector.
// Pass an empty key for anonymous access.
func NewStackOverflowCollector(apiKey string, opts ...Option) *StackOverflowCollector {
	c := &StackOverflowCollector{settings: defaultSettings(), apiKey: apiKey}
	for _, opt := range opts {
		opt(&c.settings)
	}
	if c.baseURL == "" {
		c.baseURL = defaultStackExchangeBaseURL
	}
	return c
}

// Platform returns the platform this collector serves.
func (c *StackOverflowCollector) Platform() model.Platform {
	return model.PlatformStackOverflow
}

// stackUser mirrors the fields we read from the user search response.
type stackUser struct {
	UserID       int64  `json:"user_id"`
	DisplayName  string `json:"display_name"`
	Reputation   int64  `json:"reputation"`
	Location     string `json:"location"`
	WebsiteURL   string `json:"website_url"`
	Link         string `json:"link"`
	ProfileImage string `json:"profile_image"`
	CreationDate int64  `json:"creation_date"`
	BadgeCounts  struct {
		Gold   int `json:"gold"`
		Silver int `json:"silver"`
		Bronze int `json:"bronze"`
	} `json:"badge_counts"`
}

// stackQuestion mirrors the fields we read from the questions response.
type stackQuestion struct {
	Title        string   `json:"title"`
	Link         string   `json:"link"`
	Score        int      `json:"score"`
	AnswerCount  int      `json:"answer_count"`
	ViewCount    int64    `json:"view_count"`
	Tags         []string `json:"tags"`
	CreationDate int64    `json:"creation_date"`
}

// stackAnswer mirrors the fields we read from the answers response.
type stackAnswer struct {
	QuestionID   int64 `json:"question_id"`
	AnswerID     int64 `json:"answer_id"`
	Score        int   `json:"score"`
	IsAccepted   bool  `json:"is_accepted"`
	CreationDate int64 `json:"creation_date"`
}

// stackItems is the generic Stack Exchange response envelope.
type stackItems[T any] struct {
	Items []T `json:"items"`
}

// Collect searches Stack Overflow users by display name, picks the match
// with the highest reputation, and fetches that user's questions, answers
// and badges.
func (c *StackOverflowCollector) Collect(ctx context.Context, username string) (*model.PlatformProfile, error) {
	searchURL := fmt.Sprintf("%s/users?inname=%s&site=stackoverflow&pagesize=10&sort=reputation&order=desc%s",
		c.baseURL, url.QueryEscape(username), c.keyParam())

	var search stackItems[stackUser]
	if err := c.getJSON(ctx, searchURL, nil, &search); err != nil {
		return nil, fmt.Errorf("stackoverflow user search failed: %w", err)
	}
	if len(search.Items) == 0 {
		return nil, fmt.Errorf("stackoverflow user %q: %w", username, ErrProfileNotFound)
	}

	// Results are sorted by reputation descending; the first entry is
	// the most established account matching the name.
	user := search.Items[0]

	profile := &model.PlatformProfile{
		Platform:    model.PlatformStackOverflow,
		Handle:      user.DisplayName,
		DisplayName: user.DisplayName,
		Location:    user.Location,
		Website:     user.WebsiteURL,
		AvatarURL:   user.ProfileImage,
		ProfileURL:  user.Link,
		CreatedAt:   time.Unix(user.CreationDate, 0).UTC(),
		Reputation:  user.Reputation,
		Badges: map[string]int{
			"gold":   user.BadgeCounts.Gold,
			"silver": user.BadgeCounts.Silver,
			"bronze": user.BadgeCounts.Bronze,
		},
		Metadata: map[string]string{
			"user_id": strconv.FormatInt(user.UserID, 10),
		},
	}

	if err := c.pause(ctx); err != nil {
		return profile, err
	}

	questionsURL := fmt.Sprintf("%s/users/%d/questions?site=stackoverflow&pagesize=%d&sort=votes&order=desc%s",
		c.baseURL, user.UserID, c.pageSize(), c.keyParam())
	var questions stackItems[stackQuestion]
	if err := c.getJSON(ctx, questionsURL, nil, &questions); err != nil {
		return profile, fmt.Errorf("stackoverflow questions fetch failed: %w", err)
	}
	for _, q := range questions.Items {
		if len(profile.Items) >= c.maxItems {
			break
		}
		profile.Items = append(profile.Items, model.Item{
			Kind:      model.ItemKindQuestion,
			Title:     q.Title,
			URL:       q.Link,
			CreatedAt: time.Unix(q.CreationDate, 0).UTC(),
			Score:     q.Score,
			Replies:   q.AnswerCount,
			Views:     q.ViewCount,
			Tags:      q.Tags,
		})
	}

	if err := c.pause(ctx); err != nil {
		return profile, err
	}

	answersURL := fmt.Sprintf("%s/users/%d/answers?site=stackoverflow&pagesize=%d&sort=votes&order=desc%s",
		c.baseURL, user.UserID, c.pageSize(), c.keyParam())
	var answers stackItems[stackAnswer]
	if err := c.getJSON(ctx, answersURL, nil, &answers); err != nil {
		return profile, fmt.Errorf("stackoverflow answers fetch failed: %w", err)
	}
	accepted := 0
	for _, a := range answers.Items {
		if len(profile.Items) >= c.maxItems {
			break
		}
		item := model.Item{
			Kind:      model.ItemKindAnswer,
			URL:       fmt.Sprintf("https://stackoverflow.com/a/%d", a.AnswerID),
			CreatedAt: time.Unix(a.CreationDate, 0).UTC(),
			Score:     a.Score,
		}
		if a.IsAccepted {
			item.Tags = []string{"accepted"}
			accepted++
		}
		profile.Items = append(profile.Items, item)
	}
	profile.Metadata["accepted_answers"] = strconv.Itoa(accepted)
	profile.PostCount = len(questions.Items) + len(answers.Items)

	return profile, nil
}

// pageSize returns the request page size, bounded by the item limit so a
// small --max-items run does not pull full pages it will discard.
func (c *StackOverflowCollector) pageSize() int {
	if c.maxItems < 100 {
		return c.maxItems
	}
	return 100
}

// keyParam returns the API key query fragment, empty when no key is set.
func (c *StackOverflowCollector) keyParam() string {
	if c.apiKey == "" {
		return ""
	}
	return "&key=" + url.QueryEscape(c.apiKey)
}
