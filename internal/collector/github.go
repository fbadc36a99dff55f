package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/or1un/mosaic/internal/model"
)

// defaultGitHubBaseURL is the GitHub REST API v3 base URL.
const defaultGitHubBaseURL = "https://api.github.com"

// GitHubCollector collects public profile data from GitHub:
// the user record, repositories sorted by last update, and recent
// public activity events.
type GitHubCollector struct {
	settings

	// token is an optional personal access token. Anonymous access is
	// limited to 60 requests per hour; a token raises that to 5000.
	token string
}

// NewGitHubCollector creates a GitHub collector.
// Pass an empty token for anonymous access.
func NewGitHubCollector(token string, opts ...Option) *GitHubCollector {
	c := &GitHubCollector{settings: defaultSettings(), token: token}
	for _, opt := range opts {
		opt(&c.settings)
	}
	if c.baseURL == "" {
		c.baseURL = defaultGitHubBaseURL
	}
	return c
}

// Platform returns the platform this collector serves.
func (c *GitHubCollector) Platform() model.Platform {
	return model.PlatformGitHub
}

// githubUser mirrors the fields we read from GET /users/{username}.
type githubUser struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	Blog        string `json:"blog"`
	AvatarURL   string `json:"avatar_url"`
	HTMLURL     string `json:"html_url"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	CreatedAt   string `json:"created_at"`
}

// githubRepo mirrors the fields we read from GET /users/{username}/repos.
type githubRepo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	HTMLURL     string   `json:"html_url"`
	Language    string   `json:"language"`
	Stars       int      `json:"stargazers_count"`
	Forks       int      `json:"forks_count"`
	Topics      []string `json:"topics"`
	Fork        bool     `json:"fork"`
	CreatedAt   string   `json:"created_at"`
	PushedAt    string   `json:"pushed_at"`
}

// githubEvent mirrors the fields we read from GET /users/{username}/events/public.
type githubEvent struct {
	Type string `json:"type"`
	Repo struct {
		Name string `json:"name"`
	} `json:"repo"`
	CreatedAt string `json:"created_at"`
}

// Collect fetches the GitHub profile, repositories and public events.
func (c *GitHubCollector) Collect(ctx context.Context, username string) (*model.PlatformProfile, error) {
	var user githubUser
	if err := c.getJSON(ctx, fmt.Sprintf("%s/users/%s", c.baseURL, username), c.headers(), &user); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, fmt.Errorf("github user %q: %w", username, err)
		}
		return nil, fmt.Errorf("github profile fetch failed: %w", err)
	}

	profile := &model.PlatformProfile{
		Platform:    model.PlatformGitHub,
		Handle:      user.Login,
		DisplayName: user.Name,
		Bio:         user.Bio,
		Location:    user.Location,
		Website:     user.Blog,
		AvatarURL:   user.AvatarURL,
		Email:       user.Email,
		Company:     user.Company,
		ProfileURL:  user.HTMLURL,
		CreatedAt:   parseTime(user.CreatedAt),
		Followers:   user.Followers,
		Following:   user.Following,
		PostCount:   user.PublicRepos,
		Languages:   make(map[string]int),
	}

	if err := c.pause(ctx); err != nil {
		return profile, err
	}

	// Repositories sorted by last update; one page of 100 covers the
	// active repos of nearly every account.
	var repos []githubRepo
	reposURL := fmt.Sprintf("%s/users/%s/repos?per_page=100&sort=updated", c.baseURL, username)
	if err := c.getJSON(ctx, reposURL, c.headers(), &repos); err != nil {
		// Partial result: keep the profile even when repos are unavailable.
		return profile, fmt.Errorf("github repos fetch failed: %w", err)
	}
	for _, repo := range repos {
		if repo.Fork {
			continue
		}
		profile.Items = append(profile.Items, model.Item{
			Kind:      model.ItemKindRepository,
			Title:     repo.Name,
			Text:      repo.Description,
			URL:       repo.HTMLURL,
			CreatedAt: parseTime(repo.CreatedAt),
			Score:     repo.Stars,
			Replies:   repo.Forks,
			Tags:      repo.Topics,
			Language:  repo.Language,
		})
		if repo.Language != "" {
			profile.Languages[repo.Language]++
		}
	}

	if err := c.pause(ctx); err != nil {
		return profile, err
	}

	var events []githubEvent
	eventsURL := fmt.Sprintf("%s/users/%s/events/public", c.baseURL, username)
	if err := c.getJSON(ctx, eventsURL, c.headers(), &events); err != nil {
		return profile, fmt.Errorf("github events fetch failed: %w", err)
	}
	for _, event := range events {
		profile.Items = append(profile.Items, model.Item{
			Kind:      model.ItemKindEvent,
			Title:     event.Type,
			Text:      event.Repo.Name,
			CreatedAt: parseTime(event.CreatedAt),
		})
	}

	return profile, nil
}

// headers returns the request headers, including the token when configured.
func (c *GitHubCollector) headers() map[string]string {
	h := map[string]string{
		"Accept": "application/vnd.github+json",
	}
	if c.token != "" {
		h["Authorization"] = "token " + c.token
	}
	return h
}
