package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/or1un/mosaic/internal/model"
)

// newGitHubTestServer returns a server mimicking the GitHub REST API for
// the user "octocat".
func newGitHubTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"login": "octocat",
			"name": "The Octocat",
			"bio": "Building things",
			"company": "@github",
			"location": "San Francisco",
			"email": "octocat@example.com",
			"blog": "https://octocat.example.com",
			"html_url": "https://github.com/octocat",
			"public_repos": 8,
			"followers": 4000,
			"following": 9,
			"created_at": "2011-01-25T18:44:36Z"
		}`))
	})
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"name": "hello-world", "description": "My first repo", "html_url": "https://github.com/octocat/hello-world",
			 "language": "Go", "stargazers_count": 80, "forks_count": 9, "topics": ["demo"],
			 "fork": false, "created_at": "2011-01-26T19:01:12Z", "pushed_at": "2026-08-01T10:00:00Z"},
			{"name": "linguist", "html_url": "https://github.com/octocat/linguist", "language": "Ruby",
			 "fork": true, "created_at": "2012-01-01T00:00:00Z"}
		]`))
	})
	mux.HandleFunc("/users/octocat/events/public", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"type": "PushEvent", "repo": {"name": "octocat/hello-world"}, "created_at": "2026-08-20T09:00:00Z"}
		]`))
	})
	return httptest.NewServer(mux)
}

// TestGitHubCollector tests profile, repository and event collection.
func TestGitHubCollector(t *testing.T) {
	t.Parallel()

	t.Run("collects profile with repos and events", func(t *testing.T) {
		t.Parallel()
		server := newGitHubTestServer(t)
		defer server.Close()

		c := NewGitHubCollector("", WithBaseURL(server.URL), WithRequestDelay(0))
		profile, err := c.Collect(context.Background(), "octocat")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if profile.Platform != model.PlatformGitHub {
			t.Errorf("expected github platform, got %v", profile.Platform)
		}
		if profile.Handle != "octocat" {
			t.Errorf("expected handle 'octocat', got %q", profile.Handle)
		}
		if profile.DisplayName != "The Octocat" {
			t.Errorf("expected display name, got %q", profile.DisplayName)
		}
		if profile.Email != "octocat@example.com" {
			t.Errorf("expected email, got %q", profile.Email)
		}
		if profile.Followers != 4000 {
			t.Errorf("expected 4000 followers, got %d", profile.Followers)
		}
		if profile.CreatedAt.Year() != 2011 {
			t.Errorf("expected created 2011, got %v", profile.CreatedAt)
		}

		// One non-fork repo plus one event; the fork is skipped.
		if len(profile.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(profile.Items))
		}
		repo := profile.Items[0]
		if repo.Kind != model.ItemKindRepository || repo.Title != "hello-world" {
			t.Errorf("unexpected first item: %+v", repo)
		}
		if repo.Score != 80 {
			t.Errorf("expected 80 stars, got %d", repo.Score)
		}
		if profile.Languages["Go"] != 1 {
			t.Errorf("expected Go language count 1, got %v", profile.Languages)
		}
		if _, ok := profile.Languages["Ruby"]; ok {
			t.Error("fork languages should not be counted")
		}
		event := profile.Items[1]
		if event.Kind != model.ItemKindEvent || event.Title != "PushEvent" {
			t.Errorf("unexpected event item: %+v", event)
		}
	})

	t.Run("unknown user returns ErrProfileNotFound", func(t *testing.T) {
		t.Parallel()
		server := newGitHubTestServer(t)
		defer server.Close()

		c := NewGitHubCollector("", WithBaseURL(server.URL), WithRequestDelay(0))
		_, err := c.Collect(context.Background(), "nobody-here")
		if !errors.Is(err, ErrProfileNotFound) {
			t.Errorf("expected ErrProfileNotFound, got %v", err)
		}
	})

	t.Run("token is sent as authorization header", func(t *testing.T) {
		t.Parallel()
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"login": "octocat"}`))
		}))
		defer server.Close()

		c := NewGitHubCollector("ghp_secret", WithBaseURL(server.URL), WithRequestDelay(0))
		_, _ = c.Collect(context.Background(), "octocat")
		if gotAuth != "token ghp_secret" {
			t.Errorf("expected token header, got %q", gotAuth)
		}
	})

	t.Run("repo failure keeps the profile", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"login": "octocat", "followers": 10}`))
		})
		mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		c := NewGitHubCollector("", WithBaseURL(server.URL), WithRequestDelay(0))
		profile, err := c.Collect(context.Background(), "octocat")
		if err == nil {
			t.Fatal("expected an error for the failed repo fetch")
		}
		if profile == nil || profile.Handle != "octocat" {
			t.Errorf("expected partial profile, got %+v", profile)
		}
	})
}

// TestGitHubCollectorPlatform tests the Platform accessor.
func TestGitHubCollectorPlatform(t *testing.T) {
	t.Parallel()
	if got := NewGitHubCollector("").Platform(); got != model.PlatformGitHub {
		t.Errorf("expected github, got %v", got)
	}
}
