package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/or1un/mosaic/internal/model"
)

// newStackOverflowTestServer returns a server mimicking the Stack
// Exchange API for the display name "octocat".
func newStackOverflowTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("inname") != "octocat" {
			_, _ = w.Write([]byte(`{"items": []}`))
			return
		}
		_, _ = w.Write([]byte(`{"items": [
			{"user_id": 42, "display_name": "octocat", "reputation": 50000,
			 "location": "San Francisco", "website_url": "https://octocat.example.com",
			 "link": "https://stackoverflow.com/users/42/octocat",
			 "creation_date": 1295980800,
			 "badge_counts": {"gold": 2, "silver": 10, "bronze": 30}},
			{"user_id": 43, "display_name": "octocat2", "reputation": 5}
		]}`))
	})
	mux.HandleFunc("/users/42/questions", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items": [
			{"title": "How do I merge branches?", "link": "https://stackoverflow.com/q/1",
			 "score": 120, "answer_count": 4, "view_count": 90000,
			 "tags": ["git"], "creation_date": 1609459200}
		]}`))
	})
	mux.HandleFunc("/users/42/answers", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items": [
			{"question_id": 7, "answer_id": 8, "score": 55, "is_accepted": true, "creation_date": 1612137600},
			{"question_id": 9, "answer_id": 10, "score": 3, "is_accepted": false, "creation_date": 1612224000}
		]}`))
	})
	return httptest.NewServer(mux)
}

// TestStackOverflowCollector tests user search and activity collection.
func TestStackOverflowCollector(t *testing.T) {
	t.Parallel()

	t.Run("collects best reputation match", func(t *testing.T) {
		t.Parallel()
		server := newStackOverflowTestServer(t)
		defer server.Close()

		c := NewStackOverflowCollector("", WithBaseURL(server.URL), WithRequestDelay(0))
		profile, err := c.Collect(context.Background(), "octocat")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if profile.Platform != model.PlatformStackOverflow {
			t.Errorf("expected stackoverflow platform, got %v", profile.Platform)
		}
		if profile.Handle != "octocat" {
			t.Errorf("expected the 50000-rep match, got %q", profile.Handle)
		}
		if profile.Reputation != 50000 {
			t.Errorf("expected reputation 50000, got %d", profile.Reputation)
		}
		if profile.Badges["gold"] != 2 || profile.Badges["bronze"] != 30 {
			t.Errorf("unexpected badges: %v", profile.Badges)
		}
		if profile.Metadata["user_id"] != "42" {
			t.Errorf("expected user_id metadata, got %v", profile.Metadata)
		}

		// One question plus two answers.
		if len(profile.Items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(profile.Items))
		}
		question := profile.Items[0]
		if question.Kind != model.ItemKindQuestion || question.Views != 90000 {
			t.Errorf("unexpected question item: %+v", question)
		}
		if profile.Metadata["accepted_answers"] != "1" {
			t.Errorf("expected 1 accepted answer, got %q", profile.Metadata["accepted_answers"])
		}
		if profile.PostCount != 3 {
			t.Errorf("expected post count 3, got %d", profile.PostCount)
		}
	})

	t.Run("max items caps collected activity", func(t *testing.T) {
		t.Parallel()
		server := newStackOverflowTestServer(t)
		defer server.Close()

		c := NewStackOverflowCollector("", WithBaseURL(server.URL), WithRequestDelay(0), WithMaxItems(2))
		profile, err := c.Collect(context.Background(), "octocat")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// One question plus the first answer; the second answer exceeds
		// the limit.
		if len(profile.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(profile.Items))
		}
		if profile.Items[1].Kind != model.ItemKindAnswer {
			t.Errorf("expected second item to be an answer, got %v", profile.Items[1].Kind)
		}
	})

	t.Run("max items bounds the request page size", func(t *testing.T) {
		t.Parallel()
		var gotPageSize string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/users" {
				_, _ = w.Write([]byte(`{"items": [{"user_id": 42, "display_name": "octocat"}]}`))
				return
			}
			gotPageSize = r.URL.Query().Get("pagesize")
			_, _ = w.Write([]byte(`{"items": []}`))
		}))
		defer server.Close()

		c := NewStackOverflowCollector("", WithBaseURL(server.URL), WithRequestDelay(0), WithMaxItems(5))
		if _, err := c.Collect(context.Background(), "octocat"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotPageSize != "5" {
			t.Errorf("expected pagesize 5, got %q", gotPageSize)
		}
	})

	t.Run("no match returns ErrProfileNotFound", func(t *testing.T) {
		t.Parallel()
		server := newStackOverflowTestServer(t)
		defer server.Close()

		c := NewStackOverflowCollector("", WithBaseURL(server.URL), WithRequestDelay(0))
		_, err := c.Collect(context.Background(), "nobody-here")
		if !errors.Is(err, ErrProfileNotFound) {
			t.Errorf("expected ErrProfileNotFound, got %v", err)
		}
	})

	t.Run("api key is appended to requests", func(t *testing.T) {
		t.Parallel()
		var gotKey string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.URL.Query().Get("key")
			_, _ = w.Write([]byte(`{"items": []}`))
		}))
		defer server.Close()

		c := NewStackOverflowCollector("so-key", WithBaseURL(server.URL), WithRequestDelay(0))
		_, _ = c.Collect(context.Background(), "octocat")
		if gotKey != "so-key" {
			t.Errorf("expected key parameter, got %q", gotKey)
		}
	})
}
