package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/or1un/mosaic/internal/model"
)

// newYouTubeTestServer returns a server mimicking the YouTube Data API
// for the channel "octocat".
func newYouTubeTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("channelId") == "UC123" {
			_, _ = w.Write([]byte(`{"items": [
				{"id": {"videoId": "vid1"},
				 "snippet": {"title": "Intro to Go", "description": "A tour", "publishedAt": "2026-08-10T09:00:00Z"}},
				{"id": {"videoId": ""}, "snippet": {"title": "channel match, not a video"}}
			]}`))
			return
		}
		if q.Get("q") != "octocat" {
			_, _ = w.Write([]byte(`{"items": []}`))
			return
		}
		_, _ = w.Write([]byte(`{"items": [
			{"id": {"channelId": "UC123"}, "snippet": {"title": "Octocat Codes"}}
		]}`))
	})
	mux.HandleFunc("/channels", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items": [
			{"snippet": {"title": "Octocat Codes", "description": "Programming videos",
			 "customUrl": "@octocat", "publishedAt": "2015-03-01T00:00:00Z", "country": "US",
			 "thumbnails": {"default": {"url": "https://example.com/avatar.png"}}},
			 "statistics": {"viewCount": "2000000", "subscriberCount": "100000", "videoCount": "150"}}
		]}`))
	})
	return httptest.NewServer(mux)
}

// TestYouTubeCollector tests channel search and statistics collection.
func TestYouTubeCollector(t *testing.T) {
	t.Parallel()

	t.Run("missing api key returns ErrMissingCredentials", func(t *testing.T) {
		t.Parallel()
		c := NewYouTubeCollector("")
		_, err := c.Collect(context.Background(), "octocat")
		if !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("collects channel with uploads", func(t *testing.T) {
		t.Parallel()
		server := newYouTubeTestServer(t)
		defer server.Close()

		c := NewYouTubeCollector("yt-key", WithBaseURL(server.URL), WithRequestDelay(0))
		profile, err := c.Collect(context.Background(), "octocat")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if profile.Platform != model.PlatformYouTube {
			t.Errorf("expected youtube platform, got %v", profile.Platform)
		}
		if profile.Handle != "@octocat" {
			t.Errorf("expected custom URL handle, got %q", profile.Handle)
		}
		if profile.DisplayName != "Octocat Codes" {
			t.Errorf("expected channel title, got %q", profile.DisplayName)
		}
		if profile.Followers != 100000 {
			t.Errorf("expected 100000 subscribers, got %d", profile.Followers)
		}
		if profile.PostCount != 150 {
			t.Errorf("expected 150 videos, got %d", profile.PostCount)
		}
		if profile.Metadata["total_views"] != "2000000" {
			t.Errorf("expected total views metadata, got %v", profile.Metadata)
		}
		if profile.Metadata["channel_id"] != "UC123" {
			t.Errorf("expected channel id metadata, got %v", profile.Metadata)
		}

		// One video; the channelId-only search hit is skipped.
		if len(profile.Items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(profile.Items))
		}
		video := profile.Items[0]
		if video.Kind != model.ItemKindVideo || video.Title != "Intro to Go" {
			t.Errorf("unexpected video item: %+v", video)
		}
		if video.URL != "https://www.youtube.com/watch?v=vid1" {
			t.Errorf("unexpected video URL %q", video.URL)
		}
	})

	t.Run("no channel match returns ErrProfileNotFound", func(t *testing.T) {
		t.Parallel()
		server := newYouTubeTestServer(t)
		defer server.Close()

		c := NewYouTubeCollector("yt-key", WithBaseURL(server.URL), WithRequestDelay(0))
		_, err := c.Collect(context.Background(), "nobody-here")
		if !errors.Is(err, ErrProfileNotFound) {
			t.Errorf("expected ErrProfileNotFound, got %v", err)
		}
	})
}
