package collector

import (
	"net/http"
	"testing"
	"time"
)

// TestDefaultSettings tests the shared collector defaults.
func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := defaultSettings()
	if s.client == nil {
		t.Error("expected a default HTTP client")
	}
	if s.userAgent == "" {
		t.Error("expected a default user agent")
	}
	if s.maxItems <= 0 {
		t.Error("expected a positive default item limit")
	}
	if s.maxBodySize <= 0 {
		t.Error("expected a positive default body size limit")
	}
}

// TestOptions tests the functional options shared by all collectors.
func TestOptions(t *testing.T) {
	t.Parallel()

	t.Run("WithHTTPClient", func(t *testing.T) {
		t.Parallel()
		client := &http.Client{Timeout: time.Second}
		s := defaultSettings()
		WithHTTPClient(client)(&s)
		if s.client != client {
			t.Error("expected client to be replaced")
		}
	})

	t.Run("WithHTTPClient ignores nil", func(t *testing.T) {
		t.Parallel()
		s := defaultSettings()
		WithHTTPClient(nil)(&s)
		if s.client == nil {
			t.Error("expected default client to survive a nil option")
		}
	})

	t.Run("WithUserAgent", func(t *testing.T) {
		t.Parallel()
		s := defaultSettings()
		WithUserAgent("agent/2.0")(&s)
		if s.userAgent != "agent/2.0" {
			t.Errorf("expected custom agent, got %q", s.userAgent)
		}
	})

	t.Run("WithMaxItems", func(t *testing.T) {
		t.Parallel()
		s := defaultSettings()
		WithMaxItems(10)(&s)
		if s.maxItems != 10 {
			t.Errorf("expected 10, got %d", s.maxItems)
		}
	})

	t.Run("WithMaxItems rejects non-positive", func(t *testing.T) {
		t.Parallel()
		s := defaultSettings()
		before := s.maxItems
		WithMaxItems(0)(&s)
		if s.maxItems != before {
			t.Errorf("expected default %d to survive, got %d", before, s.maxItems)
		}
	})

	t.Run("WithRequestDelay", func(t *testing.T) {
		t.Parallel()
		s := defaultSettings()
		WithRequestDelay(0)(&s)
		if s.requestDelay != 0 {
			t.Errorf("expected zero delay, got %v", s.requestDelay)
		}
	})

	t.Run("WithRequestDelay rejects negative", func(t *testing.T) {
		t.Parallel()
		s := defaultSettings()
		before := s.requestDelay
		WithRequestDelay(-time.Second)(&s)
		if s.requestDelay != before {
			t.Errorf("expected default %v to survive, got %v", before, s.requestDelay)
		}
	})

	t.Run("WithBaseURL", func(t *testing.T) {
		t.Parallel()
		s := defaultSettings()
		WithBaseURL("http://127.0.0.1:8080")(&s)
		if s.baseURL != "http://127.0.0.1:8080" {
			t.Errorf("unexpected base URL %q", s.baseURL)
		}
	})

	t.Run("WithMaxBodySize", func(t *testing.T) {
		t.Parallel()
		s := defaultSettings()
		WithMaxBodySize(1024)(&s)
		if s.maxBodySize != 1024 {
			t.Errorf("expected 1024, got %d", s.maxBodySize)
		}
	})
}
