package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// getJSON performs a GET request and decodes the JSON response into v.
// Non-2xx responses are mapped to the shared collection errors where the
// status is unambiguous (404 not found, 403/429 rate limited).
func (s *settings) getJSON(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := s.get(ctx, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

// get performs a GET request and returns the response body, bounded by
// maxBodySize.
func (s *settings) get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json, text/html;q=0.9, application/xml;q=0.8, */*;q=0.5")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrProfileNotFound
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden:
		// Platforms signal anonymous rate limiting with either status.
		return nil, fmt.Errorf("%w: %s returned %d", ErrRateLimited, url, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return body, nil
}

// getJSONNext is getJSON for APIs that paginate with a Link response
// header. It returns the rel="next" URL, or "" on the last page.
func (s *settings) getJSONNext(ctx context.Context, url string, headers map[string]string, v any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrProfileNotFound
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: %s returned %d", ErrRateLimited, url, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return "", fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nextLink(resp.Header.Get("Link")), nil
}

// nextLink extracts the rel="next" URL from an RFC 8288 Link header.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		urlPart, _, found := strings.Cut(part, ";")
		if !found {
			continue
		}
		if !strings.Contains(part, `rel="next"`) && !strings.Contains(part, "rel=next") {
			continue
		}
		return strings.Trim(strings.TrimSpace(urlPart), "<>")
	}
	return ""
}

// pause waits the politeness delay between paginated requests.
// Returns early with the context error if the context is canceled.
func (s *settings) pause(ctx context.Context) error {
	if s.requestDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.requestDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseTime parses timestamps in the formats the collected APIs use.
// Returns the zero time when no format matches.
func parseTime(value string) time.Time {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		time.RFC1123Z, // RSS pubDate
		time.RFC1123,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// truncate shortens a string to at most n runes, appending an ellipsis
// marker when the original was longer. Collected post bodies are capped
// so a single verbose account cannot dominate the export.
func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
