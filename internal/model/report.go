package model

import (
	"sort"
	"sync"
	"time"
)

// ProfileReport is the main collection result structure.
// It contains all information collected for one subject across platforms.
//
// Design decision: We use a single report holding per-platform profile
// blocks rather than one report per platform because the fingerprint
// analysis is inherently cross-platform: handle reuse, bio links and
// dimension scores only make sense over the whole set.
type ProfileReport struct {
	// Subject is the username the collection was started with.
	// Per-platform overrides may resolve to different handles.
	Subject string `json:"subject"`

	// DateCollected is the timestamp when the collection was performed.
	DateCollected time.Time `json:"date_collected"`

	// Profiles maps platforms to their collected profile data.
	// A platform is absent if it was not selected or nothing was found.
	Profiles map[Platform]*PlatformProfile `json:"profiles,omitempty"`

	// PerformedCollections lists the platforms that were actually attempted.
	PerformedCollections []string `json:"performed_collections,omitempty"`

	// Fingerprint contains the derived exposure signals and dimension
	// scores for human-readable output.
	Fingerprint *Fingerprint `json:"fingerprint,omitempty"`

	// TimedOut is true if the collection was terminated due to timeout.
	TimedOut bool `json:"timed_out"`

	// Error contains any error that occurred during collection.
	// Only set if the collection failed or partially failed.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional

	// mu guards Profiles. Collection steps may run concurrently and each
	// records its profile through AddProfile.
	mu sync.Mutex
}

// PlatformProfile is the normalized profile data collected from one platform.
// Collectors map platform-specific API responses into this shape so that
// fingerprinting and reporting never deal with raw payloads.
type PlatformProfile struct {
	// Platform identifies where this profile was collected.
	Platform Platform `json:"platform"`

	// Handle is the resolved username on the platform.
	Handle string `json:"handle"`

	// DisplayName is the profile display name, if distinct from Handle.
	DisplayName string `json:"display_name,omitempty"`

	// Bio is the profile description or about text.
	Bio string `json:"bio,omitempty"`

	// Location is the free-form location field, if disclosed.
	Location string `json:"location,omitempty"`

	// Website is the profile website link, if any.
	Website string `json:"website,omitempty"`

	// AvatarURL is the profile image URL.
	AvatarURL string `json:"avatar_url,omitempty"`

	// Email is a publicly disclosed email address, if any.
	Email string `json:"email,omitempty"`

	// Company is the disclosed employer or organization, if any.
	Company string `json:"company,omitempty"`

	// ProfileURL is the canonical public URL of the profile.
	ProfileURL string `json:"profile_url,omitempty"`

	// CreatedAt is when the account was created, when the platform exposes it.
	CreatedAt time.Time `json:"created_at,omitzero"`

	// === Audience statistics ===

	// Followers is the follower/subscriber count.
	Followers int `json:"followers"`

	// Following is the number of accounts the subject follows.
	Following int `json:"following"`

	// PostCount is the platform-reported total of public items.
	PostCount int `json:"post_count"`

	// Reputation is the platform score: Stack Overflow reputation,
	// Reddit karma, or zero where no such concept exists.
	Reputation int64 `json:"reputation,omitempty"`

	// === Collected content ===

	// Items contains the collected public items (posts, repos, answers,
	// videos, articles, messages), newest first where the API allows it.
	Items []Item `json:"items,omitempty"`

	// Languages maps programming languages to repository counts (GitHub).
	Languages map[string]int `json:"languages,omitempty"`

	// Badges maps badge tiers to counts (Stack Overflow: gold/silver/bronze).
	Badges map[string]int `json:"badges,omitempty"`

	// Metadata holds platform-specific fields that don't fit the
	// normalized shape but are worth keeping for analysis.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ItemKind classifies a collected item.
type ItemKind string

// Item kind constants.
const (
	// ItemKindPost is a generic social post (Bluesky, Mastodon, Telegram).
	ItemKindPost ItemKind = "post"
	// ItemKindRepository is a source repository (GitHub).
	ItemKindRepository ItemKind = "repository"
	// ItemKindQuestion is a Q&A question (Stack Overflow).
	ItemKindQuestion ItemKind = "question"
	// ItemKindAnswer is a Q&A answer (Stack Overflow).
	ItemKindAnswer ItemKind = "answer"
	// ItemKindVideo is an uploaded video (YouTube).
	ItemKindVideo ItemKind = "video"
	// ItemKindArticle is a long-form article (Medium).
	ItemKindArticle ItemKind = "article"
	// ItemKindComment is a comment or reply (Reddit).
	ItemKindComment ItemKind = "comment"
	// ItemKindSubmission is a link or text submission (Reddit).
	ItemKindSubmission ItemKind = "submission"
	// ItemKindEvent is a public activity event (GitHub).
	ItemKindEvent ItemKind = "event"
)

// Item is one collected public item, normalized across platforms.
type Item struct {
	// Kind classifies the item.
	Kind ItemKind `json:"kind"`

	// Title is the item title, when the platform has one.
	Title string `json:"title,omitempty"`

	// Text is the item body or excerpt. Collectors truncate long bodies.
	Text string `json:"text,omitempty"`

	// URL is the canonical public link to the item.
	URL string `json:"url,omitempty"`

	// CreatedAt is the item publication time.
	CreatedAt time.Time `json:"created_at,omitzero"`

	// Score is the platform vote metric: stars, upvotes, likes.
	Score int `json:"score"`

	// Replies is the reply/comment/answer count on the item.
	Replies int `json:"replies,omitempty"`

	// Views is the view count where the platform exposes it.
	Views int64 `json:"views,omitempty"`

	// Tags contains topic tags or categories attached to the item.
	Tags []string `json:"tags,omitempty"`

	// Language is the primary programming language (repositories).
	Language string `json:"language,omitempty"`
}

// NewProfileReport creates a new report for the given subject.
func NewProfileReport(subject string) *ProfileReport {
	return &ProfileReport{
		Subject:       subject,
		DateCollected: time.Now(),
		Profiles:      make(map[Platform]*PlatformProfile),
	}
}

// AddProfile records a collected platform profile on the report.
// It is safe to call from concurrent collection steps.
func (r *ProfileReport) AddProfile(profile *PlatformProfile) {
	if profile == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Profiles == nil {
		r.Profiles = make(map[Platform]*PlatformProfile)
	}
	r.Profiles[profile.Platform] = profile
}

// Profile retrieves the collected profile for a platform.
// Returns nil if the platform was not collected.
func (r *ProfileReport) Profile(p Platform) *PlatformProfile {
	return r.Profiles[p]
}

// PlatformsFound returns the platforms with collected profiles in
// stable order.
func (r *ProfileReport) PlatformsFound() []Platform {
	platforms := make([]Platform, 0, len(r.Profiles))
	for p := range r.Profiles {
		platforms = append(platforms, p)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	return platforms
}

// AddSignal adds an exposure signal to the fingerprint.
// If the fingerprint doesn't exist, it initializes one.
//
// Design decision: We store signals in Fingerprint rather than a
// separate slice because:
// 1. Fingerprint already has signal aggregation logic
// 2. Avoids duplication of signal data
// 3. Keeps the main report focused on raw collected data
func (r *ProfileReport) AddSignal(signal Signal) {
	if r.Fingerprint == nil {
		r.Fingerprint = NewFingerprint(r.Subject, r.DateCollected)
	}
	r.Fingerprint.AddSignal(signal)
}
