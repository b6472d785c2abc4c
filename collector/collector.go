package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sociolens/sociolens/model"
)

// RawPost is a platform-native search result normalized onto the fixed
// field set the ingestion engine understands. Counters a platform does not
// expose stay at their zero value.
type RawPost struct {
	PlatformPostId    string
	AuthorHandle      string
	AuthorDisplayName string
	AuthorAvatarUrl   string
	Content           string
	PostUrl           string

	LikesCount   int32
	RepliesCount int32
	RepostsCount int32
	QuotesCount  int32
	ViewsCount   int32
	SharesCount  int32
	ClicksCount  int32

	PostCreatedAt *time.Time

	// Platform payload as returned by the API, persisted verbatim on first
	// insert for debugging and backfills of new columns.
	RawData []byte
}

// Page is one page of search results. An empty NextCursor means the
// platform signalled end of results.
type Page struct {
	Posts      []RawPost
	NextCursor string
}

// PlatformCollector turns a monitoring rule into platform search requests
// and returns normalized pages. Implementations must be side effect free:
// all writes happen in the ingestion engine, all cursor bookkeeping in the
// cycle executor. New platforms are added by implementing this interface
// and registering the instance, there is no shared base state.
type PlatformCollector interface {
	// Platform returns the platform name this collector serves, matching
	// model.Platform* constants.
	Platform() string

	// IsConfigured reports whether the credentials required by this platform
	// are present. Unconfigured collectors fail their cycles loudly without
	// being retried into the platform API.
	IsConfigured() bool

	// TestConnection performs a cheap authenticated call to verify the
	// credentials actually work.
	TestConnection(ctx context.Context) error

	// FetchPage fetches a single page of at most limit posts for the rule.
	// An empty cursor requests the newest page. The returned page's
	// NextCursor is "" when the platform has no further pages.
	FetchPage(ctx context.Context, rule *model.Rule, cursor string, limit int) (*Page, error)
}

// Registry maps platform names to their collector instance.
type Registry struct {
	collectors map[string]PlatformCollector
}

func NewRegistry(collectors ...PlatformCollector) *Registry {
	r := &Registry{collectors: map[string]PlatformCollector{}}
	for _, c := range collectors {
		r.collectors[c.Platform()] = c
	}
	return r
}

// Get returns the collector for one concrete platform.
func (r *Registry) Get(platform string) (PlatformCollector, error) {
	c, ok := r.collectors[platform]
	if !ok {
		return nil, fmt.Errorf("no collector registered for platform %q", platform)
	}
	return c, nil
}

// ForRule expands the rule's platform scope into registered collectors.
// Unknown platforms in an "all" scope are skipped silently since the scope
// just means "everything we have".
func (r *Registry) ForRule(rule *model.Rule) ([]PlatformCollector, error) {
	if rule.Platform == model.PlatformAll {
		out := []PlatformCollector{}
		for _, c := range r.collectors {
			out = append(out, c)
		}
		return out, nil
	}
	c, err := r.Get(rule.Platform)
	if err != nil {
		return nil, err
	}
	return []PlatformCollector{c}, nil
}

// Platforms lists all registered platform names.
func (r *Registry) Platforms() []string {
	names := []string{}
	for name := range r.collectors {
		names = append(names, name)
	}
	return names
}

// BuildSearchQuery translates the rule into the search term sent to a
// platform. The hashtag marker and the mention @-prefix are only added
// when the operator did not already type them.
func BuildSearchQuery(rule *model.Rule) string {
	switch rule.RuleType {
	case model.RuleTypeHashtag:
		if strings.HasPrefix(rule.RuleValue, "#") {
			return rule.RuleValue
		}
		return "#" + rule.RuleValue
	case model.RuleTypeMention:
		return "@" + strings.TrimPrefix(rule.RuleValue, "@")
	default:
		// Keyword searches the content verbatim.
		return rule.RuleValue
	}
}
