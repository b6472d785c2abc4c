package collector

import (
	"context"
	"testing"

	"github.com/sociolens/sociolens/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchQuery_Keyword(t *testing.T) {
	rule := &model.Rule{RuleType: model.RuleTypeKeyword, RuleValue: "acme product"}
	assert.Equal(t, "acme product", BuildSearchQuery(rule))
}

func TestBuildSearchQuery_Hashtag(t *testing.T) {
	rule := &model.Rule{RuleType: model.RuleTypeHashtag, RuleValue: "brandx"}
	assert.Equal(t, "#brandx", BuildSearchQuery(rule))

	// Operator already typed the marker.
	rule.RuleValue = "#brandx"
	assert.Equal(t, "#brandx", BuildSearchQuery(rule))
}

func TestBuildSearchQuery_Mention(t *testing.T) {
	rule := &model.Rule{RuleType: model.RuleTypeMention, RuleValue: "acme.bsky.social"}
	assert.Equal(t, "@acme.bsky.social", BuildSearchQuery(rule))

	rule.RuleValue = "@acme.bsky.social"
	assert.Equal(t, "@acme.bsky.social", BuildSearchQuery(rule))
}

func TestParsePlatformTime(t *testing.T) {
	parsed := ParsePlatformTime("2026-03-01T12:34:56.789Z")
	require.NotNil(t, parsed)
	assert.Equal(t, 2026, parsed.Year())
	assert.Equal(t, "UTC", parsed.Location().String())

	assert.Nil(t, ParsePlatformTime(""))
	assert.Nil(t, ParsePlatformTime("not a timestamp"))
}

type fakeCollector struct {
	platform string
}

func (f *fakeCollector) Platform() string   { return f.platform }
func (f *fakeCollector) IsConfigured() bool { return true }
func (f *fakeCollector) TestConnection(ctx context.Context) error {
	return nil
}
func (f *fakeCollector) FetchPage(ctx context.Context, rule *model.Rule, cursor string, limit int) (*Page, error) {
	return &Page{}, nil
}

func TestRegistry_ForRule(t *testing.T) {
	bluesky := &fakeCollector{platform: model.PlatformBluesky}
	twitter := &fakeCollector{platform: model.PlatformTwitter}
	registry := NewRegistry(bluesky, twitter)

	cs, err := registry.ForRule(&model.Rule{Platform: model.PlatformBluesky})
	require.Nil(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, model.PlatformBluesky, cs[0].Platform())

	cs, err = registry.ForRule(&model.Rule{Platform: model.PlatformAll})
	require.Nil(t, err)
	assert.Len(t, cs, 2)

	_, err = registry.ForRule(&model.Rule{Platform: "myspace"})
	assert.NotNil(t, err)
}
