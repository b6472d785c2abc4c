package model

import (
	"time"
)

// Supported platform scopes for a Rule. PlatformAll means the rule is
// collected on every configured platform.
const (
	PlatformBluesky = "bluesky"
	PlatformTwitter = "twitter"
	PlatformAll     = "all"
)

// Rule kinds. A keyword rule searches post content verbatim, a hashtag rule
// searches the value with the platform's tag marker prefixed, a mention rule
// searches for @-references of the handle.
const (
	RuleTypeKeyword = "keyword"
	RuleTypeMention = "mention"
	RuleTypeHashtag = "hashtag"
)

/*
Rule is a persisted monitoring directive (also called a listener).

Platform: platform scope, one of "bluesky", "twitter" or "all"
RuleType: "keyword" | "mention" | "hashtag"
RuleValue: the term / handle / tag to monitor
IsActive: only active rules are scheduled
HasNewContent: set by the pipeline when a cycle ingested at least one new
post, cleared by the acknowledge operation
InitialScrapeCompleted: set once the initial backfill finished, see
ScrapeState for the pagination phase it mirrors
PollFrequencySec: collection cadence in seconds
LastPolledAt: stamped after every cycle, successful or not
*/
type Rule struct {
	Id                     int32  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                   string `gorm:"size:255;not null" json:"name"`
	Platform               string `gorm:"size:50;not null" json:"platform"`
	RuleType               string `gorm:"size:50;not null" json:"rule_type"`
	RuleValue              string `gorm:"size:500;not null" json:"rule_value"`
	IsActive               bool   `gorm:"default:true" json:"is_active"`
	HasNewContent          bool   `gorm:"default:false" json:"has_new_content"`
	InitialScrapeCompleted bool   `gorm:"default:false" json:"initial_scrape_completed"`
	PollFrequencySec       int32  `gorm:"default:300" json:"poll_frequency"`

	LastPolledAt *time.Time `json:"last_polled_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Posts        []*Post        `gorm:"foreignKey:RuleId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ScrapeStates []*ScrapeState `gorm:"foreignKey:RuleId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
