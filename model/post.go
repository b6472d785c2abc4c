package model

import (
	"time"

	"gorm.io/datatypes"
)

// Sentiment labels produced by the NLP orchestrator. The label is derived
// from the continuous score, see nlp.LabelForScore for the thresholding.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

/*
Post is a single collected social media post.

(Platform, PlatformPostId) is the dedup key: at most one row exists per
platform-native post, enforced by the uq_platform_post unique index. On
re-observation only the engagement counters and CollectedAt are refreshed,
content and all NLP fields stay untouched.

SentimentScore: continuous score in [-1, 1], nil until processed
SentimentLabel: "positive" | "neutral" | "negative", consistent with the
score's sign per the orchestrator thresholds
NlpProcessedAt: stamped after NLP ran, even when it failed, so the
background sweep does not retry the post forever
NlpError: human readable failure summary, nil on success
RawData: platform-native payload as collected, written on insert only
*/
type Post struct {
	Id     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RuleId int32 `gorm:"index;not null" json:"rule_id"`
	Rule   *Rule `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Platform       string `gorm:"size:50;not null;uniqueIndex:uq_platform_post" json:"platform"`
	PlatformPostId string `gorm:"size:255;not null;uniqueIndex:uq_platform_post" json:"platform_post_id"`

	AuthorHandle      string `gorm:"size:255" json:"author_handle"`
	AuthorDisplayName string `gorm:"size:255" json:"author_display_name"`
	AuthorAvatarUrl   string `json:"author_avatar_url"`
	Content           string `json:"content"`
	PostUrl           string `json:"post_url"`

	LikesCount   int32 `gorm:"default:0" json:"likes_count"`
	RepliesCount int32 `gorm:"default:0" json:"replies_count"`
	RepostsCount int32 `gorm:"default:0" json:"reposts_count"`
	QuotesCount  int32 `gorm:"default:0" json:"quotes_count"`
	ViewsCount   int32 `gorm:"default:0" json:"views_count"`
	SharesCount  int32 `gorm:"default:0" json:"shares_count"`
	ClicksCount  int32 `gorm:"default:0" json:"clicks_count"`

	SentimentScore *float64 `json:"sentiment_score"`
	SentimentLabel *string  `gorm:"size:50" json:"sentiment_label"`
	NlpProcessedAt *time.Time `json:"nlp_processed_at"`
	NlpError       *string    `json:"nlp_error"`

	PostCreatedAt *time.Time `json:"post_created_at"`
	CollectedAt   time.Time  `json:"collected_at"`

	RawData datatypes.JSON `json:"-"`

	PostEntities []*PostEntity `gorm:"foreignKey:PostId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// EngagementColumns are the only Post columns an ingestion re-observation is
// allowed to update. Everything else, content and analysis results included,
// is written exactly once.
var EngagementColumns = []string{
	"likes_count",
	"replies_count",
	"reposts_count",
	"quotes_count",
	"views_count",
	"shares_count",
	"clicks_count",
	"collected_at",
}
