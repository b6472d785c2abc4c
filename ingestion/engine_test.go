package ingestion

import (
	"os"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sociolens/sociolens/collector"
	"github.com/sociolens/sociolens/model"
	"github.com/sociolens/sociolens/utils"
	"github.com/sociolens/sociolens/utils/dotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func createTestRule(t *testing.T, db *gorm.DB) *model.Rule {
	rule := &model.Rule{
		Name:             "brand monitoring",
		Platform:         model.PlatformBluesky,
		RuleType:         model.RuleTypeKeyword,
		RuleValue:        "brandx",
		IsActive:         true,
		PollFrequencySec: 300,
	}
	require.Nil(t, db.Create(rule).Error)
	return rule
}

func rawPost(id string, likes int32) collector.RawPost {
	posted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return collector.RawPost{
		PlatformPostId:    id,
		AuthorHandle:      "alice.bsky.social",
		AuthorDisplayName: "Alice",
		Content:           "I really like brandx",
		PostUrl:           "https://bsky.app/profile/alice.bsky.social/post/" + id,
		LikesCount:        likes,
		RepliesCount:      1,
		PostCreatedAt:     &posted,
	}
}

func TestIngest_InsertsNewPost(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	rule := createTestRule(t, db)
	engine := NewEngine(db)

	ingested, err := engine.Ingest(rule, model.PlatformBluesky, []collector.RawPost{rawPost("p1", 5)})
	require.Nil(t, err)
	require.Len(t, ingested, 1)
	assert.True(t, ingested[0].IsNew)

	post := model.Post{}
	require.Nil(t, db.Where("platform_post_id = ?", "p1").First(&post).Error)
	assert.Equal(t, rule.Id, post.RuleId)
	assert.Equal(t, model.PlatformBluesky, post.Platform)
	assert.Equal(t, "I really like brandx", post.Content)
	assert.Equal(t, int32(5), post.LikesCount)
	assert.False(t, post.CollectedAt.IsZero())
	assert.Nil(t, post.SentimentScore)
	assert.Nil(t, post.NlpProcessedAt)
}

func TestIngest_ReobservationRefreshesEngagementOnly(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	rule := createTestRule(t, db)
	engine := NewEngine(db)

	ingested, err := engine.Ingest(rule, model.PlatformBluesky, []collector.RawPost{rawPost("p1", 5)})
	require.Nil(t, err)
	require.True(t, ingested[0].IsNew)

	// Simulate completed analysis in between two observations.
	score := 0.5
	label := model.SentimentPositive
	now := time.Now().UTC()
	require.Nil(t, db.Model(&model.Post{}).Where("id = ?", ingested[0].Post.Id).Updates(map[string]interface{}{
		"sentiment_score":  score,
		"sentiment_label":  label,
		"nlp_processed_at": now,
	}).Error)

	// Same post seen again, likes went from 5 to 12 and the content
	// pretends to have changed.
	again := rawPost("p1", 12)
	again.Content = "edited content must not win"
	ingested, err = engine.Ingest(rule, model.PlatformBluesky, []collector.RawPost{again})
	require.Nil(t, err)
	require.Len(t, ingested, 1)
	assert.False(t, ingested[0].IsNew)

	post := model.Post{}
	require.Nil(t, db.Where("platform_post_id = ?", "p1").First(&post).Error)
	assert.Equal(t, int32(12), post.LikesCount)
	assert.Equal(t, "I really like brandx", post.Content)
	require.NotNil(t, post.SentimentScore)
	assert.Equal(t, score, *post.SentimentScore)
	require.NotNil(t, post.SentimentLabel)
	assert.Equal(t, label, *post.SentimentLabel)
	assert.NotNil(t, post.NlpProcessedAt)

	var count int64
	db.Model(&model.Post{}).Where("platform_post_id = ?", "p1").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestIngest_DuplicateInsertRaceResolvesAsUpdate(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	rule := createTestRule(t, db)
	engine := NewEngine(db)

	// Sneak a competing row in after the engine's lookup missed but before
	// its insert runs, the way an overlapping manual cycle would.
	raced := false
	err := db.Callback().Create().Before("gorm:create").Register("competing_cycle", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "posts" {
			return
		}
		raced = true
		competitor := model.Post{
			RuleId:         rule.Id,
			Platform:       model.PlatformBluesky,
			PlatformPostId: "p1",
			Content:        "I really like brandx",
			LikesCount:     7,
			CollectedAt:    time.Now().UTC(),
		}
		require.Nil(t, db.Create(&competitor).Error)
	})
	require.Nil(t, err)

	ingested, err := engine.Ingest(rule, model.PlatformBluesky, []collector.RawPost{rawPost("p1", 12)})
	require.Nil(t, err)
	require.Len(t, ingested, 1)
	assert.True(t, raced)
	assert.False(t, ingested[0].IsNew)
	assert.Equal(t, int32(12), ingested[0].Post.LikesCount)

	post := model.Post{}
	require.Nil(t, db.Where("platform_post_id = ?", "p1").First(&post).Error)
	assert.Equal(t, int32(12), post.LikesCount)

	var count int64
	db.Model(&model.Post{}).Where("platform_post_id = ?", "p1").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, isDuplicateKeyError(&pq.Error{Code: "23505"}))
	assert.True(t, isDuplicateKeyError(errors.Wrap(&pq.Error{Code: "23505"}, "post insert failed")))
	assert.True(t, isDuplicateKeyError(errors.New(
		`ERROR: duplicate key value violates unique constraint "uq_platform_post" (SQLSTATE 23505)`)))
	assert.False(t, isDuplicateKeyError(errors.New("connection refused")))
}

func TestIngest_SamePostIdOnDifferentPlatforms(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	rule := createTestRule(t, db)
	engine := NewEngine(db)

	_, err := engine.Ingest(rule, model.PlatformBluesky, []collector.RawPost{rawPost("shared", 1)})
	require.Nil(t, err)
	ingested, err := engine.Ingest(rule, model.PlatformTwitter, []collector.RawPost{rawPost("shared", 1)})
	require.Nil(t, err)

	assert.True(t, ingested[0].IsNew)

	var count int64
	db.Model(&model.Post{}).Where("platform_post_id = ?", "shared").Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestFinalizeCycle_StampsAndLatches(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	rule := createTestRule(t, db)
	engine := NewEngine(db)

	require.Nil(t, engine.FinalizeCycle(rule, 3))

	fresh := model.Rule{}
	require.Nil(t, db.First(&fresh, rule.Id).Error)
	assert.True(t, fresh.HasNewContent)
	assert.NotNil(t, fresh.LastPolledAt)

	firstPoll := *fresh.LastPolledAt

	// An empty cycle refreshes the poll stamp but never clears the flag.
	time.Sleep(10 * time.Millisecond)
	require.Nil(t, engine.FinalizeCycle(rule, 0))

	require.Nil(t, db.First(&fresh, rule.Id).Error)
	assert.True(t, fresh.HasNewContent)
	assert.True(t, fresh.LastPolledAt.After(firstPoll))
}
