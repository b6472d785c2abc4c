package nlp

import (
	"context"
	"os"
	"testing"

	"github.com/pkg/errors"
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

type stubAnalyzer struct {
	res *SentimentResult
	err error
}

func (s *stubAnalyzer) Analyze(text string) (*SentimentResult, error) {
	return s.res, s.err
}

type stubExtractor struct {
	ents []ExtractedEntity
	err  error
}

func (s *stubExtractor) Extract(text string) ([]ExtractedEntity, error) {
	return s.ents, s.err
}

func seedPost(t *testing.T, db *gorm.DB, content string) *model.Post {
	rule := &model.Rule{
		Name:      "rule",
		Platform:  model.PlatformBluesky,
		RuleType:  model.RuleTypeKeyword,
		RuleValue: "brandx",
		IsActive:  true,
	}
	require.Nil(t, db.Create(rule).Error)

	post := &model.Post{
		RuleId:         rule.Id,
		Platform:       model.PlatformBluesky,
		PlatformPostId: "p1",
		Content:        content,
	}
	require.Nil(t, db.Create(post).Error)
	return post
}

func mentionOf(text string, entityType string, start int32) ExtractedEntity {
	return ExtractedEntity{
		Text:           text,
		NormalizedText: NormalizeEntityText(text),
		EntityType:     entityType,
		StartPos:       start,
		EndPos:         start + int32(len(text)),
		Confidence:     1.0,
	}
}

func TestProcess_HappyPath(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	post := seedPost(t, db, "Alice praised BrandX in Berlin")

	o := NewOrchestrator(db,
		&stubAnalyzer{res: &SentimentResult{Score: 0.7, Label: model.SentimentPositive}},
		&stubExtractor{ents: []ExtractedEntity{
			mentionOf("Alice", "PERSON", 0),
			mentionOf("Berlin", "GPE", 24),
		}},
	)
	require.Nil(t, o.Process(context.Background(), post))

	fresh := model.Post{}
	require.Nil(t, db.First(&fresh, post.Id).Error)
	require.NotNil(t, fresh.SentimentScore)
	assert.Equal(t, 0.7, *fresh.SentimentScore)
	require.NotNil(t, fresh.SentimentLabel)
	assert.Equal(t, model.SentimentPositive, *fresh.SentimentLabel)
	assert.NotNil(t, fresh.NlpProcessedAt)
	assert.Nil(t, fresh.NlpError)

	var entityCount, linkCount int64
	db.Model(&model.Entity{}).Count(&entityCount)
	db.Model(&model.PostEntity{}).Count(&linkCount)
	assert.Equal(t, int64(2), entityCount)
	assert.Equal(t, int64(2), linkCount)
}

func TestProcess_SentimentFailureDoesNotBlockEntities(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	post := seedPost(t, db, "Alice praised BrandX")

	o := NewOrchestrator(db,
		&stubAnalyzer{err: errors.New("model exploded")},
		&stubExtractor{ents: []ExtractedEntity{mentionOf("Alice", "PERSON", 0)}},
	)
	require.Nil(t, o.Process(context.Background(), post))

	fresh := model.Post{}
	require.Nil(t, db.First(&fresh, post.Id).Error)
	assert.Nil(t, fresh.SentimentScore)
	assert.NotNil(t, fresh.NlpProcessedAt)
	require.NotNil(t, fresh.NlpError)
	assert.Contains(t, *fresh.NlpError, "sentiment")

	// The entity side still wrote its partial result.
	var linkCount int64
	db.Model(&model.PostEntity{}).Where("post_id = ?", post.Id).Count(&linkCount)
	assert.Equal(t, int64(1), linkCount)
}

func TestProcess_EntityFailureDoesNotBlockSentiment(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	post := seedPost(t, db, "BrandX is great")

	o := NewOrchestrator(db,
		&stubAnalyzer{res: &SentimentResult{Score: 0.5, Label: model.SentimentPositive}},
		&stubExtractor{err: errors.New("ner exploded")},
	)
	require.Nil(t, o.Process(context.Background(), post))

	fresh := model.Post{}
	require.Nil(t, db.First(&fresh, post.Id).Error)
	require.NotNil(t, fresh.SentimentScore)
	assert.Equal(t, 0.5, *fresh.SentimentScore)
	assert.NotNil(t, fresh.NlpProcessedAt)
	require.NotNil(t, fresh.NlpError)
	assert.Contains(t, *fresh.NlpError, "entities")
}

func TestProcess_EmptyContentStampsWithoutModels(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	post := seedPost(t, db, "   ")

	// Both stubs would fail loudly, they must never be reached.
	o := NewOrchestrator(db,
		&stubAnalyzer{err: errors.New("must not be called")},
		&stubExtractor{err: errors.New("must not be called")},
	)
	require.Nil(t, o.Process(context.Background(), post))

	fresh := model.Post{}
	require.Nil(t, db.First(&fresh, post.Id).Error)
	assert.NotNil(t, fresh.NlpProcessedAt)
	assert.Nil(t, fresh.NlpError)
	assert.Nil(t, fresh.SentimentScore)
}

func TestReprocess_IsIdempotentOnEntities(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	post := seedPost(t, db, "Alice praised BrandX")

	o := NewOrchestrator(db,
		&stubAnalyzer{res: &SentimentResult{Score: 0.2, Label: model.SentimentPositive}},
		&stubExtractor{ents: []ExtractedEntity{mentionOf("Alice", "PERSON", 0)}},
	)
	require.Nil(t, o.Process(context.Background(), post))

	// Same content re-derives the same (post, entity, start_pos) keys, the
	// second run inserts nothing new.
	_, err := o.Reprocess(context.Background(), post.Id)
	require.Nil(t, err)

	var entityCount, linkCount int64
	db.Model(&model.Entity{}).Count(&entityCount)
	db.Model(&model.PostEntity{}).Count(&linkCount)
	assert.Equal(t, int64(1), entityCount)
	assert.Equal(t, int64(1), linkCount)
}

func TestReprocess_ClearsPreviousFailure(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	post := seedPost(t, db, "BrandX is great")

	failing := NewOrchestrator(db,
		&stubAnalyzer{err: errors.New("model exploded")},
		&stubExtractor{},
	)
	require.Nil(t, failing.Process(context.Background(), post))

	fresh := model.Post{}
	require.Nil(t, db.First(&fresh, post.Id).Error)
	require.NotNil(t, fresh.NlpError)

	healthy := NewOrchestrator(db,
		&stubAnalyzer{res: &SentimentResult{Score: 0.3, Label: model.SentimentPositive}},
		&stubExtractor{},
	)
	reprocessed, err := healthy.Reprocess(context.Background(), post.Id)
	require.Nil(t, err)
	assert.Nil(t, reprocessed.NlpError)

	require.Nil(t, db.First(&fresh, post.Id).Error)
	assert.Nil(t, fresh.NlpError)
	require.NotNil(t, fresh.SentimentScore)
	assert.Equal(t, 0.3, *fresh.SentimentScore)
}

func TestSweepUnprocessed(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	post := seedPost(t, db, "BrandX is great")

	o := NewOrchestrator(db,
		&stubAnalyzer{res: &SentimentResult{Score: 0.4, Label: model.SentimentPositive}},
		&stubExtractor{},
	)

	swept, err := o.SweepUnprocessed(context.Background(), 100)
	require.Nil(t, err)
	assert.Equal(t, 1, swept)

	fresh := model.Post{}
	require.Nil(t, db.First(&fresh, post.Id).Error)
	assert.NotNil(t, fresh.NlpProcessedAt)

	// Already-stamped posts are never picked up again.
	swept, err = o.SweepUnprocessed(context.Background(), 100)
	require.Nil(t, err)
	assert.Equal(t, 0, swept)
}
