package nlp

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sociolens/sociolens/model"
	Logger "github.com/sociolens/sociolens/utils/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultModelTimeout = 30 * time.Second

// Orchestrator runs the per-post enrichment: sentiment scoring and named
// entity extraction. Both model handles are injected at construction so
// tests substitute stubs, there is no ambient global model state.
//
// Failure isolation contract: the two sub-steps are independent, a failure
// in one never blocks the other from writing its partial result. Any
// failure is summarized into the post's nlp_error and the post is still
// stamped processed so the background sweep does not retry it forever.
type Orchestrator struct {
	db        *gorm.DB
	sentiment SentimentAnalyzer
	entities  EntityExtractor

	// Upper bound for a single model invocation.
	ModelTimeout time.Duration
}

func NewOrchestrator(db *gorm.DB, sentiment SentimentAnalyzer, entities EntityExtractor) *Orchestrator {
	return &Orchestrator{
		db:           db,
		sentiment:    sentiment,
		entities:     entities,
		ModelTimeout: DefaultModelTimeout,
	}
}

// Process enriches a single post. The returned error reports storage
// failures only, model failures are recorded on the post itself.
func (o *Orchestrator) Process(ctx context.Context, post *model.Post) error {
	now := time.Now().UTC()

	if strings.TrimSpace(post.Content) == "" {
		// Nothing to analyze, mark processed so the sweep moves on.
		post.NlpProcessedAt = &now
		post.NlpError = nil
		return o.persistOutcome(post)
	}

	failures := []string{}

	sentiment, err := o.analyzeSentiment(ctx, post.Content)
	if err != nil {
		Logger.Log.Errorf("sentiment failed for post %d: %v", post.Id, err)
		failures = append(failures, "sentiment: "+err.Error())
	} else {
		post.SentimentScore = &sentiment.Score
		post.SentimentLabel = &sentiment.Label
	}

	extracted, err := o.extractEntities(ctx, post.Content)
	if err != nil {
		Logger.Log.Errorf("entity extraction failed for post %d: %v", post.Id, err)
		failures = append(failures, "entities: "+err.Error())
	} else if err := o.storeEntities(post, extracted); err != nil {
		Logger.Log.Errorf("entity persistence failed for post %d: %v", post.Id, err)
		failures = append(failures, "entities: "+err.Error())
	}

	post.NlpProcessedAt = &now
	if len(failures) > 0 {
		msg := strings.Join(failures, "; ")
		post.NlpError = &msg
	} else {
		post.NlpError = nil
	}

	return o.persistOutcome(post)
}

// Reprocess clears a previous failure and re-runs both sub-steps. The
// entity links are keyed on (post, entity, start_pos), so re-extraction
// over unchanged content inserts nothing new.
func (o *Orchestrator) Reprocess(ctx context.Context, postId int64) (*model.Post, error) {
	post := model.Post{}
	if err := o.db.First(&post, postId).Error; err != nil {
		return nil, errors.Wrapf(err, "post %d not found", postId)
	}
	post.NlpError = nil
	if err := o.Process(ctx, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// ProcessBatch runs Process over many posts, counting outcomes. A post is
// counted failed when its nlp_error ended up set.
func (o *Orchestrator) ProcessBatch(ctx context.Context, posts []*model.Post) (succeeded, failed int) {
	for _, post := range posts {
		if err := o.Process(ctx, post); err != nil {
			Logger.Log.Errorf("cannot persist nlp outcome for post %d: %v", post.Id, err)
			failed++
			continue
		}
		if post.NlpError != nil {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

// SweepUnprocessed picks up posts that were ingested but never analyzed,
// e.g. because the process crashed between ingest and NLP.
func (o *Orchestrator) SweepUnprocessed(ctx context.Context, batchSize int) (int, error) {
	posts := []*model.Post{}
	if err := o.db.Where("nlp_processed_at IS NULL").
		Order("id asc").Limit(batchSize).Find(&posts).Error; err != nil {
		return 0, errors.Wrap(err, "cannot load unprocessed posts")
	}
	if len(posts) == 0 {
		return 0, nil
	}
	succeeded, failed := o.ProcessBatch(ctx, posts)
	Logger.Log.Infof("nlp sweep processed %d posts (%d failed)", succeeded+failed, failed)
	return len(posts), nil
}

func (o *Orchestrator) analyzeSentiment(ctx context.Context, content string) (*SentimentResult, error) {
	var res *SentimentResult
	err := o.runWithTimeout(ctx, func() error {
		var err error
		res, err = o.sentiment.Analyze(content)
		return err
	})
	return res, err
}

func (o *Orchestrator) extractEntities(ctx context.Context, content string) ([]ExtractedEntity, error) {
	var res []ExtractedEntity
	err := o.runWithTimeout(ctx, func() error {
		var err error
		res, err = o.entities.Extract(content)
		return err
	})
	return res, err
}

// runWithTimeout bounds a synchronous model call. A timeout is a
// recoverable failure like any other model error, never a process abort.
func (o *Orchestrator) runWithTimeout(ctx context.Context, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, o.ModelTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "model invocation timed out")
	case err := <-done:
		return err
	}
}

// storeEntities deduplicates and links the extracted entities. Entities are
// find-or-created on (type, normalized text), links are inserted with
// DoNothing on the (post, entity, start_pos) key so the whole operation is
// idempotent.
func (o *Orchestrator) storeEntities(post *model.Post, extracted []ExtractedEntity) error {
	for _, ent := range extracted {
		entity, err := o.getOrCreateEntity(ent)
		if err != nil {
			return err
		}

		link := model.PostEntity{
			PostId:     post.Id,
			EntityId:   entity.Id,
			StartPos:   ent.StartPos,
			EndPos:     ent.EndPos,
			Confidence: ent.Confidence,
		}
		if err := o.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return errors.Wrap(err, "cannot link entity")
		}
	}
	return nil
}

func (o *Orchestrator) getOrCreateEntity(ent ExtractedEntity) (*model.Entity, error) {
	entity := model.Entity{
		EntityType:  ent.EntityType,
		EntityText:  ent.NormalizedText,
		DisplayText: ent.Text,
	}
	// Insert-or-ignore first so concurrent extraction of the same entity
	// cannot race into a duplicate, then read whichever row won.
	if err := o.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entity).Error; err != nil {
		return nil, errors.Wrap(err, "cannot create entity")
	}
	if entity.Id == 0 {
		if err := o.db.Where("entity_type = ? AND entity_text = ?", ent.EntityType, ent.NormalizedText).
			First(&entity).Error; err != nil {
			return nil, errors.Wrap(err, "cannot load entity after upsert")
		}
	}
	return &entity, nil
}

func (o *Orchestrator) persistOutcome(post *model.Post) error {
	updates := map[string]interface{}{
		"sentiment_score":  post.SentimentScore,
		"sentiment_label":  post.SentimentLabel,
		"nlp_processed_at": post.NlpProcessedAt,
		"nlp_error":        post.NlpError,
	}
	return errors.Wrap(
		o.db.Model(&model.Post{}).Where("id = ?", post.Id).Updates(updates).Error,
		"cannot persist nlp outcome")
}
