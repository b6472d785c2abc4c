package ingestion

import (
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sociolens/sociolens/collector"
	"github.com/sociolens/sociolens/model"
	Logger "github.com/sociolens/sociolens/utils/log"
	"gorm.io/gorm"
)

// IngestedPost is one ingestion outcome. IsNew is true only when this cycle
// inserted the row, re-observations of known posts report false.
type IngestedPost struct {
	Post  *model.Post
	IsNew bool
}

// Engine converts raw platform posts into persisted Post rows with at most
// one row per (platform, platform_post_id). The upsert is an explicit
// conditional rather than an ORM merge: insert if absent, otherwise update
// only the engagement counters. Content and analysis fields are never
// overwritten by a re-observation.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Ingest upserts every raw post of one fetched page. A failure on a single
// post is logged and skipped, it never aborts the rest of the page.
func (e *Engine) Ingest(rule *model.Rule, platform string, rawPosts []collector.RawPost) ([]IngestedPost, error) {
	out := []IngestedPost{}
	for i := range rawPosts {
		ingested, err := e.ingestOne(rule, platform, &rawPosts[i])
		if err != nil {
			Logger.Log.Errorf("fail to ingest post %s/%s: %v", platform, rawPosts[i].PlatformPostId, err)
			continue
		}
		out = append(out, *ingested)
	}
	return out, nil
}

func (e *Engine) ingestOne(rule *model.Rule, platform string, raw *collector.RawPost) (*IngestedPost, error) {
	existing := model.Post{}
	err := e.db.Where("platform = ? AND platform_post_id = ?", platform, raw.PlatformPostId).
		First(&existing).Error

	if err == nil {
		if err := e.refreshEngagement(&existing, raw); err != nil {
			return nil, err
		}
		return &IngestedPost{Post: &existing, IsNew: false}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "post lookup failed")
	}

	post := model.Post{}
	if err := copier.Copy(&post, raw); err != nil {
		return nil, errors.Wrap(err, "cannot map raw post")
	}
	post.RuleId = rule.Id
	post.Platform = platform
	post.CollectedAt = time.Now().UTC()

	if err := e.db.Create(&post).Error; err != nil {
		if !isDuplicateKeyError(err) {
			return nil, errors.Wrap(err, "post insert failed")
		}
		// Lost the race against a concurrent cycle observing the same post.
		// Resolve as update-not-insert, exactly like the plain re-observation
		// path.
		if err := e.db.Where("platform = ? AND platform_post_id = ?", platform, raw.PlatformPostId).
			First(&existing).Error; err != nil {
			return nil, errors.Wrap(err, "post lookup after duplicate insert failed")
		}
		if err := e.refreshEngagement(&existing, raw); err != nil {
			return nil, err
		}
		return &IngestedPost{Post: &existing, IsNew: false}, nil
	}

	return &IngestedPost{Post: &post, IsNew: true}, nil
}

// refreshEngagement writes the engagement counters and the collection time,
// and nothing else. The column whitelist is the contract that keeps
// content, sentiment and nlp_error intact across re-observations.
func (e *Engine) refreshEngagement(post *model.Post, raw *collector.RawPost) error {
	post.LikesCount = raw.LikesCount
	post.RepliesCount = raw.RepliesCount
	post.RepostsCount = raw.RepostsCount
	post.QuotesCount = raw.QuotesCount
	post.ViewsCount = raw.ViewsCount
	post.SharesCount = raw.SharesCount
	post.ClicksCount = raw.ClicksCount
	post.CollectedAt = time.Now().UTC()

	return errors.Wrap(
		e.db.Model(post).Select(model.EngagementColumns).Updates(post).Error,
		"engagement update failed")
}

// FinalizeCycle stamps the rule after a collection cycle: last_polled_at is
// always refreshed, has_new_content only latches to true when the cycle
// produced new posts. The flag is cleared by the acknowledge operation, not
// by later empty cycles.
func (e *Engine) FinalizeCycle(rule *model.Rule, newPosts int) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{"last_polled_at": now}
	if newPosts > 0 {
		updates["has_new_content"] = true
	}
	if err := e.db.Model(&model.Rule{}).Where("id = ?", rule.Id).Updates(updates).Error; err != nil {
		return errors.Wrap(err, "rule stamp failed")
	}
	rule.LastPolledAt = &now
	if newPosts > 0 {
		rule.HasNewContent = true
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	pqErr := &pq.Error{}
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	// The pgx based gorm driver surfaces the violation with its own error
	// type, match on the SQLSTATE text as a fallback.
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key value")
}
