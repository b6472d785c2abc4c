package modules

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sociolens/sociolens/collector"
	"github.com/sociolens/sociolens/ingestion"
	"github.com/sociolens/sociolens/model"
	"github.com/sociolens/sociolens/nlp"
	"github.com/sociolens/sociolens/pipeline"
	"github.com/sociolens/sociolens/protocol"
	Logger "github.com/sociolens/sociolens/utils/log"
	"gorm.io/gorm"
)

const DefaultFetchTimeout = 30 * time.Second

// Executor is in charge of cycle execution. This is the common interface
// consumed by the cycle orchestrator, stubbed out in its tests.
type Executor interface {
	Execute(ctx context.Context, job *protocol.CycleJob) (*protocol.CycleResult, error)

	// Each executor can perform shut down logic to clean up resource.
	Shutdown()
}

// CycleExecutor runs one full collection cycle for a rule:
// fetch -> ingest -> NLP -> scrape state advance, strictly in that order
// within the cycle. Cycles for distinct rules run concurrently, cycles for
// the same rule are serialized by a per-rule lock: an overlapping trigger
// (scheduled or manual) queues behind the running cycle instead of being
// rejected, so a manual "collect now" is never silently lost.
type CycleExecutor struct {
	db       *gorm.DB
	registry *collector.Registry
	ingestor *ingestion.Engine
	enricher *nlp.Orchestrator

	// Upper bound for one page fetch.
	FetchTimeout time.Duration

	ruleLocks sync.Map // int32 -> *sync.Mutex
}

func NewCycleExecutor(db *gorm.DB, registry *collector.Registry, ingestor *ingestion.Engine, enricher *nlp.Orchestrator) *CycleExecutor {
	return &CycleExecutor{
		db:           db,
		registry:     registry,
		ingestor:     ingestor,
		enricher:     enricher,
		FetchTimeout: DefaultFetchTimeout,
	}
}

func (e *CycleExecutor) ruleLock(ruleId int32) *sync.Mutex {
	lock, _ := e.ruleLocks.LoadOrStore(ruleId, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Execute runs the cycle. The returned error reports cycle level failures
// (unknown rule, unregistered platform); per-platform fetch failures are
// embedded in the result so one platform cannot abort another.
func (e *CycleExecutor) Execute(ctx context.Context, job *protocol.CycleJob) (*protocol.CycleResult, error) {
	lock := e.ruleLock(job.RuleId)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()

	rule := model.Rule{}
	if err := e.db.First(&rule, job.RuleId).Error; err != nil {
		return nil, errors.Wrapf(err, "rule %d not found", job.RuleId)
	}
	if !rule.IsActive {
		// Deactivated after the job was queued. Skip without stamping.
		Logger.Log.Infof("skipping cycle for deactivated rule %d", rule.Id)
		return &protocol.CycleResult{JobId: job.JobId, RuleId: rule.Id, RuleName: rule.Name, Trigger: job.Trigger, StartedAtMs: started.UnixNano() / int64(time.Millisecond)}, nil
	}

	collectors, err := e.registry.ForRule(&rule)
	if err != nil {
		// A rule pointing at an unknown platform is a configuration error:
		// fail the cycle loudly but keep the rule schedulable, stamping
		// last_polled_at so the staleness is visible.
		if stampErr := e.ingestor.FinalizeCycle(&rule, 0); stampErr != nil {
			Logger.Log.Errorf("cannot stamp rule %d: %v", rule.Id, stampErr)
		}
		return nil, errors.Wrapf(err, "cycle for rule %d misconfigured", rule.Id)
	}

	result := &protocol.CycleResult{
		JobId:       job.JobId,
		RuleId:      rule.Id,
		RuleName:    rule.Name,
		Trigger:     job.Trigger,
		StartedAtMs: started.UnixNano() / int64(time.Millisecond),
	}

	for _, col := range collectors {
		platformResult := e.runPlatformCycle(ctx, &rule, col)
		result.Platforms = append(result.Platforms, platformResult)
		result.Collected += platformResult.Collected
		result.NewPosts += platformResult.NewPosts
	}

	if err := e.ingestor.FinalizeCycle(&rule, int(result.NewPosts)); err != nil {
		return nil, err
	}

	result.DurationMs = time.Since(started).Milliseconds()
	return result, nil
}

// runPlatformCycle drives the two-phase pagination policy for one platform.
// INITIAL walks successive pages up to the backfill cap, STEADY fetches
// exactly one page. A fetch failure leaves the scrape state untouched so
// the next cycle retries the same cursor.
func (e *CycleExecutor) runPlatformCycle(ctx context.Context, rule *model.Rule, col collector.PlatformCollector) *protocol.PlatformCycleResult {
	platform := col.Platform()
	out := &protocol.PlatformCycleResult{Platform: platform}

	if !col.IsConfigured() {
		out.Error = "platform credentials not configured"
		Logger.Log.Errorf("rule %d: %s not configured", rule.Id, platform)
		return out
	}

	state, err := e.loadOrCreateState(rule, platform)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Phase = state.Phase

	if state.Phase == model.PhaseInitial {
		err = e.runBackfill(ctx, rule, col, state, out)
	} else {
		err = e.runSteadyPoll(ctx, rule, col, state, out)
	}
	if err != nil {
		out.Error = err.Error()
		Logger.Log.Errorf("rule %d (%s) cycle failed: %v", rule.Id, platform, err)
	}
	out.Phase = state.Phase
	return out
}

func (e *CycleExecutor) runBackfill(ctx context.Context, rule *model.Rule, col collector.PlatformCollector, state *model.ScrapeState, out *protocol.PlatformCycleResult) error {
	for state.BackfillCount < pipeline.BackfillCap {
		limit := pipeline.BackfillPageLimit
		if remaining := pipeline.BackfillCap - int(state.BackfillCount); remaining < limit {
			limit = remaining
		}

		page, err := e.fetchPage(ctx, rule, col, state.Cursor, limit)
		if err != nil {
			// State stays as-is, next cycle resumes from the same cursor.
			return err
		}

		newCount, err := e.ingestAndEnrich(ctx, rule, col.Platform(), page.Posts)
		if err != nil {
			return err
		}
		out.Collected += int32(len(page.Posts))
		out.NewPosts += int32(newCount)

		// Advance and persist the cursor only after the page was ingested:
		// a crash in between re-fetches the page and dedup absorbs it.
		state.Cursor = page.NextCursor
		state.BackfillCount += int32(len(page.Posts))

		if page.NextCursor == "" || len(page.Posts) == 0 || state.BackfillCount >= pipeline.BackfillCap {
			return e.completeBackfill(rule, state)
		}
		if err := e.db.Save(state).Error; err != nil {
			return errors.Wrap(err, "cannot persist scrape state")
		}
	}
	return e.completeBackfill(rule, state)
}

// completeBackfill flips INITIAL -> STEADY. The transition is one-way for
// the lifetime of the rule, only an explicit operator reset reverses it.
func (e *CycleExecutor) completeBackfill(rule *model.Rule, state *model.ScrapeState) error {
	state.Phase = model.PhaseSteady
	state.Cursor = ""
	if err := e.db.Save(state).Error; err != nil {
		return errors.Wrap(err, "cannot persist scrape state")
	}
	if err := e.db.Model(&model.Rule{}).Where("id = ?", rule.Id).
		Update("initial_scrape_completed", true).Error; err != nil {
		return errors.Wrap(err, "cannot mark initial scrape completed")
	}
	rule.InitialScrapeCompleted = true
	Logger.Log.Infof("rule %d (%s): initial backfill completed with %d posts", rule.Id, state.Platform, state.BackfillCount)
	return nil
}

// runSteadyPoll performs the single newest-first page fetch of a steady
// cycle. No cursor is carried between steady cycles, overlap with already
// ingested posts is the expected path and handled by the dedup key.
func (e *CycleExecutor) runSteadyPoll(ctx context.Context, rule *model.Rule, col collector.PlatformCollector, state *model.ScrapeState, out *protocol.PlatformCycleResult) error {
	page, err := e.fetchPage(ctx, rule, col, "", pipeline.SteadyPageLimit)
	if err != nil {
		return err
	}

	newCount, err := e.ingestAndEnrich(ctx, rule, col.Platform(), page.Posts)
	if err != nil {
		return err
	}
	out.Collected += int32(len(page.Posts))
	out.NewPosts += int32(newCount)

	return errors.Wrap(e.db.Save(state).Error, "cannot persist scrape state")
}

func (e *CycleExecutor) fetchPage(ctx context.Context, rule *model.Rule, col collector.PlatformCollector, cursor string, limit int) (*collector.Page, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.FetchTimeout)
	defer cancel()
	return col.FetchPage(fetchCtx, rule, cursor, limit)
}

// ingestAndEnrich upserts the page and runs NLP over the newly inserted
// posts only. Re-observed posts keep their existing analysis.
func (e *CycleExecutor) ingestAndEnrich(ctx context.Context, rule *model.Rule, platform string, posts []collector.RawPost) (int, error) {
	ingested, err := e.ingestor.Ingest(rule, platform, posts)
	if err != nil {
		return 0, err
	}

	newPosts := []*model.Post{}
	for _, p := range ingested {
		if p.IsNew {
			newPosts = append(newPosts, p.Post)
		}
	}
	if len(newPosts) > 0 {
		e.enricher.ProcessBatch(ctx, newPosts)
	}
	return len(newPosts), nil
}

func (e *CycleExecutor) loadOrCreateState(rule *model.Rule, platform string) (*model.ScrapeState, error) {
	state := model.ScrapeState{}
	err := e.db.Where("rule_id = ? AND platform = ?", rule.Id, platform).First(&state).Error
	if err == nil {
		return &state, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "cannot load scrape state")
	}

	state = model.ScrapeState{
		RuleId:   rule.Id,
		Platform: platform,
		Phase:    model.PhaseInitial,
	}
	if err := e.db.Create(&state).Error; err != nil {
		return nil, errors.Wrap(err, "cannot create scrape state")
	}
	return &state, nil
}

// ResetScrapeState is the explicit operator reset: cursor cleared, phase
// back to INITIAL, backfill counter zeroed and the rule's completion flag
// dropped. Serialized against running cycles of the same rule.
func (e *CycleExecutor) ResetScrapeState(ruleId int32) error {
	lock := e.ruleLock(ruleId)
	lock.Lock()
	defer lock.Unlock()

	states := []*model.ScrapeState{}
	if err := e.db.Where("rule_id = ?", ruleId).Find(&states).Error; err != nil {
		return errors.Wrap(err, "cannot load scrape states")
	}
	for _, state := range states {
		state.Reset()
		if err := e.db.Save(state).Error; err != nil {
			return errors.Wrap(err, "cannot reset scrape state")
		}
	}
	return errors.Wrap(
		e.db.Model(&model.Rule{}).Where("id = ?", ruleId).
			Update("initial_scrape_completed", false).Error,
		"cannot clear initial scrape flag")
}

func (e *CycleExecutor) Shutdown() {}
