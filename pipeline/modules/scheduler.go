package modules

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sociolens/sociolens/model"
	Logger "github.com/sociolens/sociolens/utils/log"
	"gorm.io/gorm"
)

type SchedulerConfig struct {
	// Name of the scheduler module.
	Name string

	// How often the job set is rebuilt from the rules table. Rule edits,
	// activations and deletions take effect within this window.
	RefreshInterval time.Duration

	// How often due jobs are checked. Effectively the firing resolution.
	TickInterval time.Duration
}

// Scheduler maintains one SchedulerJob per active rule and fires due jobs
// through the injected JobDoer. Deactivating a rule removes its job on the
// next refresh; an in-flight cycle for that rule is left alone and simply
// finishes.
type Scheduler struct {
	m sync.RWMutex

	Config SchedulerConfig

	Jobs []*SchedulerJob

	db   *gorm.DB
	doer JobDoer
}

func NewScheduler(config SchedulerConfig, db *gorm.DB, doer JobDoer) *Scheduler {
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = 30 * time.Second
	}
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	return &Scheduler{
		Config: config,
		db:     db,
		doer:   doer,
	}
}

func (s *Scheduler) RunModule(ctx context.Context) error {
	if err := s.RefreshJobs(); err != nil {
		return errors.Wrap(err, "initial job refresh failed")
	}

	ticker := time.NewTicker(s.Config.TickInterval)
	defer ticker.Stop()
	lastRefresh := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if now.Sub(lastRefresh) >= s.Config.RefreshInterval {
				if err := s.RefreshJobs(); err != nil {
					// The rules table being unreadable is a resource failure,
					// keep firing the jobs we already know about.
					Logger.Log.Errorf("job refresh failed: %v", err)
				} else {
					lastRefresh = now
				}
			}
			s.FireDueJobs(now)
		}
	}
}

// RefreshJobs rebuilds the job set from the active rules in the database,
// preserving run state of unchanged rules.
func (s *Scheduler) RefreshJobs() error {
	rules := []*model.Rule{}
	if err := s.db.Where("is_active = ?", true).Order("id asc").Find(&rules).Error; err != nil {
		return err
	}

	jobs := NewSchedulerJobs(rules)
	if err := ValidateJobs(jobs); err != nil {
		return err
	}
	s.UpsertJobs(jobs)
	return nil
}

// UpsertJobs replaces the current job set with the incoming one. Jobs whose
// rule already existed keep their lastRun/nextRun and run count, only the
// rule config is swapped. Jobs absent from the incoming set are dropped.
func (s *Scheduler) UpsertJobs(jobs []*SchedulerJob) {
	s.m.Lock()
	defer s.m.Unlock()

	existing := map[int32]*SchedulerJob{}
	for _, job := range s.Jobs {
		existing[job.RuleId()] = job
	}

	merged := []*SchedulerJob{}
	for _, job := range jobs {
		if old, ok := existing[job.RuleId()]; ok {
			old.UpdateRule(job.Rule())
			merged = append(merged, old)
			continue
		}
		merged = append(merged, job)
	}
	s.Jobs = merged
}

// ValidateJobs rejects a job set that schedules the same rule twice.
func ValidateJobs(jobs []*SchedulerJob) error {
	seen := map[int32]bool{}
	for _, job := range jobs {
		if seen[job.RuleId()] {
			return fmt.Errorf("duplicate scheduler job for rule %d", job.RuleId())
		}
		seen[job.RuleId()] = true
	}
	return nil
}

// FireDueJobs hands every due job to the doer and reschedules it.
func (s *Scheduler) FireDueJobs(now time.Time) {
	s.m.RLock()
	due := []*SchedulerJob{}
	for _, job := range s.Jobs {
		if job.IsDue(now) {
			due = append(due, job)
		}
	}
	s.m.RUnlock()

	for _, job := range due {
		if err := s.doer.Do(job); err != nil {
			Logger.Log.Errorf("fail to fire cycle for rule %d: %v", job.RuleId(), err)
			continue
		}
		job.MarkRun(now)
	}
}

// JobsSnapshot returns the current jobs for status reporting.
func (s *Scheduler) JobsSnapshot() []*SchedulerJob {
	s.m.RLock()
	defer s.m.RUnlock()
	out := make([]*SchedulerJob, len(s.Jobs))
	copy(out, s.Jobs)
	return out
}

func (s *Scheduler) Name() string {
	return s.Config.Name
}

func (s *Scheduler) Shutdown() {}
