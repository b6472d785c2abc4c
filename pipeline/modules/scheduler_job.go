package modules

import (
	"sync"
	"time"

	"github.com/sociolens/sociolens/model"
)

// Rules with a pathologically small cadence still wait at least this long
// between cycles, the platform APIs rate limit far below one request per
// second anyway.
const MinPollInterval = 10 * time.Second

// SchedulerJob is the schedule bookkeeping for one active rule. The
// scheduler periodically turns due jobs into CycleJobs on the event bus.
// SchedulerJob and CycleJob are not the same thing: SchedulerJob defines
// how/when CycleJobs are generated.
// This struct is thread-safe.
type SchedulerJob struct {
	m sync.RWMutex

	// The last time this job fired.
	lastRun time.Time

	// The next time this job should fire.
	nextRun time.Time

	// The monitoring rule this job schedules. Refreshed from the database
	// by UpsertJobs, run state survives the refresh.
	rule *model.Rule

	// How many times this job fired onto the EventBus.
	runCount int64
}

func NewSchedulerJob(rule *model.Rule) *SchedulerJob {
	return &SchedulerJob{rule: rule}
}

// NewSchedulerJobs builds one job per active rule.
func NewSchedulerJobs(rules []*model.Rule) []*SchedulerJob {
	jobs := []*SchedulerJob{}
	for _, rule := range rules {
		jobs = append(jobs, NewSchedulerJob(rule))
	}
	return jobs
}

func (j *SchedulerJob) RuleId() int32 {
	j.m.RLock()
	defer j.m.RUnlock()
	return j.rule.Id
}

func (j *SchedulerJob) Rule() *model.Rule {
	j.m.RLock()
	defer j.m.RUnlock()
	return j.rule
}

// UpdateRule swaps in a refreshed rule config while keeping run state.
func (j *SchedulerJob) UpdateRule(rule *model.Rule) {
	j.m.Lock()
	defer j.m.Unlock()
	j.rule = rule
}

func (j *SchedulerJob) HasRunBefore() bool {
	j.m.RLock()
	defer j.m.RUnlock()
	return !j.lastRun.IsZero()
}

func (j *SchedulerJob) IncrementRunCount() {
	j.m.Lock()
	defer j.m.Unlock()
	j.runCount += 1
}

func (j *SchedulerJob) RunCount() int64 {
	j.m.RLock()
	defer j.m.RUnlock()
	return j.runCount
}

// Interval is the cycle cadence derived from the rule's poll frequency,
// floored at MinPollInterval.
func (j *SchedulerJob) Interval() time.Duration {
	j.m.RLock()
	defer j.m.RUnlock()

	interval := time.Duration(j.rule.PollFrequencySec) * time.Second
	if interval < MinPollInterval {
		interval = MinPollInterval
	}
	return interval
}

// IsDue reports whether the job should fire now. A job that never ran is
// due immediately.
func (j *SchedulerJob) IsDue(now time.Time) bool {
	if !j.HasRunBefore() {
		return true
	}

	j.m.RLock()
	defer j.m.RUnlock()
	return !now.Before(j.nextRun)
}

// NextRun returns when the job fires next. Zero time for a never-run job.
func (j *SchedulerJob) NextRun() time.Time {
	j.m.RLock()
	defer j.m.RUnlock()
	return j.nextRun
}

// MarkRun updates the run bookkeeping after a fire.
func (j *SchedulerJob) MarkRun(now time.Time) {
	interval := j.Interval()

	j.m.Lock()
	defer j.m.Unlock()
	j.lastRun = now
	j.nextRun = now.Add(interval)
}
