package modules

import (
	"sync"
	"testing"
	"time"

	"github.com/sociolens/sociolens/model"
	"github.com/stretchr/testify/assert"
)

func newTestRule(id int32, name string, pollFrequencySec int32) *model.Rule {
	return &model.Rule{
		Id:               id,
		Name:             name,
		Platform:         model.PlatformBluesky,
		RuleType:         model.RuleTypeKeyword,
		RuleValue:        "brandx",
		IsActive:         true,
		PollFrequencySec: pollFrequencySec,
	}
}

func TestUpsertJobs_AllNew(t *testing.T) {
	s := &Scheduler{
		m: sync.RWMutex{},
	}

	jobs := NewSchedulerJobs([]*model.Rule{
		newTestRule(1, "rule_1", 300),
		newTestRule(2, "rule_2", 300),
		newTestRule(3, "rule_3", 300),
	})
	s.UpsertJobs(jobs)

	assert.Equal(t, len(s.Jobs), 3)
	assert.Equal(t, s.Jobs[0].lastRun, time.Time{})
	assert.Equal(t, s.Jobs[2].Rule().Name, "rule_3")
}

func TestUpsertJobs_RemoveSome(t *testing.T) {
	s := &Scheduler{
		m: sync.RWMutex{},
		Jobs: NewSchedulerJobs([]*model.Rule{
			newTestRule(1, "rule_1", 300),
			newTestRule(2, "rule_2", 300),
			newTestRule(3, "rule_3", 300),
		}),
	}

	jobs := NewSchedulerJobs([]*model.Rule{
		newTestRule(1, "rule_1", 300),
		newTestRule(3, "rule_3", 300),
	})
	s.UpsertJobs(jobs)

	assert.Equal(t, len(s.Jobs), 2)
	assert.Equal(t, s.Jobs[0].Rule().Name, "rule_1")
	assert.Equal(t, s.Jobs[1].Rule().Name, "rule_3")
}

func TestUpsertJobs_UpdateOnlyRule(t *testing.T) {
	s := &Scheduler{
		m: sync.RWMutex{},
		Jobs: NewSchedulerJobs([]*model.Rule{
			newTestRule(1, "rule_1", 300),
		}),
	}

	now := time.Now()
	s.Jobs[0].lastRun = now
	s.Jobs[0].nextRun = now.Add(3 * time.Second)

	jobs := NewSchedulerJobs([]*model.Rule{
		newTestRule(1, "rule_1_renamed", 60),
	})
	s.UpsertJobs(jobs)

	assert.Equal(t, len(s.Jobs), 1)
	assert.Equal(t, s.Jobs[0].lastRun, now)
	assert.Equal(t, s.Jobs[0].nextRun, now.Add(3*time.Second))
	assert.Equal(t, s.Jobs[0].Rule().Name, "rule_1_renamed")
	assert.Equal(t, s.Jobs[0].Interval(), 60*time.Second)
}

func TestValidateJobs_DuplicateRule(t *testing.T) {
	jobs := NewSchedulerJobs([]*model.Rule{
		newTestRule(1, "rule_1", 300),
		newTestRule(2, "rule_2", 300),
		newTestRule(1, "rule_1_again", 300),
	})
	assert.NotNil(t, ValidateJobs(jobs))
}

func TestFireDueJobs_MarksRunAndReschedules(t *testing.T) {
	s := &Scheduler{
		m: sync.RWMutex{},
		Jobs: NewSchedulerJobs([]*model.Rule{
			newTestRule(1, "rule_1", 300),
			newTestRule(2, "rule_2", 300),
		}),
		doer: &PrinterJobDoer{},
	}

	now := time.Now()
	s.Jobs[1].MarkRun(now)

	s.FireDueJobs(now)

	// Only the never-run job is due, the other just ran.
	assert.Equal(t, s.Jobs[0].RunCount(), int64(1))
	assert.Equal(t, s.Jobs[1].RunCount(), int64(0))
	assert.True(t, s.Jobs[0].HasRunBefore())
	assert.Equal(t, s.Jobs[0].NextRun(), now.Add(300*time.Second))
}
