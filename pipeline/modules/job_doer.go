package modules

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/sociolens/sociolens/pipeline"
	"github.com/sociolens/sociolens/protocol"
	"google.golang.org/protobuf/proto"
)

// JobDoer executes a due SchedulerJob with customized logic. We create this
// abstraction so that we could inject different JobDoer implementation into
// scheduler for the ease of testing and debugging.
type JobDoer interface {
	// Performs a SchedulerJob, return error if there's any.
	Do(job *SchedulerJob) error
}

// CycleJobDoer converts a due SchedulerJob into a CycleJob and publishes it
// on the event bus for the cycle orchestrator.
type CycleJobDoer struct {
	EventBus *gochannel.GoChannel
}

func NewCycleJobDoer(e *gochannel.GoChannel) *CycleJobDoer {
	return &CycleJobDoer{EventBus: e}
}

func (d *CycleJobDoer) Do(job *SchedulerJob) error {
	cycleJob := &protocol.CycleJob{
		JobId:   uuid.NewString(),
		RuleId:  job.RuleId(),
		Trigger: pipeline.TriggerScheduled,
	}

	data, err := proto.Marshal(cycleJob)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := d.EventBus.Publish(pipeline.TopicPendingCycle, msg); err != nil {
		return err
	}

	job.IncrementRunCount()

	return nil
}

// Test only, print the to-be executed job
type PrinterJobDoer struct{}

func (d *PrinterJobDoer) Do(job *SchedulerJob) error {
	log.Println("would fire cycle for rule", job.RuleId())

	job.IncrementRunCount()

	return nil
}
