package modules

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/sociolens/sociolens/pipeline"
	"github.com/sociolens/sociolens/protocol"
	Logger "github.com/sociolens/sociolens/utils/log"
	"google.golang.org/protobuf/proto"
)

type OrchestratorConfig struct {
	// Name of the orchestrator.
	Name string
}

// Orchestrator consumes pending cycles from the event bus and executes
// them. Each message is handled in its own goroutine: cycles for distinct
// rules proceed concurrently, the executor's per-rule lock serializes
// cycles for the same rule.
type Orchestrator struct {
	Config OrchestratorConfig

	executor Executor

	EventBus *gochannel.GoChannel
}

// Return a new instance of Orchestrator.
func NewOrchestrator(config OrchestratorConfig, executor Executor, e *gochannel.GoChannel) *Orchestrator {
	return &Orchestrator{
		Config:   config,
		executor: executor,
		EventBus: e,
	}
}

// After a cycle finished, publish its result for the reporter and the
// notifier to consume.
func (o *Orchestrator) PublishFinishedCycle(result *protocol.CycleResult) error {
	data, err := proto.Marshal(result)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	return o.EventBus.Publish(pipeline.TopicFinishedCycle, msg)
}

func (o *Orchestrator) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := o.EventBus.Subscribe(ctx, pipeline.TopicPendingCycle)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()

		job := &protocol.CycleJob{}
		if err := proto.Unmarshal(msg.Payload, job); err != nil {
			Logger.Log.Errorf("malformed cycle job on bus: %v", err)
			continue
		}

		go func(job *protocol.CycleJob) {
			res, err := o.executor.Execute(ctx, job)
			if err != nil {
				// A failed cycle only ever affects its own rule, report and
				// move on.
				Logger.Log.Errorf("fail to execute cycle for rule %d: %v", job.RuleId, err)
				return
			}

			if err := o.PublishFinishedCycle(res); err != nil {
				Logger.Log.Errorf("fail to publish finished cycle, error: %v", err)
			}
		}(job)
	}

	return nil
}

func (o *Orchestrator) Name() string {
	return o.Config.Name
}

func (o *Orchestrator) Shutdown() {
	o.executor.Shutdown()
	Logger.Log.Infoln("Module ", o.Config.Name, " gracefully shutdown")
}
