package modules

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/sociolens/sociolens/pipeline"
	"github.com/sociolens/sociolens/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

type stubExecutor struct{}

func (s *stubExecutor) Execute(ctx context.Context, job *protocol.CycleJob) (*protocol.CycleResult, error) {
	return &protocol.CycleResult{
		JobId:    job.JobId,
		RuleId:   job.RuleId,
		Trigger:  job.Trigger,
		NewPosts: 7,
	}, nil
}

func (s *stubExecutor) Shutdown() {}

func TestOrchestrator_ExecutesAndPublishesFinishedCycle(t *testing.T) {
	eventbus := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	finished, err := eventbus.Subscribe(ctx, pipeline.TopicFinishedCycle)
	require.Nil(t, err)

	orchestrator := NewOrchestrator(OrchestratorConfig{Name: "orchestrator"}, &stubExecutor{}, eventbus)
	go orchestrator.RunModule(ctx)
	// Give RunModule a moment to subscribe before publishing; the gochannel
	// bus drops messages that have no subscriber yet.
	time.Sleep(50 * time.Millisecond)

	job := &protocol.CycleJob{JobId: "job-1", RuleId: 42, Trigger: pipeline.TriggerManual}
	data, err := proto.Marshal(job)
	require.Nil(t, err)
	require.Nil(t, eventbus.Publish(pipeline.TopicPendingCycle, message.NewMessage(watermill.NewUUID(), data)))

	select {
	case msg := <-finished:
		msg.Ack()
		result := &protocol.CycleResult{}
		require.Nil(t, proto.Unmarshal(msg.Payload, result))
		assert.Equal(t, "job-1", result.JobId)
		assert.Equal(t, int32(42), result.RuleId)
		assert.Equal(t, pipeline.TriggerManual, result.Trigger)
		assert.Equal(t, int32(7), result.NewPosts)
	case <-time.After(5 * time.Second):
		t.Fatal("no finished cycle published")
	}
}
