package modules

import (
	"context"
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/sociolens/sociolens/pipeline"
	"github.com/sociolens/sociolens/protocol"
	Logger "github.com/sociolens/sociolens/utils/log"
	"google.golang.org/protobuf/proto"
)

const (
	metricCycleCollected = "sociolens.cycle.collected"
	metricCycleNewPosts  = "sociolens.cycle.new_posts"
	metricCycleFailure   = "sociolens.cycle.platform_failure"
	metricCycleDuration  = "sociolens.cycle.duration"
)

type ReporterConfig struct {
	Name string
}

// Reporter's job is to listen to finished cycles and aggregate results,
// sending to Datadog (or other service if there's any) for monitoring
// purpose.
type Reporter struct {
	Config ReporterConfig

	Statsd *statsd.Client

	EventBus *gochannel.GoChannel
}

func NewReporter(config ReporterConfig, statsd *statsd.Client, e *gochannel.GoChannel) *Reporter {
	return &Reporter{
		Config:   config,
		Statsd:   statsd,
		EventBus: e,
	}
}

// ReportCycleResult emits per-platform counters and the whole cycle timing.
func ReportCycleResult(result *protocol.CycleResult, client *statsd.Client) {
	ruleTag := fmt.Sprintf("rule:%d", result.RuleId)
	triggerTag := "trigger:" + result.Trigger

	for _, platform := range result.Platforms {
		tags := []string{ruleTag, triggerTag, "platform:" + platform.Platform}
		if platform.Error != "" {
			if err := client.Incr(metricCycleFailure, tags, 1); err != nil {
				Logger.Log.Infoln("cannot report platform failure")
			}
			continue
		}
		client.Count(metricCycleCollected, int64(platform.Collected), tags, 1)
		client.Count(metricCycleNewPosts, int64(platform.NewPosts), tags, 1)
	}

	if err := client.Timing(metricCycleDuration,
		time.Duration(result.DurationMs)*time.Millisecond,
		[]string{ruleTag, triggerTag}, 1); err != nil {
		Logger.Log.Infoln("cannot report cycle duration")
	}
}

func (r *Reporter) ProcessFinishedCycles(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := r.EventBus.Subscribe(ctx, pipeline.TopicFinishedCycle)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()

		result := &protocol.CycleResult{}
		if err := proto.Unmarshal(msg.Payload, result); err != nil {
			Logger.Log.Errorf("malformed cycle result on bus: %v", err)
			continue
		}

		ReportCycleResult(result, r.Statsd)
	}

	return nil
}

func (r *Reporter) RunModule(ctx context.Context) error {
	r.ProcessFinishedCycles(ctx)
	return nil
}

func (r *Reporter) Name() string {
	return r.Config.Name
}

func (r *Reporter) Shutdown() {}
