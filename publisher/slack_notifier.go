// Package publisher pushes "new content" signals to external channels.
// Today that is a single Slack channel; the notifier consumes finished
// cycles from the event bus so the cycle executor stays unaware of it.
package publisher

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/slack-go/slack"
	"github.com/sociolens/sociolens/pipeline"
	"github.com/sociolens/sociolens/protocol"
	Logger "github.com/sociolens/sociolens/utils/log"
	"google.golang.org/protobuf/proto"
)

type SlackNotifierConfig struct {
	Name string

	// Channel id or name the notifications go to.
	Channel string
}

type SlackNotifier struct {
	Config SlackNotifierConfig

	client *slack.Client

	EventBus *gochannel.GoChannel
}

func NewSlackNotifier(config SlackNotifierConfig, client *slack.Client, e *gochannel.GoChannel) *SlackNotifier {
	return &SlackNotifier{
		Config:   config,
		client:   client,
		EventBus: e,
	}
}

// NotifyCycle posts a short summary for a cycle that produced new posts.
// Cycles without new posts are not worth a message.
func (n *SlackNotifier) NotifyCycle(result *protocol.CycleResult) error {
	if result.NewPosts == 0 {
		return nil
	}

	text := fmt.Sprintf("*%s*: %d new post(s) collected (%d observed)",
		result.RuleName, result.NewPosts, result.Collected)
	for _, platform := range result.Platforms {
		if platform.Error != "" {
			text += fmt.Sprintf("\n:warning: %s: %s", platform.Platform, platform.Error)
		}
	}

	_, _, err := n.client.PostMessage(n.Config.Channel, slack.MsgOptionText(text, false))
	return err
}

func (n *SlackNotifier) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := n.EventBus.Subscribe(ctx, pipeline.TopicFinishedCycle)
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

		if err := n.NotifyCycle(result); err != nil {
			// A flaky webhook must not affect collection, log and move on.
			Logger.Log.Errorf("cannot notify slack: %v", err)
		}
	}

	return nil
}

func (n *SlackNotifier) Name() string {
	return n.Config.Name
}

func (n *SlackNotifier) Shutdown() {}
