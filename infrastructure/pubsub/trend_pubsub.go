package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"trend-api/domain/model"
	"trend-api/domain/repository"
	"trend-api/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// NewPubSub creates a Pub/Sub client for the project. An empty project id is an error so
// callers can run without the publisher.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("pubsub project id is not configured")
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return client, nil
}

// TrendPubSub publishes trend events to a single topic, creating it on first use.
type TrendPubSub struct {
	client    *pubsub.Client
	topicName string

	mu    sync.Mutex
	topic *pubsub.Topic
}

var _ repository.IEventPublisher = (*TrendPubSub)(nil)

func NewTrendPubSub(client *pubsub.Client, topicName string) *TrendPubSub {
	return &TrendPubSub{client: client, topicName: topicName}
}

func (p *TrendPubSub) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		return p.topic, nil
	}

	topic := p.client.Topic(p.topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist - creating it")
		topic, err = p.client.CreateTopic(ctx, p.topicName)
		if err != nil {
			return nil, err
		}
	}
	p.topic = topic
	return topic, nil
}

func (p *TrendPubSub) Publish(ctx context.Context, evt model.TrendEvent) error {
	if p.client == nil {
		return fmt.Errorf("pubsub client is nil")
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal trend event: %w", err)
	}
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return fmt.Errorf("ensure topic %s: %w", p.topicName, err)
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"type": evt.Type, "region": evt.Region},
	}).Get(ctx)
	if err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}

	logger.GetLogger().WithField("server ID", serverID).WithField("type", evt.Type).Debug("Trend event published")
	return nil
}

// Stop flushes pending messages.
func (p *TrendPubSub) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		p.topic.Stop()
	}
}
