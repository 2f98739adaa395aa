package servicebus

import (
	"context"
	"encoding/json"
	"fmt"

	"trend-api/domain/model"
	"trend-api/domain/repository"
	"trend-api/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewServiceBus connects to a namespace (e.g. "my-ns.servicebus.windows.net") with the default
// Azure credential chain.
func NewServiceBus(ctx context.Context, namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, fmt.Errorf("service bus namespace is not configured")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	client, err := azservicebus.NewClient(namespace, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create service bus client: %w", err)
	}
	return client, nil
}

// TrendServiceBus sends trend events to a queue.
type TrendServiceBus struct {
	client *azservicebus.Client
	queue  string
}

var _ repository.IEventPublisher = (*TrendServiceBus)(nil)

func NewTrendServiceBus(client *azservicebus.Client, queue string) *TrendServiceBus {
	return &TrendServiceBus{client: client, queue: queue}
}

func newEventMessage(evt model.TrendEvent) (*azservicebus.Message, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	contentType := "application/json"
	subject := evt.Type
	return &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		Subject:     &subject,
		ApplicationProperties: map[string]interface{}{
			"region":   evt.Region,
			"category": string(evt.Category),
		},
	}, nil
}

func (s *TrendServiceBus) Publish(ctx context.Context, evt model.TrendEvent) error {
	if s.client == nil {
		return fmt.Errorf("service bus client is nil")
	}
	msg, err := newEventMessage(evt)
	if err != nil {
		return fmt.Errorf("marshal trend event: %w", err)
	}

	sender, err := s.client.NewSender(s.queue, nil)
	if err != nil {
		return fmt.Errorf("new sender for %s: %w", s.queue, err)
	}
	defer func() {
		if err := sender.Close(context.Background()); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing sender.")
		}
	}()

	if err := sender.SendMessage(ctx, msg, nil); err != nil {
		return fmt.Errorf("send %s: %w", evt.Type, err)
	}
	return nil
}
