package repository

import (
	"context"

	"trend-api/domain/model"
)

type IEventPublisher interface {
	Publish(ctx context.Context, event model.TrendEvent) error
}
