package events

import (
	"context"

	"trend-api/domain/model"
	"trend-api/domain/repository"
	"trend-api/infrastructure/logger"
	"trend-api/infrastructure/metrics"
)

// Sink is a named publisher.
type Sink struct {
	Name      string
	Publisher repository.IEventPublisher
}

// Fanout delivers each event to every sink in order. A failing sink is logged and
// counted; it never fails the caller or stops delivery to the remaining sinks.
type Fanout struct {
	sinks []Sink
}

var _ repository.IEventPublisher = (*Fanout)(nil)

func NewFanout(sinks ...Sink) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		f.Add(s.Name, s.Publisher)
	}
	return f
}

// Add registers a sink. Nil publishers are ignored.
func (f *Fanout) Add(name string, publisher repository.IEventPublisher) {
	if publisher == nil {
		return
	}
	f.sinks = append(f.sinks, Sink{Name: name, Publisher: publisher})
}

func (f *Fanout) Len() int { return len(f.sinks) }

func (f *Fanout) Publish(ctx context.Context, evt model.TrendEvent) error {
	for _, s := range f.sinks {
		if err := s.Publisher.Publish(ctx, evt); err != nil {
			metrics.EventPublishFailures.WithLabelValues(s.Name).Inc()
			logger.GetLogger().
				WithField("sink", s.Name).
				WithField("type", evt.Type).
				WithField("error", err).
				Warn("Failed to publish trend event")
		}
	}
	return nil
}
