package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"trend-api/domain/model"
	"trend-api/domain/region"
	"trend-api/domain/repository"
	"trend-api/interfaces/middleware"

	"github.com/gin-gonic/gin"
)

// allRegions is the subscription key for streams without a region filter.
const allRegions = ""

// Hub fans trend events out to server-sent-event subscribers, optionally scoped to a region.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan model.TrendEvent]struct{}
}

var _ repository.IEventPublisher = (*Hub)(nil)

func NewTrendHub() *Hub {
	return &Hub{subs: make(map[string]map[chan model.TrendEvent]struct{})}
}

// Serve streams events for ?region= (all regions when absent). Requires an authenticated caller.
// Free callers only ever see the default region.
func (h *Hub) Serve(c *gin.Context) {
	if c.GetString(middleware.KeyUserID) == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	tier := middleware.TierFromContext(c)
	key := allRegions
	if raw := c.Query("region"); raw != "" || !tier.IsPaid() {
		key = region.LockForTier(region.Normalize(raw), tier)
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ch := make(chan model.TrendEvent, 8)
	h.addSubscriber(key, ch)
	defer h.removeSubscriber(key, ch)

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case evt := <-ch:
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			_, _ = c.Writer.Write([]byte("event: " + evt.Type + "\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Hub) addSubscriber(key string, ch chan model.TrendEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[chan model.TrendEvent]struct{})
	}
	h.subs[key][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(key string, ch chan model.TrendEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.subs[key]; subs != nil {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.subs, key)
		}
	}
}

// Subscribers reports the number of open streams.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, subs := range h.subs {
		n += len(subs)
	}
	return n
}

// Publish delivers evt to the region's subscribers and to unfiltered ones. Slow
// subscribers drop events instead of blocking the publisher.
func (h *Hub) Publish(_ context.Context, evt model.TrendEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	send := func(subs map[chan model.TrendEvent]struct{}) {
		for ch := range subs {
			select {
			case ch <- evt:
			default:
			}
		}
	}
	send(h.subs[allRegions])
	if evt.Region != "" {
		send(h.subs[evt.Region])
	}
	return nil
}
