package distributed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fluvid/internal/core/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventsChannel carries library change notifications between instances.
const EventsChannel = "fluvid:events"

type EventType string

const (
	EventVideosChanged EventType = "videos.changed"
)

type Event struct {
	Type       EventType     `json:"type"`
	InstanceID string        `json:"instance_id"`
	Timestamp  time.Time     `json:"timestamp"`
	Owner      domain.UserID `json:"owner,omitempty"`
}

// EventBus fans library changes out to the other instances so their analytics caches
// drop stale overviews. Events published by this instance are not delivered back to it.
type EventBus struct {
	client         *redis.Client
	instanceID     string
	publishTimeout time.Duration
	logger         *zap.SugaredLogger
}

func NewEventBus(client *redis.Client, instanceID string, logger *zap.SugaredLogger) *EventBus {
	return &EventBus{
		client:         client,
		instanceID:     instanceID,
		publishTimeout: 2 * time.Second,
		logger:         logger,
	}
}

func (eb *EventBus) InstanceID() string { return eb.instanceID }

func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	event.InstanceID = eb.instanceID
	event.Timestamp = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := eb.client.Publish(ctx, EventsChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	eb.logger.Debugw("published event", "type", event.Type, "owner", event.Owner)
	return nil
}

// VideosChanged publishes a change for owner. Failures are logged; other instances fall back to cache expiry.
func (eb *EventBus) VideosChanged(owner domain.UserID) {
	ctx, cancel := context.WithTimeout(context.Background(), eb.publishTimeout)
	defer cancel()

	if err := eb.Publish(ctx, Event{Type: EventVideosChanged, Owner: owner}); err != nil {
		eb.logger.Warnw("failed to broadcast library change", "owner", owner, "error", err)
	}
}

// Run delivers events from other instances to handler until ctx is cancelled.
func (eb *EventBus) Run(ctx context.Context, handler func(Event)) error {
	pubsub := eb.client.Subscribe(ctx, EventsChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", EventsChannel, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if event, ok := eb.decode(msg.Payload); ok {
				handler(event)
			}
		}
	}
}

func (eb *EventBus) decode(payload string) (Event, bool) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		eb.logger.Warnw("failed to unmarshal event", "error", err, "payload", payload)
		return Event{}, false
	}
	if event.InstanceID == eb.instanceID {
		return Event{}, false
	}
	return event, true
}
