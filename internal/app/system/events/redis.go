package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Channel is the Redis pub/sub channel carrying cross-instance events.
const Channel = "boardhub:events"

type wireEvent struct {
	Kind      string   `json:"kind"`
	ProjectID string   `json:"project_id"`
	Members   []string `json:"members"`
}

// Publisher publishes to the local hub and, when Redis is configured, to
// the shared channel so sibling instances rebroadcast to their own
// subscribers.
type Publisher struct {
	Hub *Hub
	RC  *redis.Client
	Log *zap.Logger
}

// Publish never fails the caller's mutation: Redis errors are logged and
// dropped, matching the no-retry policy for remote side effects.
func (p *Publisher) Publish(ctx context.Context, ev Event) {
	p.Hub.Publish(ev)

	if p.RC == nil {
		return
	}
	we := wireEvent{Kind: ev.Kind, ProjectID: ev.ProjectID.Hex()}
	for _, m := range ev.Members {
		we.Members = append(we.Members, m.Hex())
	}
	payload, err := json.Marshal(we)
	if err != nil {
		p.Log.Error("marshal event", zap.Error(err))
		return
	}
	if err := p.RC.Publish(ctx, Channel, payload).Err(); err != nil {
		p.Log.Error("publish event to redis", zap.Error(err))
	}
}

// SubscribeUpdates listens for events published by other instances and
// rebroadcasts them into the local hub. Runs until ctx is cancelled,
// reconnecting with a short sleep when the pub/sub channel closes.
func SubscribeUpdates(ctx context.Context, logger *zap.Logger, rc *redis.Client, hub *Hub) {
	for {
		sub := rc.Subscribe(ctx, Channel)
		ch := sub.Channel()
	recv:
		for {
			select {
			case <-ctx.Done():
				sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break recv
				}
				var we wireEvent
				if err := json.Unmarshal([]byte(msg.Payload), &we); err != nil {
					logger.Error("unable to parse event", zap.Error(err))
					continue
				}
				ev, err := we.toEvent()
				if err != nil {
					logger.Error("invalid event ids", zap.Error(err))
					continue
				}
				hub.Publish(ev)
			}
		}
		sub.Close()
		if ctx.Err() != nil {
			return
		}
		logger.Error("redis pubsub channel closed, reconnecting")
		time.Sleep(time.Second)
	}
}

func (we wireEvent) toEvent() (Event, error) {
	pid, err := primitive.ObjectIDFromHex(we.ProjectID)
	if err != nil {
		return Event{}, err
	}
	ev := Event{Kind: we.Kind, ProjectID: pid}
	for _, m := range we.Members {
		mid, err := primitive.ObjectIDFromHex(m)
		if err != nil {
			return Event{}, err
		}
		ev.Members = append(ev.Members, mid)
	}
	return ev, nil
}
