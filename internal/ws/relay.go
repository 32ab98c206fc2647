package ws

import (
	"context"
	"encoding/json"
	"time"

	"nearby/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const EventsChannel = "nearby:events"

type envelope struct {
	RecipientID string       `json:"recipient_id"`
	Event       MessageEvent `json:"event"`
}

// Relay fans message events out to every instance over Redis pub/sub so a
// recipient connected elsewhere still gets them. Each instance delivers to
// its own hub from Run.
type Relay struct {
	client  redis.UniversalClient
	hub     *Hub
	channel string
	log     *zap.Logger
}

func NewRelay(client redis.UniversalClient, hub *Hub, log *zap.Logger) *Relay {
	return &Relay{client: client, hub: hub, channel: EventsChannel, log: log}
}

// NotifyMessage implements service.Notifier. When publishing fails the event
// is delivered to local connections only.
func (r *Relay) NotifyMessage(recipientID string, m models.Message) {
	data, err := json.Marshal(envelope{RecipientID: recipientID, Event: newMessageEvent(m)})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		r.log.Warn("publish event failed; delivering locally", zap.Error(err))
		r.hub.NotifyMessage(recipientID, m)
	}
}

// Run subscribes and forwards events to the hub until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.log.Debug("dropping malformed event", zap.Error(err))
				continue
			}
			r.hub.BroadcastToUser(env.RecipientID, env.Event)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
