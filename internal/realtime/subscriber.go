package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/redis"
)

// ChangeEvent is a push-side hint that a table changed. Events carry no
// ordering guarantee relative to the mutation that produced them; callers
// must treat them as cache-refresh hints, never as the source of truth for a
// write they just performed.
type ChangeEvent struct {
	Table  string `json:"table"`
	Action string `json:"action"` // insert, update, delete
	ID     uint   `json:"id"`
}

type Handler func(event ChangeEvent)

type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe registers a handler for one table's change channel and consumes
// events until the context is cancelled.
func (s *Subscriber) Subscribe(ctx context.Context, table string, handler Handler) {
	pubsub := s.client.Subscribe("changes:" + table)

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("realtime: bad event on %s: %v", table, err)
					continue
				}
				handler(event)
			}
		}
	}()
}
