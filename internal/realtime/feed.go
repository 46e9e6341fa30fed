package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// ordersChannel carries one event per order mutation
const ordersChannel = "orders.changes"

// Event describes a change to a single order. It carries just enough for a
// subscriber to decide whether its scope is affected; consumers re-query the
// full view rather than patching from the payload.
type Event struct {
	OrderID  string  `json:"order_id"`
	BuyerID  string  `json:"buyer_id"`
	VendorID string  `json:"vendor_id"`
	RunnerID *string `json:"runner_id,omitempty"`
	Status   string  `json:"status"`
}

// Feed is the order change feed over redis Pub/Sub
type Feed struct {
	client *redis.Client
}

// NewFeed creates new Feed instance
func NewFeed(client *redis.Client) *Feed {
	return &Feed{client: client}
}

// PublishOrderChange publishes ev to the orders channel
func (f *Feed) PublishOrderChange(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return f.client.Publish(ctx, ordersChannel, payload).Err()
}

// Subscribe opens a subscription to the orders channel. The returned stop
// function tears the subscription down and closes the event channel.
func (f *Feed) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	pubsub := f.client.Subscribe(ctx, ordersChannel)

	// force the SUBSCRIBE round-trip so a dead broker fails here, not silently
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	out := make(chan Event)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() { pubsub.Close() }

	return out, stop, nil
}
