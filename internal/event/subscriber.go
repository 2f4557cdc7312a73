package event

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel upstream services publish to
const DefaultChannel = "notification-events"

// Subscriber listens on a Redis pub/sub channel and forwards every event to
// a Sender. Delivery is at-least-once upstream; there is no dedup, retry or
// ordering here.
type Subscriber struct {
	client  *redis.Client
	channel string
	sender  Sender
	logger  *log.Logger
}

// NewSubscriber creates a subscriber for channel. A nil logger uses the
// standard logger.
func NewSubscriber(client *redis.Client, channel string, sender Sender, logger *log.Logger) *Subscriber {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Subscriber{
		client:  client,
		channel: channel,
		sender:  sender,
		logger:  logger,
	}
}

// Run subscribes and processes messages until ctx is cancelled or the
// subscription channel closes.
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	// Wait for the subscription confirmation so failures surface here.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.channel, err)
	}
	s.logger.Printf("Listening for notification events on %s", s.channel)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			s.Handle(ctx, []byte(msg.Payload))
		}
	}
}

// Handle decodes one payload and hands it to the sender. Malformed payloads
// and send failures are logged and dropped; it reports whether the event
// was delivered.
func (s *Subscriber) Handle(ctx context.Context, payload []byte) bool {
	evt, err := Decode(payload)
	if err != nil {
		s.logger.Printf("Dropping notification event: %v", err)
		return false
	}

	if err := s.sender.SendNotification(ctx, evt); err != nil {
		s.logger.Printf("Failed to send notification to user %d: %v", evt.UserID, err)
		return false
	}
	return true
}
