package messaging

import (
	"context"
)

// Broker is a publish/subscribe channel between the API and anything
// listening for dashboard events, such as the on-call referral screen.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
