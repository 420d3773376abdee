package bus

import (
	"context"

	"github.com/caretech-io/telesession/pkg/infra/bus/message"
)

// Handler receives the payload published on a topic matched by the
// subscription's pattern. Handlers run on the subscription's receive
// goroutine and must not block on long operations.
type Handler func(ctx context.Context, pattern, topic string, payload []byte)

// Subscription is the explicit handle for a pattern subscription. It
// must be retained by the subscriber to permit later release.
type Subscription interface {
	Pattern() string
	Unsubscribe() error
}

//go:generate mockery --name=Bus --dir=. --output=./mocks --filename=bus_mock.go --case=underscore --with-expecter
type Bus interface {
	Publish(ctx context.Context, topic string, msg message.Message) error
	SubscribePattern(ctx context.Context, pattern string, handler Handler) (Subscription, error)
}
