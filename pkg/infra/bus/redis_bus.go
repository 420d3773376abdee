package bus

import (
	"context"
	"sync"

	"github.com/caretech-io/telesession/pkg/infra/bus/message"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

type redisBus struct {
	logger *logrus.Logger
	client *redis.Client
}

func NewRedisBus(logger *logrus.Logger, client *redis.Client) Bus {
	return &redisBus{
		logger: logger,
		client: client,
	}
}

func (b *redisBus) Publish(ctx context.Context, topic string, msg message.Message) error {
	data, err := message.Encode(msg)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, topic, data).Err()
}

// SubscribePattern establishes the subscription before returning, so no
// message published afterwards can be missed. The subscription outlives
// the caller's context; it ends only on Unsubscribe.
func (b *redisBus) SubscribePattern(ctx context.Context, pattern string, handler Handler) (Subscription, error) {
	pubSub := b.client.PSubscribe(ctx, pattern)

	if _, err := pubSub.Receive(ctx); err != nil {
		_ = pubSub.Close()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	sub := &redisSubscription{
		pattern: pattern,
		pubSub:  pubSub,
		cancel:  cancel,
	}

	go b.receive(runCtx, sub, handler)

	return sub, nil
}

func (b *redisBus) receive(ctx context.Context, sub *redisSubscription, handler Handler) {
	b.logger.WithField("pattern", sub.pattern).Debug("pattern subscription active")

	for msg := range sub.pubSub.Channel() {
		select {
		case <-ctx.Done():
			return
		default:
			handler(ctx, msg.Pattern, msg.Channel, []byte(msg.Payload))
		}
	}

	b.logger.WithField("pattern", sub.pattern).Debug("pattern subscription closed")
}

type redisSubscription struct {
	pattern string
	pubSub  *redis.PubSub
	cancel  context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

func (s *redisSubscription) Pattern() string {
	return s.pattern
}

func (s *redisSubscription) Unsubscribe() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.closeErr = s.pubSub.Close()
	})
	return s.closeErr
}
