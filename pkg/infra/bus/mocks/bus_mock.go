package mocks

import (
	"context"
	"fmt"

	"github.com/caretech-io/telesession/pkg/infra/bus"
	"github.com/caretech-io/telesession/pkg/infra/bus/message"
	"github.com/stretchr/testify/mock"
)

type MockBus struct {
	mock.Mock
}

func (m *MockBus) Publish(ctx context.Context, topic string, msg message.Message) error {
	args := m.Called(ctx, topic, msg)
	return args.Error(0)
}

func (m *MockBus) SubscribePattern(
	ctx context.Context,
	pattern string,
	handler bus.Handler,
) (bus.Subscription, error) {
	args := m.Called(ctx, pattern, handler)
	sub, ok := args.Get(0).(bus.Subscription)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected bus.Subscription, got %T", args.Get(0))
	}
	return sub, args.Error(1)
}

type MockSubscription struct {
	mock.Mock
}

func (m *MockSubscription) Pattern() string {
	return m.Called().String(0)
}

func (m *MockSubscription) Unsubscribe() error {
	return m.Called().Error(0)
}
