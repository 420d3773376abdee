package mocks

import (
	"context"
	"fmt"

	"github.com/caretech-io/telesession/pkg/domain/session"
	"github.com/caretech-io/telesession/pkg/infra/registry"
	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateSession(ctx context.Context, req registry.CreateSessionRequest) (*registry.Record, error) {
	args := m.Called(ctx, req)
	return toRecord(args)
}

func (m *MockClient) GetSessionWithEvents(ctx context.Context, id string) (*registry.Record, error) {
	args := m.Called(ctx, id)
	return toRecord(args)
}

func (m *MockClient) UpdateMembership(ctx context.Context, id string, members session.Members) (*registry.Record, error) {
	args := m.Called(ctx, id, members)
	return toRecord(args)
}

func (m *MockClient) CompleteSession(ctx context.Context, id string, durationSeconds int) (*registry.Record, error) {
	args := m.Called(ctx, id, durationSeconds)
	return toRecord(args)
}

func (m *MockClient) AppendEvent(
	ctx context.Context,
	id string,
	eventType session.EventType,
	text string,
) (*session.LifecycleEvent, error) {
	args := m.Called(ctx, id, eventType, text)
	event, ok := args.Get(0).(*session.LifecycleEvent)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *session.LifecycleEvent, got %T", args.Get(0))
	}
	return event, args.Error(1)
}

func toRecord(args mock.Arguments) (*registry.Record, error) {
	record, ok := args.Get(0).(*registry.Record)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *registry.Record, got %T", args.Get(0))
	}
	return record, args.Error(1)
}
