package mocks

import (
	"context"
	"fmt"

	"github.com/caretech-io/telesession/pkg/infra/directory"
	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetParticipant(ctx context.Context, uuid string) (*directory.Participant, error) {
	args := m.Called(ctx, uuid)
	participant, ok := args.Get(0).(*directory.Participant)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *directory.Participant, got %T", args.Get(0))
	}
	return participant, args.Error(1)
}

func (m *MockClient) GetUser(ctx context.Context, uuid string) (*directory.User, error) {
	args := m.Called(ctx, uuid)
	user, ok := args.Get(0).(*directory.User)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *directory.User, got %T", args.Get(0))
	}
	return user, args.Error(1)
}
