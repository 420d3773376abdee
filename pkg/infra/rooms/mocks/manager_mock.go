package mocks

import (
	"context"
	"fmt"

	"github.com/caretech-io/telesession/pkg/infra/rooms"
	"github.com/stretchr/testify/mock"
)

type MockManager struct {
	mock.Mock
}

func (m *MockManager) CreateRoom(
	ctx context.Context,
	key, creatorID string,
	users, participants, devices []string,
) (*rooms.Room, error) {
	args := m.Called(ctx, key, creatorID, users, participants, devices)
	room, ok := args.Get(0).(*rooms.Room)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *rooms.Room, got %T", args.Get(0))
	}
	return room, args.Error(1)
}

func (m *MockManager) DestroyRoom(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
