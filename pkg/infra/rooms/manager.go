package rooms

import (
	"context"
)

// Room describes a running real-time-communication room. URL is the
// join address handed out to session members.
type Room struct {
	Key  string
	URL  string
	Port int
}

// Manager drives the external room process lifecycle. The room itself
// is an opaque capability: create it, get a join URL back, tear it down.
//
//go:generate mockery --name=Manager --dir=. --output=./mocks --filename=manager_mock.go --case=underscore --with-expecter
type Manager interface {
	CreateRoom(ctx context.Context, key, creatorID string, users, participants, devices []string) (*Room, error)
	DestroyRoom(ctx context.Context, key string) error
}
