package registry

import (
	"context"
	"time"

	"github.com/caretech-io/telesession/pkg/domain/session"
)

// Record is the registry's durable view of a session. The registry owns
// these records; the orchestrator only mirrors them while a session is
// active.
type Record struct {
	ID              string                   `json:"id_session"`
	UUID            string                   `json:"session_uuid"`
	CreatorUserID   string                   `json:"id_creator_user,omitempty"`
	CreatorUserName string                   `json:"session_creator_user,omitempty"`
	SessionTypeID   string                   `json:"id_session_type,omitempty"`
	StartTime       time.Time                `json:"session_start_datetime"`
	Duration        int                      `json:"session_duration"`
	Status          session.Status           `json:"session_status"`
	Users           []string                 `json:"session_users_uuids"`
	Participants    []string                 `json:"session_participants_uuids"`
	Devices         []string                 `json:"session_devices_uuids"`
	Parameters      map[string]interface{}   `json:"session_parameters,omitempty"`
	Events          []session.LifecycleEvent `json:"session_events,omitempty"`
}

type CreateSessionRequest struct {
	CreatorUserID string
	SessionTypeID string
	Users         []string
	Participants  []string
	Devices       []string
	Parameters    map[string]interface{}
}

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter
type Client interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*Record, error)
	GetSessionWithEvents(ctx context.Context, id string) (*Record, error)
	UpdateMembership(ctx context.Context, id string, members session.Members) (*Record, error)
	CompleteSession(ctx context.Context, id string, durationSeconds int) (*Record, error)
	AppendEvent(ctx context.Context, id string, eventType session.EventType, text string) (*session.LifecycleEvent, error)
}
