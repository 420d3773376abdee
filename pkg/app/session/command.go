package session

import (
	"github.com/caretech-io/telesession/pkg/domain/session"
)

const (
	ActionStart  = "start"
	ActionStop   = "stop"
	ActionInvite = "invite"
	ActionRemove = "remove"
)

const (
	StatusStarted = "started"
	StatusStopped = "stopped"
	StatusInvited = "invited"
	StatusRemoved = "removed"
	StatusError   = "error"
)

// Command is the structured session manage request. For invite and
// remove, a nil identity slice means "not supplied" while an empty one
// is an explicit no-op for that class.
type Command struct {
	Action        string                 `json:"action"`
	SessionID     string                 `json:"id_session"`
	ServiceID     string                 `json:"id_service,omitempty"`
	CreatorUserID string                 `json:"id_creator_user,omitempty"`
	SessionTypeID string                 `json:"id_session_type,omitempty"`
	Parameters    map[string]interface{} `json:"parameters,omitempty"`
	Users         []string               `json:"session_users,omitempty"`
	Participants  []string               `json:"session_participants,omitempty"`
	Devices       []string               `json:"session_devices,omitempty"`
}

// ManageRequest is the multiplexed inbound payload.
type ManageRequest struct {
	SessionManage *Command `json:"session_manage"`
}

type Result struct {
	Status    string            `json:"status"`
	Session   *session.Snapshot `json:"session,omitempty"`
	ErrorText string            `json:"error_text,omitempty"`
}

func errorResult(text string) Result {
	return Result{Status: StatusError, ErrorText: text}
}

func successResult(status string, snapshot session.Snapshot) Result {
	return Result{Status: status, Session: &snapshot}
}
