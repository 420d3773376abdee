package message

import (
	"encoding/json"
	"fmt"
)

// JoinSession invites its recipients into a running session. Parameters
// are passed through unmodified from the start command.
type JoinSession struct {
	SessionURL   string                 `json:"session_url"`
	CreatorName  string                 `json:"session_creator_name"`
	SessionUUID  string                 `json:"session_uuid"`
	Users        []string               `json:"session_users"`
	Participants []string               `json:"session_participants"`
	Devices      []string               `json:"session_devices"`
	JoinMsg      string                 `json:"join_msg"`
	Parameters   map[string]interface{} `json:"session_parameters,omitempty"`
	ServiceUUID  string                 `json:"service_uuid"`
}

func (JoinSession) Type() Type { return TypeJoinSession }

func (m JoinSession) Validate() error {
	if err := requireField("session_uuid", m.SessionUUID); err != nil {
		return err
	}
	if err := requireField("session_url", m.SessionURL); err != nil {
		return err
	}
	return requireField("service_uuid", m.ServiceUUID)
}

type StopSession struct {
	SessionUUID string `json:"session_uuid"`
	ServiceUUID string `json:"service_uuid"`
}

func (StopSession) Type() Type { return TypeStopSession }

func (m StopSession) Validate() error {
	if err := requireField("session_uuid", m.SessionUUID); err != nil {
		return err
	}
	return requireField("service_uuid", m.ServiceUUID)
}

// LeaveSession is broadcast to every member recorded before a removal,
// so departing and remaining members are both informed.
type LeaveSession struct {
	SessionUUID         string   `json:"session_uuid"`
	ServiceUUID         string   `json:"service_uuid"`
	LeavingUsers        []string `json:"leaving_users"`
	LeavingParticipants []string `json:"leaving_participants"`
	LeavingDevices      []string `json:"leaving_devices"`
}

func (LeaveSession) Type() Type { return TypeLeaveSession }

func (m LeaveSession) Validate() error {
	if err := requireField("session_uuid", m.SessionUUID); err != nil {
		return err
	}
	return requireField("service_uuid", m.ServiceUUID)
}

// ConnState is the connectivity transition carried by directory events.
type ConnState string

const (
	Connected    ConnState = "connected"
	Disconnected ConnState = "disconnected"
)

func validateConnState(s ConnState) error {
	switch s {
	case Connected, Disconnected:
		return nil
	default:
		return fmt.Errorf("invalid connectivity state %q", s)
	}
}

type UserEvent struct {
	UserUUID string    `json:"user_uuid"`
	State    ConnState `json:"state"`
}

func (UserEvent) Type() Type { return TypeUserEvent }

func (m UserEvent) Validate() error {
	if err := requireField("user_uuid", m.UserUUID); err != nil {
		return err
	}
	return validateConnState(m.State)
}

type ParticipantEvent struct {
	ParticipantUUID string    `json:"participant_uuid"`
	State           ConnState `json:"state"`
}

func (ParticipantEvent) Type() Type { return TypeParticipantEvent }

func (m ParticipantEvent) Validate() error {
	if err := requireField("participant_uuid", m.ParticipantUUID); err != nil {
		return err
	}
	return validateConnState(m.State)
}

type DeviceEvent struct {
	DeviceUUID string    `json:"device_uuid"`
	State      ConnState `json:"state"`
}

func (DeviceEvent) Type() Type { return TypeDeviceEvent }

func (m DeviceEvent) Validate() error {
	if err := requireField("device_uuid", m.DeviceUUID); err != nil {
		return err
	}
	return validateConnState(m.State)
}

// RoomReady is the room process's readiness signal, published on the
// room topic scoped by session key.
type RoomReady struct {
	SessionKey string `json:"session_key"`
}

func (RoomReady) Type() Type { return TypeRoomReady }

func (m RoomReady) Validate() error {
	return requireField("session_key", m.SessionKey)
}

// CommandRequest carries a session manage command over the bus RPC
// channel. The reply is published on the caller-supplied topic.
type CommandRequest struct {
	ReplyTo string          `json:"reply_to"`
	Command json.RawMessage `json:"command"`
}

func (CommandRequest) Type() Type { return TypeCommandRequest }

func (m CommandRequest) Validate() error {
	if err := requireField("reply_to", m.ReplyTo); err != nil {
		return err
	}
	if len(m.Command) == 0 {
		return fmt.Errorf("missing required field command")
	}
	return nil
}

type CommandReply struct {
	Result json.RawMessage `json:"result"`
}

func (CommandReply) Type() Type { return TypeCommandReply }

func (m CommandReply) Validate() error {
	if len(m.Result) == 0 {
		return fmt.Errorf("missing required field result")
	}
	return nil
}
