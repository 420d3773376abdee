package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Type tags an envelope with the concrete variant it carries. Unknown
// types are rejected at decode time rather than silently defaulted.
type Type string

const (
	TypeJoinSession      Type = "session.join"
	TypeStopSession      Type = "session.stop"
	TypeLeaveSession     Type = "session.leave"
	TypeUserEvent        Type = "user.event"
	TypeParticipantEvent Type = "participant.event"
	TypeDeviceEvent      Type = "device.event"
	TypeRoomReady        Type = "room.ready"
	TypeCommandRequest   Type = "command.request"
	TypeCommandReply     Type = "command.reply"
)

var ErrUnknownType = errors.New("unknown message type")

type Message interface {
	Type() Type
	Validate() error
}

// Envelope is the wire frame for every bus payload.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func Encode(m Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: m.Type(), Payload: payload})
}

// Decode parses an envelope and its payload strictly: unknown envelope
// types, unknown payload fields and missing required fields all fail.
func Decode(data []byte) (Message, error) {
	var envelope Envelope
	if err := strictUnmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}

	msg, err := newMessage(envelope.Type)
	if err != nil {
		return nil, err
	}
	if err := strictUnmarshal(envelope.Payload, msg); err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", envelope.Type, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s payload: %w", envelope.Type, err)
	}
	return msg, nil
}

func newMessage(t Type) (Message, error) {
	switch t {
	case TypeJoinSession:
		return &JoinSession{}, nil
	case TypeStopSession:
		return &StopSession{}, nil
	case TypeLeaveSession:
		return &LeaveSession{}, nil
	case TypeUserEvent:
		return &UserEvent{}, nil
	case TypeParticipantEvent:
		return &ParticipantEvent{}, nil
	case TypeDeviceEvent:
		return &DeviceEvent{}, nil
	case TypeRoomReady:
		return &RoomReady{}, nil
	case TypeCommandRequest:
		return &CommandRequest{}, nil
	case TypeCommandReply:
		return &CommandReply{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

func strictUnmarshal(data []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func requireField(name, value string) error {
	if value == "" {
		return fmt.Errorf("missing required field %s", name)
	}
	return nil
}
