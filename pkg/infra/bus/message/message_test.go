package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	join := &JoinSession{
		SessionURL:   "https://rooms.example.org:40000/?key=k",
		CreatorName:  "Dr. Martin",
		SessionUUID:  "uuid-42",
		Users:        []string{"u1", "u2"},
		Participants: []string{"p1"},
		JoinMsg:      "Please join the session",
		ServiceUUID:  "service-uuid",
	}

	data, err := Encode(join)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, join, decoded)
}

func TestDecode_RejectsUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"session.restart","payload":{}}`))
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDecode_RejectsUnknownEnvelopeField(t *testing.T) {
	_, err := Decode([]byte(`{"type":"room.ready","payload":{"session_key":"k"},"extra":1}`))
	assert.Error(t, err)
}

func TestDecode_RejectsUnknownPayloadField(t *testing.T) {
	_, err := Decode([]byte(`{"type":"room.ready","payload":{"session_key":"k","extra":1}}`))
	assert.Error(t, err)
}

func TestDecode_RejectsMissingRequiredField(t *testing.T) {
	_, err := Decode([]byte(`{"type":"room.ready","payload":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_key")
}

func TestDecode_RejectsInvalidConnState(t *testing.T) {
	_, err := Decode([]byte(`{"type":"user.event","payload":{"user_uuid":"u1","state":"sleeping"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid connectivity state")
}

func TestDecode_ConnectivityEvents(t *testing.T) {
	decoded, err := Decode([]byte(`{"type":"user.event","payload":{"user_uuid":"u1","state":"connected"}}`))
	require.NoError(t, err)
	event, ok := decoded.(*UserEvent)
	require.True(t, ok)
	assert.Equal(t, "u1", event.UserUUID)
	assert.Equal(t, Connected, event.State)

	decoded, err = Decode([]byte(`{"type":"device.event","payload":{"device_uuid":"d1","state":"disconnected"}}`))
	require.NoError(t, err)
	device, ok := decoded.(*DeviceEvent)
	require.True(t, ok)
	assert.Equal(t, Disconnected, device.State)
}

func TestCommandRequest_Validation(t *testing.T) {
	_, err := Decode([]byte(`{"type":"command.request","payload":{"command":{"a":1}}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reply_to")

	_, err = Decode([]byte(`{"type":"command.request","payload":{"reply_to":"reply.1"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command")

	decoded, err := Decode([]byte(`{"type":"command.request","payload":{"reply_to":"reply.1","command":{"a":1}}}`))
	require.NoError(t, err)
	request, ok := decoded.(*CommandRequest)
	require.True(t, ok)
	assert.Equal(t, "reply.1", request.ReplyTo)
}

func TestJoinSession_RequiresIdentifiers(t *testing.T) {
	tests := []struct {
		name string
		msg  JoinSession
	}{
		{"missing session_uuid", JoinSession{SessionURL: "u", ServiceUUID: "s"}},
		{"missing session_url", JoinSession{SessionUUID: "u", ServiceUUID: "s"}},
		{"missing service_uuid", JoinSession{SessionUUID: "u", SessionURL: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.msg.Validate())
		})
	}
}
