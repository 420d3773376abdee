package bus

import (
	"fmt"

	"github.com/caretech-io/telesession/pkg/domain/session"
)

// Topic layout:
//
//	events.<class>.<id>   directory-wide connectivity events
//	room.<sessionKey>     room process readiness signals
//	notify.<class>.<id>   outbound join/leave/stop notifications
//	rpc.session_manage.<serviceKey> inbound bus commands

const ConnectivityPattern = "events.*"

func ConnectivityTopic(class session.IdentityClass, id string) string {
	return fmt.Sprintf("events.%s.%s", class, id)
}

func RoomTopic(sessionKey string) string {
	return fmt.Sprintf("room.%s", sessionKey)
}

func RoomPattern(sessionKey string) string {
	return RoomTopic(sessionKey)
}

func NotifyTopic(class session.IdentityClass, id string) string {
	return fmt.Sprintf("notify.%s.%s", class, id)
}

func NotifyPattern(class session.IdentityClass, id string) string {
	return NotifyTopic(class, id)
}

func CommandTopic(serviceKey string) string {
	return fmt.Sprintf("rpc.session_manage.%s", serviceKey)
}
