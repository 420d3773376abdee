package session

import (
	"context"

	"github.com/caretech-io/telesession/pkg/domain/session"
	"github.com/caretech-io/telesession/pkg/infra/bus"
	"github.com/caretech-io/telesession/pkg/infra/bus/message"
	metrics "github.com/caretech-io/telesession/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

// Notifier fans session lifecycle notifications out to their recipients
// on per-identity topics. Publication is fire-and-forget: the bus's
// at-most-once delivery is inherited unchanged and failures are only
// logged.
type Notifier struct {
	logger      *logrus.Logger
	bus         bus.Bus
	serviceUUID string
	joinMsg     string
}

func NewNotifier(logger *logrus.Logger, b bus.Bus, serviceUUID, joinMsg string) *Notifier {
	return &Notifier{
		logger:      logger,
		bus:         b,
		serviceUUID: serviceUUID,
		joinMsg:     joinMsg,
	}
}

// SendJoin invites the given targets. The message always carries the
// session's full membership; the targets only select who receives it.
func (n *Notifier) SendJoin(ctx context.Context, sess *session.Session, targets session.Members) {
	members := sess.Members.Clone()
	join := &message.JoinSession{
		SessionURL:   sess.RoomURL,
		CreatorName:  sess.CreatorUserName,
		SessionUUID:  sess.UUID,
		Users:        members.Users,
		Participants: members.Participants,
		Devices:      members.Devices,
		JoinMsg:      n.joinMsg,
		Parameters:   sess.Parameters,
		ServiceUUID:  n.serviceUUID,
	}
	n.fanOut(ctx, "join", join, targets)
}

func (n *Notifier) SendJoinAll(ctx context.Context, sess *session.Session) {
	n.SendJoin(ctx, sess, sess.Members.Clone())
}

// SendStop informs every current member individually that the session
// has ended.
func (n *Notifier) SendStop(ctx context.Context, sess *session.Session) {
	stop := &message.StopSession{
		SessionUUID: sess.UUID,
		ServiceUUID: n.serviceUUID,
	}
	n.fanOut(ctx, "stop", stop, sess.Members.Clone())
}

// SendLeave addresses all members recorded before a removal, so the
// departing and the remaining members are both informed.
func (n *Notifier) SendLeave(ctx context.Context, sess *session.Session, recipients, leaving session.Members) {
	leave := &message.LeaveSession{
		SessionUUID:         sess.UUID,
		ServiceUUID:         n.serviceUUID,
		LeavingUsers:        leaving.Users,
		LeavingParticipants: leaving.Participants,
		LeavingDevices:      leaving.Devices,
	}
	n.fanOut(ctx, "leave", leave, recipients)
}

func (n *Notifier) fanOut(ctx context.Context, kind string, msg message.Message, targets session.Members) {
	for _, uuid := range targets.Users {
		n.publish(ctx, kind, bus.NotifyTopic(session.ClassUser, uuid), msg)
	}
	for _, uuid := range targets.Participants {
		n.publish(ctx, kind, bus.NotifyTopic(session.ClassParticipant, uuid), msg)
	}
	for _, uuid := range targets.Devices {
		n.publish(ctx, kind, bus.NotifyTopic(session.ClassDevice, uuid), msg)
	}
}

func (n *Notifier) publish(ctx context.Context, kind, topic string, msg message.Message) {
	if err := n.bus.Publish(ctx, topic, msg); err != nil {
		n.logger.WithError(err).WithField("topic", topic).Warn("failed to publish notification")
		return
	}
	metrics.NotificationsPublishedTotal.WithLabelValues(kind).Inc()
}
