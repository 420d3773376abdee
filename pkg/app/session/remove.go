package session

import (
	"context"

	"github.com/caretech-io/telesession/pkg/domain/session"
	"github.com/sirupsen/logrus"
)

// Remove drops identities from an active session's in-memory membership
// and informs everyone who was a member before the removal, departing
// identities included. The durable membership record is deliberately
// left untouched so the registry keeps the trace that they took part.
func (o *Orchestrator) Remove(ctx context.Context, cmd Command) Result {
	entry, ok := o.store.Get(cmd.SessionID)
	if !ok {
		return errorResult("no matching session to remove from")
	}

	entry.Lock()
	defer entry.Unlock()
	if entry.Removed() {
		return errorResult("no matching session to remove from")
	}

	sess := entry.Session
	recipients := sess.Members.Clone()

	for _, userUUID := range cmd.Users {
		if err := o.appendMembershipEvent(ctx, sess, session.EventLeft, session.ClassUser, userUUID); err != nil {
			return errorResult("error creating user left session event")
		}
	}
	for _, participantUUID := range cmd.Participants {
		if err := o.appendMembershipEvent(ctx, sess, session.EventLeft, session.ClassParticipant, participantUUID); err != nil {
			return errorResult("error creating participant left session event")
		}
	}
	for _, deviceUUID := range cmd.Devices {
		if err := o.appendMembershipEvent(ctx, sess, session.EventLeft, session.ClassDevice, deviceUUID); err != nil {
			return errorResult("error creating device left session event")
		}
	}

	sess.Members.Remove(cmd.Users, cmd.Participants, cmd.Devices)

	o.notifier.SendLeave(ctx, sess, recipients, session.Members{
		Users:        cmd.Users,
		Participants: cmd.Participants,
		Devices:      cmd.Devices,
	})

	o.logger.WithFields(logrus.Fields{
		"id_session":           sess.ID,
		"removed_users":        len(cmd.Users),
		"removed_participants": len(cmd.Participants),
		"removed_devices":      len(cmd.Devices),
	}).Info("members removed from session")

	return successResult(StatusRemoved, sess.Snapshot())
}
