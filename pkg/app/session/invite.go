package session

import (
	"context"

	"github.com/caretech-io/telesession/pkg/domain/session"
	"github.com/sirupsen/logrus"
)

// Invite adds identities to an active session and notifies only the
// newly added ones. Each addition gets its own joined lifecycle event;
// the call aborts on the first append failure and earlier appends are
// not rolled back.
func (o *Orchestrator) Invite(ctx context.Context, cmd Command) Result {
	entry, ok := o.store.Get(cmd.SessionID)
	if !ok {
		return errorResult("no matching session to invite to")
	}

	entry.Lock()
	defer entry.Unlock()
	if entry.Removed() {
		return errorResult("no matching session to invite to")
	}

	sess := entry.Session

	for _, userUUID := range cmd.Users {
		if err := o.appendMembershipEvent(ctx, sess, session.EventJoined, session.ClassUser, userUUID); err != nil {
			return errorResult("error creating user invited session event")
		}
	}
	for _, participantUUID := range cmd.Participants {
		if err := o.appendMembershipEvent(ctx, sess, session.EventJoined, session.ClassParticipant, participantUUID); err != nil {
			return errorResult("error creating participant invited session event")
		}
	}
	for _, deviceUUID := range cmd.Devices {
		if err := o.appendMembershipEvent(ctx, sess, session.EventJoined, session.ClassDevice, deviceUUID); err != nil {
			return errorResult("error creating device invited session event")
		}
	}

	// Duplicates are kept: who to notify follows the list actually
	// passed, not set deduplication.
	sess.Members.Add(cmd.Users, cmd.Participants, cmd.Devices)

	o.notifier.SendJoin(ctx, sess, session.Members{
		Users:        cmd.Users,
		Participants: cmd.Participants,
		Devices:      cmd.Devices,
	})

	if _, err := o.registry.UpdateMembership(ctx, sess.ID, sess.Members); err != nil {
		o.logger.WithError(err).WithField("id_session", sess.ID).Error("failed to persist updated membership")
		return errorResult("error updating session")
	}

	o.logger.WithFields(logrus.Fields{
		"id_session":       sess.ID,
		"new_users":        len(cmd.Users),
		"new_participants": len(cmd.Participants),
		"new_devices":      len(cmd.Devices),
	}).Info("session invitations sent")

	return successResult(StatusInvited, sess.Snapshot())
}

// appendMembershipEvent records a joined or left event labelled with
// the identity's class and, when the directory resolves it, its name.
func (o *Orchestrator) appendMembershipEvent(
	ctx context.Context,
	sess *session.Session,
	eventType session.EventType,
	class session.IdentityClass,
	uuid string,
) error {
	event, err := o.registry.AppendEvent(ctx, sess.ID, eventType, o.identityLabel(ctx, class, uuid))
	if err != nil {
		o.logger.WithError(err).WithFields(logrus.Fields{
			"id_session":    sess.ID,
			"identity":      uuid,
			"identity_kind": string(class),
		}).Error("failed to append membership event")
		return err
	}
	sess.AppendEvent(*event)
	return nil
}

func (o *Orchestrator) identityLabel(ctx context.Context, class session.IdentityClass, uuid string) string {
	name := uuid
	switch class {
	case session.ClassUser:
		if o.directory != nil {
			if user, err := o.directory.GetUser(ctx, uuid); err == nil && user.Name != "" {
				name = user.Name
			}
		}
		return "User: " + name
	case session.ClassParticipant:
		if o.directory != nil {
			if participant, err := o.directory.GetParticipant(ctx, uuid); err == nil && participant.Name != "" {
				name = participant.Name
			}
		}
		return "Participant: " + name
	default:
		return "Device: " + name
	}
}
