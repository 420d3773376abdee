package session

import (
	"context"

	"github.com/caretech-io/telesession/pkg/domain/session"
	"github.com/caretech-io/telesession/pkg/infra/bus"
	metrics "github.com/caretech-io/telesession/pkg/infra/prometheus"
	"github.com/caretech-io/telesession/pkg/infra/registry"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Start creates or resumes a durable session record, appends its start
// event, brings up the room process and publishes the session into the
// in-memory table. The start event append is the commit point: if it
// fails no room is created and no table entry appears. A room creation
// failure revokes the just-created readiness subscription; the durable
// record and its start event are not rolled back.
func (o *Orchestrator) Start(ctx context.Context, cmd Command) Result {
	if cmd.SessionID == "" {
		return errorResult("missing id_session")
	}
	if cmd.SessionID == session.NewSessionID && cmd.CreatorUserID == "" {
		return errorResult("missing id_creator_user")
	}

	resuming := cmd.SessionID != session.NewSessionID
	if resuming {
		if err := o.store.BeginStart(cmd.SessionID); err != nil {
			return errorResult(err.Error())
		}
	}

	record, err := o.fetchOrCreateRecord(ctx, cmd, resuming)
	if err != nil {
		if resuming {
			o.store.AbortStart(cmd.SessionID)
		}
		o.logger.WithError(err).Error("failed to obtain session record")
		metrics.SessionStartFailuresTotal.WithLabelValues("registry").Inc()
		return errorResult("cannot create session")
	}

	if !resuming {
		if err := o.store.BeginStart(record.ID); err != nil {
			return errorResult(err.Error())
		}
	}

	startEvent, err := o.registry.AppendEvent(ctx, record.ID, session.EventStart, "")
	if err != nil {
		o.store.AbortStart(record.ID)
		o.logger.WithError(err).WithField("id_session", record.ID).Error("failed to append start event")
		metrics.SessionStartFailuresTotal.WithLabelValues("start_event").Inc()
		return errorResult("cannot create session event")
	}

	sess := o.buildSession(cmd, record, resuming)
	sess.AppendEvent(*startEvent)

	// Subscribe the readiness topic before the room exists, so its
	// ready signal cannot be missed.
	roomSub, err := o.bus.SubscribePattern(ctx, bus.RoomPattern(sess.Key), o.roomReadyHandler)
	if err != nil {
		o.store.AbortStart(record.ID)
		o.logger.WithError(err).WithField("id_session", record.ID).Error("failed to subscribe room topic")
		metrics.SessionStartFailuresTotal.WithLabelValues("subscribe").Inc()
		return errorResult("cannot subscribe to room events")
	}

	room, err := o.rooms.CreateRoom(
		ctx, sess.Key, sess.CreatorUserID,
		sess.Members.Users, sess.Members.Participants, sess.Members.Devices,
	)
	if err != nil || room == nil || room.URL == "" {
		if unsubErr := roomSub.Unsubscribe(); unsubErr != nil {
			o.logger.WithError(unsubErr).Warn("failed to revoke room subscription")
		}
		o.store.AbortStart(record.ID)
		// The record and its start event stay behind; the registry
		// keeps the trace and the next start resumes it.
		o.logger.WithError(err).WithFields(logrus.Fields{
			"id_session":  record.ID,
			"session_key": sess.Key,
		}).Error("failed to create room process, start event left in registry")
		metrics.SessionStartFailuresTotal.WithLabelValues("room").Inc()
		return errorResult("cannot create process")
	}

	sess.RoomURL = room.URL
	sess.Status = session.StatusActive
	o.store.CommitStart(sess, roomSub)

	metrics.SessionsStartedTotal.Inc()
	metrics.ActiveSessions.Inc()

	o.logger.WithFields(logrus.Fields{
		"id_session":   sess.ID,
		"session_uuid": sess.UUID,
		"session_key":  sess.Key,
	}).Info("session started")

	return successResult(StatusStarted, sess.Snapshot())
}

func (o *Orchestrator) fetchOrCreateRecord(ctx context.Context, cmd Command, resuming bool) (*registry.Record, error) {
	if resuming {
		return o.registry.GetSessionWithEvents(ctx, cmd.SessionID)
	}
	return o.registry.CreateSession(ctx, registry.CreateSessionRequest{
		CreatorUserID: cmd.CreatorUserID,
		SessionTypeID: cmd.SessionTypeID,
		Users:         cmd.Users,
		Participants:  cmd.Participants,
		Devices:       cmd.Devices,
		Parameters:    cmd.Parameters,
	})
}

// buildSession assembles the in-memory session. Membership comes from
// the command; a resumed session keeps its recorded membership for any
// class the command leaves unspecified.
func (o *Orchestrator) buildSession(cmd Command, record *registry.Record, resuming bool) *session.Session {
	users := cmd.Users
	participants := cmd.Participants
	devices := cmd.Devices
	if resuming {
		if users == nil {
			users = record.Users
		}
		if participants == nil {
			participants = record.Participants
		}
		if devices == nil {
			devices = record.Devices
		}
	}

	creatorID := record.CreatorUserID
	if creatorID == "" {
		creatorID = cmd.CreatorUserID
	}

	return &session.Session{
		ID:              record.ID,
		UUID:            record.UUID,
		Key:             uuid.NewString(),
		CreatorUserID:   creatorID,
		CreatorUserName: record.CreatorUserName,
		Members: session.Members{
			Users:        users,
			Participants: participants,
			Devices:      devices,
		},
		Parameters:                cmd.Parameters,
		Events:                    append([]session.LifecycleEvent(nil), record.Events...),
		CumulativeDurationSeconds: record.Duration,
		StartedAt:                 record.StartTime,
		Status:                    session.StatusPending,
	}
}
