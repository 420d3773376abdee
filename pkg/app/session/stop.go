package session

import (
	"context"
	"time"

	"github.com/caretech-io/telesession/pkg/domain/session"
	metrics "github.com/caretech-io/telesession/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

// Stop tears down the room, appends the stop event, persists the
// accumulated duration and notifies every member. Teardown is not
// reversible: once it begins the session leaves the in-memory table
// regardless of how the registry calls go.
func (o *Orchestrator) Stop(ctx context.Context, id string) Result {
	if id == "" {
		return errorResult("missing id_session")
	}

	entry, ok := o.store.Get(id)
	if !ok {
		return errorResult("no matching session to stop")
	}

	entry.Lock()
	defer entry.Unlock()
	if entry.Removed() {
		return errorResult("no matching session to stop")
	}

	sess := entry.Session

	if err := o.rooms.DestroyRoom(ctx, sess.Key); err != nil {
		o.logger.WithError(err).WithField("session_key", sess.Key).Warn("failed to destroy room")
	}

	if entry.RoomSub != nil {
		if err := entry.RoomSub.Unsubscribe(); err != nil {
			o.logger.WithError(err).WithField("session_key", sess.Key).Warn("failed to revoke room subscription")
		}
	}

	o.store.Remove(id)
	metrics.ActiveSessions.Dec()

	now := time.Now()
	stopEvent, err := o.registry.AppendEvent(ctx, id, session.EventStop, "")
	if err != nil {
		o.logger.WithError(err).WithField("id_session", id).Error("failed to append stop event")
		return errorResult("cannot create stop session event")
	}
	sess.AppendEvent(*stopEvent)

	duration := sess.DurationAt(now)
	sess.CumulativeDurationSeconds = duration
	sess.Status = session.StatusCompleted

	// Final status persistence is best-effort: members still get their
	// stop notification and the caller still gets the snapshot.
	if _, err := o.registry.CompleteSession(ctx, id, duration); err != nil {
		o.logger.WithError(err).WithFields(logrus.Fields{
			"id_session":       id,
			"session_duration": duration,
		}).Error("failed to persist final session state")
	}

	o.notifier.SendStop(ctx, sess)
	metrics.SessionsStoppedTotal.Inc()

	o.logger.WithFields(logrus.Fields{
		"id_session":       id,
		"session_duration": duration,
	}).Info("session stopped")

	return successResult(StatusStopped, sess.Snapshot())
}
