package session

import (
	"context"
	"fmt"

	"github.com/caretech-io/telesession/pkg/domain/session"
	"github.com/caretech-io/telesession/pkg/infra/bus"
	"github.com/caretech-io/telesession/pkg/infra/bus/message"
	"github.com/caretech-io/telesession/pkg/infra/directory"
	"github.com/caretech-io/telesession/pkg/infra/registry"
	"github.com/caretech-io/telesession/pkg/infra/rooms"
	"github.com/sirupsen/logrus"
)

// Manager handles the multiplexed session manage command.
type Manager interface {
	Manage(ctx context.Context, cmd Command) Result
}

type ServiceConfig struct {
	ID          string
	UUID        string
	Key         string
	JoinMessage string
}

// Orchestrator owns the in-memory table of active sessions and drives
// the start/stop/invite/remove transitions against the registry, the
// room process manager and the bus.
type Orchestrator struct {
	logger    *logrus.Logger
	store     *Store
	registry  registry.Client
	rooms     rooms.Manager
	bus       bus.Bus
	directory directory.Client
	notifier  *Notifier
	service   ServiceConfig
}

func NewOrchestrator(
	logger *logrus.Logger,
	store *Store,
	registryClient registry.Client,
	roomManager rooms.Manager,
	b bus.Bus,
	directoryClient directory.Client,
	service ServiceConfig,
) *Orchestrator {
	return &Orchestrator{
		logger:    logger,
		store:     store,
		registry:  registryClient,
		rooms:     roomManager,
		bus:       b,
		directory: directoryClient,
		notifier:  NewNotifier(logger, b, service.UUID, service.JoinMessage),
		service:   service,
	}
}

func (o *Orchestrator) Manage(ctx context.Context, cmd Command) Result {
	switch cmd.Action {
	case ActionStart:
		return o.Start(ctx, cmd)
	case ActionStop:
		return o.Stop(ctx, cmd.SessionID)
	case ActionInvite:
		return o.Invite(ctx, cmd)
	case ActionRemove:
		return o.Remove(ctx, cmd)
	default:
		return errorResult(fmt.Sprintf("unknown action %q", cmd.Action))
	}
}

// HandleIdentityConnected re-sends the join invitation to an identity
// that just (re)connected, for every active session it is a member of.
// Membership is not changed.
func (o *Orchestrator) HandleIdentityConnected(ctx context.Context, class session.IdentityClass, uuid string) {
	for _, id := range o.store.IDs() {
		entry, ok := o.store.Get(id)
		if !ok {
			continue
		}

		entry.Lock()
		if !entry.Removed() && memberOf(entry.Session, class, uuid) {
			target := session.Members{}
			switch class {
			case session.ClassUser:
				target.Users = []string{uuid}
			case session.ClassParticipant:
				target.Participants = []string{uuid}
			case session.ClassDevice:
				target.Devices = []string{uuid}
			}
			o.notifier.SendJoin(ctx, entry.Session, target)
		}
		entry.Unlock()
	}
}

// HandleUserDisconnected terminates any session whose creator just
// disconnected. The id snapshot keeps the scan stable while Stop
// removes the entry; at most one session is stopped per event.
func (o *Orchestrator) HandleUserDisconnected(ctx context.Context, uuid string) {
	for _, id := range o.store.IDs() {
		entry, ok := o.store.Get(id)
		if !ok {
			continue
		}

		entry.Lock()
		isCreator := !entry.Removed() &&
			entry.Session.Members.ContainsUser(uuid) &&
			entry.Session.CreatorUserID == uuid
		entry.Unlock()

		if isCreator {
			o.logger.WithFields(logrus.Fields{
				"id_session": id,
				"user_uuid":  uuid,
			}).Info("session creator disconnected, stopping session")
			o.Stop(ctx, id)
			break
		}
	}
}

// HandleRoomReady re-broadcasts the join invitation to the full current
// membership once the room process reports readiness.
func (o *Orchestrator) HandleRoomReady(ctx context.Context, sessionKey string) {
	entry, ok := o.store.FindByKey(sessionKey)
	if !ok {
		o.logger.WithField("session_key", sessionKey).Warn("room ready for unknown session key")
		return
	}

	entry.Lock()
	defer entry.Unlock()
	if entry.Removed() {
		return
	}
	o.notifier.SendJoinAll(ctx, entry.Session)
}

// roomReadyHandler is the per-session subscription callback installed
// by Start on the room topic.
func (o *Orchestrator) roomReadyHandler(ctx context.Context, pattern, topic string, payload []byte) {
	msg, err := message.Decode(payload)
	if err != nil {
		o.logger.WithError(err).WithField("topic", topic).Warn("discarding malformed room message")
		return
	}

	ready, ok := msg.(*message.RoomReady)
	if !ok {
		o.logger.WithField("topic", topic).Debug("ignoring non-ready room message")
		return
	}
	o.HandleRoomReady(ctx, ready.SessionKey)
}

func memberOf(sess *session.Session, class session.IdentityClass, uuid string) bool {
	switch class {
	case session.ClassUser:
		return sess.Members.ContainsUser(uuid)
	case session.ClassParticipant:
		return sess.Members.ContainsParticipant(uuid)
	case session.ClassDevice:
		return sess.Members.ContainsDevice(uuid)
	default:
		return false
	}
}
