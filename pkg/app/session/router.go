package session

import (
	"context"

	"github.com/caretech-io/telesession/pkg/domain/session"
	"github.com/caretech-io/telesession/pkg/infra/bus"
	"github.com/caretech-io/telesession/pkg/infra/bus/message"
	"github.com/sirupsen/logrus"
)

// Router feeds directory-wide connectivity events into the
// orchestrator. It holds the single startup-time subscription on the
// connectivity pattern; per-session room subscriptions are owned by the
// start/stop transitions.
type Router struct {
	logger *logrus.Logger
	bus    bus.Bus
	orch   *Orchestrator

	sub bus.Subscription
}

func NewRouter(logger *logrus.Logger, b bus.Bus, orch *Orchestrator) *Router {
	return &Router{
		logger: logger,
		bus:    b,
		orch:   orch,
	}
}

func (r *Router) Start(ctx context.Context) error {
	sub, err := r.bus.SubscribePattern(ctx, bus.ConnectivityPattern, r.handleConnectivity)
	if err != nil {
		return err
	}
	r.sub = sub
	r.logger.WithField("pattern", bus.ConnectivityPattern).Info("listening for connectivity events")
	return nil
}

func (r *Router) Close() error {
	if r.sub == nil {
		return nil
	}
	return r.sub.Unsubscribe()
}

func (r *Router) handleConnectivity(ctx context.Context, pattern, topic string, payload []byte) {
	msg, err := message.Decode(payload)
	if err != nil {
		r.logger.WithError(err).WithField("topic", topic).Warn("discarding malformed connectivity event")
		return
	}

	switch event := msg.(type) {
	case *message.UserEvent:
		r.handleUserEvent(ctx, event)
	case *message.ParticipantEvent:
		r.handleParticipantEvent(ctx, event)
	case *message.DeviceEvent:
		r.handleDeviceEvent(ctx, event)
	default:
		r.logger.WithFields(logrus.Fields{
			"topic": topic,
			"type":  string(msg.Type()),
		}).Debug("ignoring unrelated event")
	}
}

func (r *Router) handleUserEvent(ctx context.Context, event *message.UserEvent) {
	switch event.State {
	case message.Connected:
		r.orch.HandleIdentityConnected(ctx, session.ClassUser, event.UserUUID)
	case message.Disconnected:
		r.orch.HandleUserDisconnected(ctx, event.UserUUID)
	}
}

func (r *Router) handleParticipantEvent(ctx context.Context, event *message.ParticipantEvent) {
	switch event.State {
	case message.Connected:
		r.orch.HandleIdentityConnected(ctx, session.ClassParticipant, event.ParticipantUUID)
	case message.Disconnected:
		// Informational only: a participant dropping does not end the
		// session.
		r.logger.WithField("participant_uuid", event.ParticipantUUID).Debug("participant disconnected")
	}
}

func (r *Router) handleDeviceEvent(ctx context.Context, event *message.DeviceEvent) {
	switch event.State {
	case message.Connected:
		r.orch.HandleIdentityConnected(ctx, session.ClassDevice, event.DeviceUUID)
	case message.Disconnected:
		r.logger.WithField("device_uuid", event.DeviceUUID).Debug("device disconnected")
	}
}
