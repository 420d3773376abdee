package session

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/caretech-io/telesession/pkg/infra/bus"
	"github.com/caretech-io/telesession/pkg/infra/bus/message"
	"github.com/sirupsen/logrus"
)

// CommandListener serves session manage commands arriving over the bus
// RPC topic, mirroring the HTTP surface for peer services that only
// speak the bus.
type CommandListener struct {
	logger     *logrus.Logger
	bus        bus.Bus
	manager    Manager
	serviceKey string

	sub bus.Subscription
}

func NewCommandListener(logger *logrus.Logger, b bus.Bus, manager Manager, serviceKey string) *CommandListener {
	return &CommandListener{
		logger:     logger,
		bus:        b,
		manager:    manager,
		serviceKey: serviceKey,
	}
}

func (l *CommandListener) Start(ctx context.Context) error {
	sub, err := l.bus.SubscribePattern(ctx, bus.CommandTopic(l.serviceKey), l.handle)
	if err != nil {
		return err
	}
	l.sub = sub
	l.logger.WithField("topic", bus.CommandTopic(l.serviceKey)).Info("listening for bus commands")
	return nil
}

func (l *CommandListener) Close() error {
	if l.sub == nil {
		return nil
	}
	return l.sub.Unsubscribe()
}

func (l *CommandListener) handle(ctx context.Context, pattern, topic string, payload []byte) {
	msg, err := message.Decode(payload)
	if err != nil {
		l.logger.WithError(err).Warn("discarding malformed bus command")
		return
	}

	request, ok := msg.(*message.CommandRequest)
	if !ok {
		l.logger.WithField("type", string(msg.Type())).Debug("ignoring non-command message")
		return
	}

	result := l.dispatch(ctx, request.Command)

	resultJSON, err := json.Marshal(result)
	if err != nil {
		l.logger.WithError(err).Error("failed to marshal command result")
		return
	}
	reply := &message.CommandReply{Result: resultJSON}
	if err := l.bus.Publish(ctx, request.ReplyTo, reply); err != nil {
		l.logger.WithError(err).WithField("reply_to", request.ReplyTo).Warn("failed to publish command reply")
	}
}

func (l *CommandListener) dispatch(ctx context.Context, raw json.RawMessage) Result {
	var request ManageRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&request); err != nil {
		return errorResult("malformed session_manage payload")
	}
	if request.SessionManage == nil {
		return errorResult("missing session_manage payload")
	}
	return l.manager.Manage(ctx, *request.SessionManage)
}
