package websocket

import (
	"context"

	"github.com/caretech-io/telesession/pkg/infra/auth"
	"github.com/caretech-io/telesession/pkg/infra/bus"
	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	Handle(c *websocket.Conn)
}

// EventsHandler streams an identity's notification topic over a
// websocket. The token authenticates the transport only; what the
// identity may do inside a session is decided elsewhere.
type eventsHandler struct {
	logger    *logrus.Logger
	bus       bus.Bus
	validator auth.TokenValidator
}

func NewEventsHandler(logger *logrus.Logger, b bus.Bus, validator auth.TokenValidator) Handler {
	return &eventsHandler{
		logger:    logger,
		bus:       b,
		validator: validator,
	}
}

func (h *eventsHandler) Handle(c *websocket.Conn) {
	defer func() { _ = c.Close() }()

	identity, err := h.validator.Validate(c.Query("token"))
	if err != nil {
		h.logger.WithError(err).Warn("rejecting websocket with invalid token")
		_ = c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid token"))
		return
	}

	topic := bus.NotifyTopic(identity.Class, identity.UUID)

	// Writes from the subscription goroutine are serialized through a
	// channel; the websocket writer is not safe for concurrent use.
	outbound := make(chan []byte, 32)
	done := make(chan struct{})

	sub, err := h.bus.SubscribePattern(
		context.Background(),
		topic,
		func(ctx context.Context, pattern, topic string, payload []byte) {
			select {
			case outbound <- payload:
			case <-done:
			default:
				h.logger.WithField("topic", topic).Warn("dropping notification for slow websocket")
			}
		},
	)
	if err != nil {
		h.logger.WithError(err).WithField("topic", topic).Error("failed to subscribe notification topic")
		return
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			h.logger.WithError(err).WithField("topic", topic).Warn("failed to release subscription")
		}
	}()

	h.logger.WithFields(logrus.Fields{
		"identity_class": string(identity.Class),
		"identity_uuid":  identity.UUID,
	}).Info("notification stream opened")

	go func() {
		defer close(done)
		// The read loop only exists to observe the close handshake;
		// clients do not send application data.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case payload := <-outbound:
			if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.logger.WithError(err).Debug("websocket write failed, closing stream")
				return
			}
		case <-done:
			return
		}
	}
}
