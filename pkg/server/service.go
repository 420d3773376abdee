package server

import (
	"fmt"

	handlers "github.com/caretech-io/telesession/pkg/handlers/http"
	wsHandlers "github.com/caretech-io/telesession/pkg/handlers/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/caretech-io/telesession/pkg/config"
)

type (
	ServiceServerDI struct {
		HandlerTransport handlers.HandlerTransport
		EventsHandler    wsHandlers.Handler
		Config           *config.Config
		Logger           *logrus.Logger
	}
	ServiceServer struct {
		*BaseServer
		handlerTransport handlers.HandlerTransport
		eventsHandler    wsHandlers.Handler
	}
)

func NewServiceServer(di ServiceServerDI) *ServiceServer {
	return &ServiceServer{
		BaseServer:       NewBaseServer(di.Config, di.Logger),
		handlerTransport: di.HandlerTransport,
		eventsHandler:    di.EventsHandler,
	}
}

func (s *ServiceServer) Run() error {
	s.setupRoutes()
	s.setupHealthCheck()
	s.setupMetricsEndpoint()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.WithField("addr", addr).Info("starting session service server")
	return s.router.Listen(addr)
}

func (s *ServiceServer) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.Post("/manage", s.handlerTransport.SessionManageHandler.Handle)
		}

		participants := v1.Group("/participants")
		{
			participants.Get("/:participant_uuid", s.handlerTransport.ParticipantInfoHandler.Handle)
		}
	}

	s.router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.router.Get("/ws/events", websocket.New(s.eventsHandler.Handle))
}

func (s *ServiceServer) Shutdown() error {
	return s.router.Shutdown()
}
