package http

import (
	"github.com/gofiber/fiber/v2"
)

type Handler interface {
	Handle(c *fiber.Ctx) error
}

// HandlerTransport groups the HTTP handlers wired by the server.
type HandlerTransport struct {
	SessionManageHandler   Handler
	ParticipantInfoHandler Handler
}
