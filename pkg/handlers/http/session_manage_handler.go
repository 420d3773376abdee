package http

import (
	"bytes"
	"encoding/json"

	appSession "github.com/caretech-io/telesession/pkg/app/session"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type sessionManageHandler struct {
	logger  *logrus.Logger
	manager appSession.Manager
}

func NewSessionManageHandler(logger *logrus.Logger, manager appSession.Manager) Handler {
	return &sessionManageHandler{
		logger:  logger,
		manager: manager,
	}
}

// Handle multiplexes the session manage actions. Malformed payloads and
// unknown actions are rejected before any side effect; everything else
// is answered with the orchestrator's result as-is.
func (s *sessionManageHandler) Handle(c *fiber.Ctx) error {
	var request appSession.ManageRequest
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&request); err != nil {
		s.logger.WithError(err).Warn("rejecting malformed session manage request")
		return c.Status(fiber.StatusBadRequest).JSON(appSession.Result{
			Status:    appSession.StatusError,
			ErrorText: "malformed session_manage payload",
		})
	}
	if request.SessionManage == nil {
		return c.Status(fiber.StatusBadRequest).JSON(appSession.Result{
			Status:    appSession.StatusError,
			ErrorText: "missing session_manage payload",
		})
	}

	cmd := *request.SessionManage
	s.logger.WithFields(logrus.Fields{
		"action":     cmd.Action,
		"id_session": cmd.SessionID,
	}).Info("session manage request received")

	result := s.manager.Manage(c.UserContext(), cmd)

	status := fiber.StatusOK
	if result.Status == appSession.StatusError {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(result)
}
