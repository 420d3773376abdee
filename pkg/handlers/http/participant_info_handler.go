package http

import (
	"github.com/caretech-io/telesession/pkg/infra/directory"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type participantInfoHandler struct {
	logger    *logrus.Logger
	directory directory.Client
}

func NewParticipantInfoHandler(logger *logrus.Logger, directoryClient directory.Client) Handler {
	return &participantInfoHandler{
		logger:    logger,
		directory: directoryClient,
	}
}

func (s *participantInfoHandler) Handle(c *fiber.Ctx) error {
	participantUUID := c.Params("participant_uuid")
	if participantUUID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "participant_uuid is required"})
	}

	participant, err := s.directory.GetParticipant(c.UserContext(), participantUUID)
	if err != nil {
		s.logger.WithError(err).WithField("participant_uuid", participantUUID).
			Error("failed to fetch participant info")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "cannot fetch participant info"})
	}

	return c.Status(fiber.StatusOK).JSON(participant)
}
