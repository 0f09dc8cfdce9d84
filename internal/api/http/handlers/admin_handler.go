package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/sms-support-bridge/internal/api/dto"
	"github.com/spec-kit/sms-support-bridge/internal/domain"
	apperrors "github.com/spec-kit/sms-support-bridge/pkg/util"
)

// AdminHandler serves the support-staff view: open tickets and replies.
type AdminHandler struct {
	service TicketOperations
	logger  *zap.Logger
}

// NewAdminHandler constructs handler.
func NewAdminHandler(ticketService TicketOperations, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{service: ticketService, logger: logger}
}

// ListOpen GET /admin.
func (h *AdminHandler) ListOpen(c *fiber.Ctx) error {
	tickets, err := h.service.ListOpenTickets(c.UserContext())
	if err != nil {
		return apperrors.NewStoreReadError(err)
	}
	views := make([]dto.TicketView, 0, len(tickets))
	for i := range tickets {
		views = append(views, dto.NewTicketView(&tickets[i]))
	}
	return c.JSON(fiber.Map{"tickets": views})
}

// Reply POST /reply. Control always returns to the admin view; an unknown
// ticket id is a no-op redirect with nothing written and nothing sent, the
// operator's signal being the absence of the expected update.
func (h *AdminHandler) Reply(c *fiber.Ctx) error {
	var req dto.ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ID == "" || strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("id and content required", nil)
	}

	outcome, err := h.service.HandleOutbound(c.UserContext(), req.ID, req.Content)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			h.logger.Info("reply to unknown ticket ignored", zap.String("ticket_id", req.ID))
			return c.Redirect("/admin", fiber.StatusSeeOther)
		}
		return apperrors.NewStoreWriteError(err)
	}

	h.logger.Info("reply appended",
		zap.String("ticket_id", outcome.TicketID),
		zap.String("number", outcome.Number),
	)
	return c.Redirect("/admin", fiber.StatusSeeOther)
}
