package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/nyaruka/phonenumbers"
	"go.uber.org/zap"

	"github.com/spec-kit/sms-support-bridge/internal/api/dto"
	"github.com/spec-kit/sms-support-bridge/internal/config"
	"github.com/spec-kit/sms-support-bridge/internal/observability"
)

// webhookAck is what the provider receives no matter what happened
// internally; it does not parse response bodies.
const webhookAck = "OK"

// WebhookHandler receives inbound SMS events from the provider.
type WebhookHandler struct {
	service TicketOperations
	deduper WebhookDeduper
	logger  *zap.Logger
	metrics *observability.Metrics
	cfg     config.Config
}

// NewWebhookHandler constructs handler.
func NewWebhookHandler(ticketService TicketOperations, deduper WebhookDeduper, logger *zap.Logger, metrics *observability.Metrics, cfg config.Config) *WebhookHandler {
	return &WebhookHandler{
		service: ticketService,
		deduper: deduper,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
	}
}

// Receive POST /webhook. Every internal failure is absorbed: the provider
// always gets a 200 acknowledgment, and failures surface through logs and
// the absorbed-failure counter instead.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var req dto.InboundWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		h.absorb("parse webhook payload", err)
		return c.SendString(webhookAck)
	}

	number := h.normalizeNumber(req.Originator)
	if number == "" || strings.TrimSpace(req.Payload) == "" {
		h.logger.Warn("webhook missing originator or payload",
			zap.String("originator", req.Originator))
		return c.SendString(webhookAck)
	}

	if h.isDuplicate(c, req.MessageID) {
		h.logger.Info("duplicate webhook dropped", zap.String("message_id", req.MessageID))
		return c.SendString(webhookAck)
	}

	outcome, err := h.service.HandleInbound(c.UserContext(), number, req.Payload)
	if err != nil {
		h.absorb("handle inbound message", err)
		return c.SendString(webhookAck)
	}

	h.logger.Info("inbound message processed",
		zap.String("ticket_id", outcome.TicketID),
		zap.String("short_code", outcome.ShortCode),
		zap.Bool("created", outcome.Created),
	)
	return c.SendString(webhookAck)
}

func (h *WebhookHandler) isDuplicate(c *fiber.Ctx, messageID string) bool {
	if h.deduper == nil || messageID == "" {
		return false
	}
	seen, err := h.deduper.MarkWebhookSeen(c.UserContext(), messageID, h.cfg.Webhook.DedupTTL())
	if err != nil {
		// Dedup is best effort; fail open so no message is lost.
		h.logger.Warn("webhook dedup unavailable", zap.Error(err))
		return false
	}
	return seen
}

// normalizeNumber formats the originator as E.164 so the same customer always
// correlates to the same ticket regardless of provider formatting quirks.
func (h *WebhookHandler) normalizeNumber(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(raw, h.cfg.SMS.DefaultRegion)
	if err != nil {
		// Alphanumeric or short-code originators don't parse; keep as-is.
		return raw
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

func (h *WebhookHandler) absorb(op string, err error) {
	h.metrics.RecordWebhookAbsorbedFailure()
	h.logger.Error("webhook failure absorbed", zap.String("op", op), zap.Error(err))
}
