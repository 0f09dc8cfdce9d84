package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/sms-support-bridge/internal/config"
	"github.com/spec-kit/sms-support-bridge/internal/events"
	"github.com/spec-kit/sms-support-bridge/internal/observability"
	"github.com/spec-kit/sms-support-bridge/pkg/sms"
)

// NotificationService turns ticket events into outbound SMS. Delivery runs
// off the request path: a send happens only after the ticket write committed,
// and a delivery failure is logged and counted but never propagated and
// never retried.
type NotificationService struct {
	dispatcher events.Dispatcher
	gateway    sms.Gateway
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.SMSConfig

	wg sync.WaitGroup
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, gateway sms.Gateway, logger *zap.Logger, metrics *observability.Metrics, cfg config.SMSConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		gateway:    gateway,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventReplySent, n.handleReplySent)
}

// Wait blocks until all in-flight sends complete. Used on shutdown.
func (n *NotificationService) Wait() {
	n.wg.Wait()
}

func (n *NotificationService) handleTicketCreated(_ context.Context, event events.Event) error {
	payload, ok := decodePayload[events.TicketCreatedPayload](event.Payload)
	if !ok {
		n.logger.Warn("unexpected ticket_created payload", zap.String("ticket_id", event.TicketID))
		return nil
	}
	body := fmt.Sprintf("Thanks for contacting customer support! Your ticket ID is %s.", payload.ShortCode)
	n.deliver(string(event.Type), payload.Number, body)
	return nil
}

func (n *NotificationService) handleReplySent(_ context.Context, event events.Event) error {
	payload, ok := decodePayload[events.ReplySentPayload](event.Payload)
	if !ok {
		n.logger.Warn("unexpected reply_sent payload", zap.String("ticket_id", event.TicketID))
		return nil
	}
	n.deliver(string(event.Type), payload.Number, payload.Body)
	return nil
}

// deliver fires the send on its own goroutine with a detached context, so a
// slow or failing provider cannot stall the committed write path.
func (n *NotificationService) deliver(kind, recipient, body string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), n.cfg.SendTimeout())
		defer cancel()

		if err := n.gateway.Send(ctx, n.cfg.Originator, recipient, body); err != nil {
			n.metrics.RecordNotificationFailure(kind)
			n.logger.Error("notification delivery failed",
				zap.String("kind", kind),
				zap.String("recipient", recipient),
				zap.Error(err),
			)
			return
		}
		n.logger.Info("notification delivered",
			zap.String("kind", kind),
			zap.String("recipient", recipient),
		)
	}()
}

// decodePayload tolerates both the typed payload and its JSON round-tripped
// form, for dispatchers that serialize events.
func decodePayload[T any](payload interface{}) (T, bool) {
	if typed, ok := payload.(T); ok {
		return typed, true
	}
	var out T
	raw, err := json.Marshal(payload)
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}
