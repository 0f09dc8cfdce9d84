package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishInvokesSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var received []Event
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		received = append(received, e)
		return nil
	})

	event := Event{Type: EventTicketCreated, TicketID: "t-1"}
	if err := dispatcher.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(received) != 1 || received[0].TicketID != "t-1" {
		t.Errorf("handler not invoked correctly: %+v", received)
	}
}

func TestPublishIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	called := false
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		called = true
		return nil
	})

	_ = dispatcher.Publish(context.Background(), Event{Type: EventReplySent})
	if called {
		t.Error("handler invoked for a type it never subscribed to")
	}
}

func TestPublishContinuesPastHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	dispatcher.Subscribe(EventReplySent, func(context.Context, Event) error {
		return errors.New("first handler failed")
	})
	secondCalled := false
	dispatcher.Subscribe(EventReplySent, func(context.Context, Event) error {
		secondCalled = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventReplySent}); err != nil {
		t.Fatalf("Publish surfaced handler error: %v", err)
	}
	if !secondCalled {
		t.Error("second handler skipped after first failed")
	}
}
