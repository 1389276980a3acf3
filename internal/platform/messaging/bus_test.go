package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	contractsv1 "covenant/contracts/gen/events/v1"
)

func TestBusDeliversInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := NewBus([]string{"localhost:9092"}, nil)

	var (
		mu       sync.Mutex
		received []string
		done     = make(chan struct{})
	)
	err := bus.Subscribe(ctx, "escrow.events", "test-cg", func(_ context.Context, event contractsv1.Envelope) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event.EventID)
		if len(received) == 3 {
			close(done)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	for _, id := range []string{"evt-1", "evt-2", "evt-3"} {
		if err := bus.Publish(ctx, "escrow.events", contractsv1.Envelope{EventID: id}); err != nil {
			t.Fatalf("publish %s failed: %v", id, err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for events")
	}
	mu.Lock()
	defer mu.Unlock()
	if received[0] != "evt-1" || received[2] != "evt-3" {
		t.Fatalf("expected publish order, got %v", received)
	}
}

func TestBusReportsBusySubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := NewBus(nil, nil)

	block := make(chan struct{})
	defer close(block)
	if err := bus.Subscribe(ctx, "escrow.events", "slow-cg", func(context.Context, contractsv1.Envelope) error {
		<-block
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	var err error
	for i := 0; i < subscriberBuffer+2 && err == nil; i++ {
		err = bus.Publish(ctx, "escrow.events", contractsv1.Envelope{EventID: "evt"})
	}
	if !errors.Is(err, ErrSubscriberBusy) {
		t.Fatalf("expected busy subscriber, got %v", err)
	}
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(nil, nil)
	if err := bus.Publish(context.Background(), "escrow.events", contractsv1.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("expected publish without subscribers to succeed, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := bus.Publish(ctx, "escrow.events", contractsv1.Envelope{EventID: "evt-2"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled context error, got %v", err)
	}
}
