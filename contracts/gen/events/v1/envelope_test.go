package v1

import (
	"errors"
	"testing"
	"time"
)

func TestNewEnvelope(t *testing.T) {
	occurred := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("IST", 19800))
	envelope, err := New(" evt-1 ", "escrow.created", "escrow-service", "escrow_id", "esc-1", occurred, map[string]string{"escrow_id": "esc-1"})
	if err != nil {
		t.Fatalf("new envelope failed: %v", err)
	}
	if envelope.EventID != "evt-1" || envelope.TraceID != "evt-1" {
		t.Fatalf("expected trimmed ids, got %+v", envelope)
	}
	if envelope.OccurredAt.Location() != time.UTC || envelope.SchemaVersion != SchemaVersion {
		t.Fatalf("unexpected envelope %+v", envelope)
	}

	var data map[string]string
	if err := envelope.DecodeData(&data); err != nil {
		t.Fatalf("decode data failed: %v", err)
	}
	if data["escrow_id"] != "esc-1" {
		t.Fatalf("unexpected data %v", data)
	}
}

func TestEnvelopeValidate(t *testing.T) {
	tests := []struct {
		name     string
		envelope Envelope
	}{
		{name: "missing id", envelope: Envelope{EventType: "escrow.created", PartitionKey: "esc-1", SchemaVersion: 1}},
		{name: "missing type", envelope: Envelope{EventID: "evt-1", PartitionKey: "esc-1", SchemaVersion: 1}},
		{name: "missing key", envelope: Envelope{EventID: "evt-1", EventType: "escrow.created", SchemaVersion: 1}},
		{name: "zero schema", envelope: Envelope{EventID: "evt-1", EventType: "escrow.created", PartitionKey: "esc-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.envelope.Validate(); !errors.Is(err, ErrInvalidEnvelope) {
				t.Fatalf("expected invalid envelope, got %v", err)
			}
		})
	}

	if err := (Envelope{}).DecodeData(&struct{}{}); !errors.Is(err, ErrInvalidEnvelope) {
		t.Fatalf("expected empty data error, got %v", err)
	}
}
